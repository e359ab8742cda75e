package seeder

import (
	"context"

	"talent-bridge/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
