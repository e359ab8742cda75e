package seeder

import (
	"context"
	"fmt"

	"talent-bridge/internal/database"
)

// SubmissionsSeeder loads a small demo pipeline for local development. All
// ids are fixed so repeated runs are no-ops.
type SubmissionsSeeder struct{}

func (SubmissionsSeeder) Name() string { return "submissions" }

func (SubmissionsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "submissions",
		"id", "job_id", "job_title", "candidate_id", "recruiter_id", "client_id",
		"stage", "status", "match_score",
		"candidate_full_name", "candidate_email", "candidate_phone",
	); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		ID         string
		JobID      string
		JobTitle   string
		Candidate  string
		Recruiter  string
		Client     string
		Stage      string
		MatchScore int
		FullName   string
		Email      string
		Phone      string
	}{
		{
			ID:         "4e2f8a10-0001-4a7b-9c01-000000000001",
			JobID:      "4e2f8a10-1001-4a7b-9c01-000000000001",
			JobTitle:   "Senior Backend Engineer",
			Candidate:  "4e2f8a10-2001-4a7b-9c01-000000000001",
			Recruiter:  "4e2f8a10-3001-4a7b-9c01-000000000001",
			Client:     "4e2f8a10-4001-4a7b-9c01-000000000001",
			Stage:      "submitted",
			MatchScore: 87,
			FullName:   "Ayu Lestari",
			Email:      "ayu.lestari@example.com",
			Phone:      "+62-811-0000-0001",
		},
		{
			ID:         "4e2f8a10-0001-4a7b-9c01-000000000002",
			JobID:      "4e2f8a10-1001-4a7b-9c01-000000000001",
			JobTitle:   "Senior Backend Engineer",
			Candidate:  "4e2f8a10-2001-4a7b-9c01-000000000002",
			Recruiter:  "4e2f8a10-3001-4a7b-9c01-000000000001",
			Client:     "4e2f8a10-4001-4a7b-9c01-000000000001",
			Stage:      "interview_1",
			MatchScore: 74,
			FullName:   "Budi Santoso",
			Email:      "budi.santoso@example.com",
			Phone:      "+62-811-0000-0002",
		},
		{
			ID:         "4e2f8a10-0001-4a7b-9c01-000000000003",
			JobID:      "4e2f8a10-1001-4a7b-9c01-000000000002",
			JobTitle:   "Platform Engineer",
			Candidate:  "4e2f8a10-2001-4a7b-9c01-000000000003",
			Recruiter:  "4e2f8a10-3001-4a7b-9c01-000000000001",
			Client:     "4e2f8a10-4001-4a7b-9c01-000000000001",
			Stage:      "offer",
			MatchScore: 91,
			FullName:   "Citra Dewi",
			Email:      "citra.dewi@example.com",
			Phone:      "+62-811-0000-0003",
		},
	}

	for _, it := range items {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO submissions (
				id, job_id, job_title, candidate_id, recruiter_id, client_id,
				stage, status, match_score,
				candidate_full_name, candidate_email, candidate_phone
			) VALUES ($1, $2, $3, $4, $5, $6, $7, 'active', $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING`,
			it.ID, it.JobID, it.JobTitle, it.Candidate, it.Recruiter, it.Client,
			it.Stage, it.MatchScore,
			it.FullName, it.Email, it.Phone,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func Defaults() []Seeder {
	return []Seeder{SubmissionsSeeder{}}
}
