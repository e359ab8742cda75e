package routes

import (
	"log"

	"talent-bridge/internal/config"
	"talent-bridge/internal/database"
	"talent-bridge/internal/delivery/http/handler"
	"talent-bridge/internal/delivery/http/middleware"
	"talent-bridge/internal/infrastructure/cache"
	"talent-bridge/internal/infrastructure/downstream"
	"talent-bridge/internal/pkg/jwt"
	"talent-bridge/internal/repository"
	"talent-bridge/internal/usecase"
	"talent-bridge/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type Deps struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub
	Fanout usecase.Emitter
	Logger *log.Logger
}

func Register(app *fiber.App, d Deps) {
	if app == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(d.Config.JWT.AccessSecret, d.Config.JWT.AccessExpiresIn)
	authMw := middleware.NewAuthMiddleware(jwtSvc)

	submissionRepo := repository.NewPostgresSubmissionRepository(d.DB)
	negotiationRepo := repository.NewPostgresNegotiationRepository(d.DB)
	actionItemRepo := repository.NewPostgresActionItemRepository(d.DB)

	veilUC := usecase.NewIdentityVeilUsecase(submissionRepo, d.Logger)
	pipelineUC := usecase.NewPipelineUsecase(
		submissionRepo,
		downstream.NewLogOfferOpener(d.Logger),
		downstream.NewLogPlacementRecorder(d.Logger),
		d.Logger,
	)
	negotiationUC := usecase.NewNegotiationUsecase(
		negotiationRepo, submissionRepo, veilUC, pipelineUC, d.Fanout, d.Logger,
	)
	submissionUC := usecase.NewSubmissionUsecase(submissionRepo, veilUC, d.Logger)
	queueUC := usecase.NewActionQueueUsecase(actionItemRepo, d.Cache, d.Logger)

	healthHandler := handler.NewHealthHandler(d.DB, d.Cache)
	submissionHandler := handler.NewSubmissionHandler(submissionUC, pipelineUC)
	negotiationHandler := handler.NewNegotiationHandler(negotiationUC, d.Cache, d.Logger)
	queueHandler := handler.NewActionQueueHandler(queueUC)
	wsHandler := ws.NewHandler(d.Hub, d.Logger)

	app.Get("/health", healthHandler.Check)

	v1 := app.Group("/api").Group("/v1", authMw.Middleware())

	subs := v1.Group("/submissions")
	subs.Post("", submissionHandler.Create, authMw.RequireRole(jwt.RoleRecruiter, jwt.RoleAdmin))
	subs.Get("/:id", submissionHandler.Get)
	subs.Post("/:id/negotiations", negotiationHandler.Propose, authMw.RequireRole(jwt.RoleClient, jwt.RoleAdmin))
	subs.Post("/:id/advance", submissionHandler.Advance, authMw.RequireRole(jwt.RoleRecruiter, jwt.RoleAdmin))
	subs.Post("/:id/reject", submissionHandler.Reject, authMw.RequireRole(jwt.RoleClient, jwt.RoleAdmin))

	negs := v1.Group("/negotiations")
	negs.Post("/:id/opt-in", negotiationHandler.ConfirmOptIn, authMw.RequireRole(jwt.RoleCandidate, jwt.RoleAdmin))
	negs.Post("/:id/cancel", negotiationHandler.Cancel)
	negs.Post("/:id/no-show", negotiationHandler.ReportNoShow, authMw.RequireRole(jwt.RoleClient, jwt.RoleRecruiter, jwt.RoleAdmin))
	negs.Post("/:id/complete", negotiationHandler.Complete, authMw.RequireRole(jwt.RoleClient, jwt.RoleAdmin))

	v1.Get("/action-queue", queueHandler.GetQueue, authMw.RequireRole(jwt.RoleClient, jwt.RoleAdmin))

	v1.Get("/ws", wsHandler.HandleNotificationsWS(func(c fiber.Ctx) string {
		actorID, ok := c.Locals(middleware.CtxActorIDKey).(uuid.UUID)
		if !ok {
			return ""
		}
		return actorID.String()
	}))
}
