package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-gamifier/internal/app"
	common_api "go-gamifier/internal/common/api"
	"go-gamifier/internal/config"
	"go-gamifier/internal/features/action"
	"go-gamifier/internal/features/auth"
	"go-gamifier/internal/features/dashboard"
	"go-gamifier/internal/features/event"
	import_feature "go-gamifier/internal/features/import"
	"go-gamifier/internal/features/leaderboard"
	"go-gamifier/internal/features/organization"
	"go-gamifier/internal/features/scoring"
	"go-gamifier/internal/features/snapshot"
	"go-gamifier/internal/features/system"
	"go-gamifier/internal/features/user"
	"go-gamifier/internal/middleware"

	_ "go-gamifier/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(common_api.StatusFor(err)).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every member of the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, logger *zap.Logger) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("Setting up route", zap.String("type", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer runs Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, hub *event.Hub) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			hub.Close()
			return app.Shutdown()
		},
	})
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	logger *zap.Logger,
	orgRepo organization.OrganizationRepository,
	userRepo user.UserRepository,
	actionRepo action.ActionRepository,
	eventRepo event.EventRepository,
	snapshotRepo snapshot.SnapshotRepository,
) {
	repos := map[string]indexer{
		"organizations": orgRepo,
		"users":         userRepo,
		"actions":       actionRepo,
		"events":        eventRepo,
		"snapshots":     snapshotRepo,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// The unique indexes back duplicate detection, so startup waits for them.
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			for name, repo := range repos {
				if err := repo.EnsureIndexes(ctx); err != nil {
					return fmt.Errorf("failed to ensure %s indexes: %w", name, err)
				}
			}
			logger.Info("Indexes ensured")
			return nil
		},
	})
}

// StartSnapshotScheduler ties the snapshot cron to the app lifecycle.
func StartSnapshotScheduler(lc fx.Lifecycle, snapshots snapshot.SnapshotService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return snapshots.StartScheduler()
		},
		OnStop: func(ctx context.Context) error {
			snapshots.StopScheduler()
			return nil
		},
	})
}

func main() {
	server := fx.New(
		app.Core,
		fx.Provide(
			NewFiberServer,

			auth.NewAuthController,
			organization.NewOrganizationController,
			user.NewUserController,
			scoring.NewScoringController,
			action.NewActionController,
			leaderboard.NewLeaderboardController,
			event.NewEventController,
			snapshot.NewSnapshotController,
			dashboard.NewDashboardController,
			import_feature.NewImportController,
			system.NewWebSocketController,

			AsRoute(auth.NewAuthApi),
			AsRoute(organization.NewOrganizationApi),
			AsRoute(user.NewUserApi),
			AsRoute(scoring.NewScoringApi),
			AsRoute(action.NewActionApi),
			AsRoute(leaderboard.NewLeaderboardApi),
			AsRoute(event.NewEventApi),
			AsRoute(snapshot.NewSnapshotApi),
			AsRoute(dashboard.NewDashboardApi),
			AsRoute(import_feature.NewImportApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			InitializeIndexes,
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartSnapshotScheduler,
		),
	)

	server.Run()
}
