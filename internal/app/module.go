package app

import (
	"go-gamifier/internal/config"
	"go-gamifier/internal/database"
	"go-gamifier/internal/features/action"
	"go-gamifier/internal/features/auth"
	"go-gamifier/internal/features/dashboard"
	"go-gamifier/internal/features/event"
	"go-gamifier/internal/features/leaderboard"
	"go-gamifier/internal/features/organization"
	"go-gamifier/internal/features/scoring"
	"go-gamifier/internal/features/snapshot"
	"go-gamifier/internal/features/user"
	"go-gamifier/internal/logger"

	"go.uber.org/fx"
)

// Core provides configuration, storage and every domain service. The HTTP server
// and the admin CLI both build on it.
var Core = fx.Options(
	fx.Provide(
		config.LoadConfig,
		database.NewDatabase,
		database.NewTransactor,
		logger.NewLogger,
		event.NewHub,

		organization.NewOrganizationRepository,
		user.NewUserRepository,
		action.NewActionRepository,
		event.NewEventRepository,
		scoring.NewProgressRepository,
		snapshot.NewSnapshotRepository,
		snapshot.NewWarehouse,
		leaderboard.NewCache,

		auth.NewIdentity,
		auth.NewAuthService,
		event.NewEventService,
		organization.NewOrganizationService,
		user.NewUserService,
		scoring.NewEngine,
		scoring.NewScoringService,
		action.NewActionService,
		leaderboard.NewLeaderboardService,
		snapshot.NewSnapshotService,
		dashboard.NewDashboardService,
	),
	fx.Provide(
		func(r event.EventRepository) event.Appender { return r },
		func(r event.EventRepository) leaderboard.PointsSummer { return r },
		func(s event.EventService) event.Publisher { return s },
		func(r user.UserRepository) auth.UserFinder { return r },
		func(r user.UserRepository) auth.LoginRecorder { return r },
		func(r user.UserRepository) event.UserFinder { return r },
		func(r user.UserRepository) scoring.UserLoader { return r },
		func(r user.UserRepository) action.UserFinder { return r },
		func(r user.UserRepository) leaderboard.StandingsReader { return r },
		func(r organization.OrganizationRepository) auth.OrganizationFinder { return r },
		func(r organization.OrganizationRepository) user.OrganizationFinder { return r },
		func(r organization.OrganizationRepository) scoring.OrganizationLoader { return r },
		func(r organization.OrganizationRepository) action.OrganizationFinder { return r },
		func(r organization.OrganizationRepository) leaderboard.OrganizationFinder { return r },
		func(r organization.OrganizationRepository) snapshot.OrganizationLister { return r },
		func(c *leaderboard.Cache) scoring.CacheInvalidator { return c },
		func(c *leaderboard.Cache) user.CacheInvalidator { return c },
		func(c *leaderboard.Cache) organization.CacheInvalidator { return c },
	),
)
