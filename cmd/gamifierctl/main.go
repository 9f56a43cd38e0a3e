package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-gamifier/internal/app"
	"go-gamifier/internal/common/models"
	"go-gamifier/internal/features/action"
	"go-gamifier/internal/features/leaderboard"
	"go-gamifier/internal/features/organization"
	"go-gamifier/internal/features/snapshot"
	"go-gamifier/internal/features/user"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "gamifierctl",
	Short: "Gamifier administration",
	Long: `gamifierctl seeds organizations, bulk-imports users and actions, prints
leaderboards and takes monthly snapshots. It reads the same environment (.env,
MONGO_URI, DB_NAME, ...) as the API server.`,
	SilenceUsage: true,
}

// services is filled from the same providers the API server uses.
type services struct {
	Orgs        organization.OrganizationService
	Users       user.UserService
	Actions     action.ActionService
	Leaderboard leaderboard.LeaderboardService
	Snapshots   snapshot.SnapshotService
	Logger      *zap.Logger
}

func main() {
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Minute, "overall command timeout")
	rootCmd.AddCommand(seedCmd(), importUsersCmd(), importActionsCmd(), leaderboardCmd(), snapshotCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withServices starts the service graph, runs fn and shuts everything down again.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, s *services) error) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	var s services
	container := fx.New(
		app.Core,
		fx.NopLogger,
		fx.Populate(&s.Orgs, &s.Users, &s.Actions, &s.Leaderboard, &s.Snapshots, &s.Logger),
	)
	if err := container.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = container.Stop(stopCtx)
	}()

	return fn(ctx, &s)
}

// resolveOrganization accepts either an organization id or a federation id.
func resolveOrganization(ctx context.Context, s *services, ref string) (*models.Organization, error) {
	if primitive.IsValidObjectID(ref) {
		return s.Orgs.GetOrganization(ctx, ref)
	}
	return s.Orgs.GetOrganizationByFederationID(ctx, ref)
}
