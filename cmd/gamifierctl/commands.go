package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-gamifier/internal/common/models"
	"go-gamifier/internal/features/leaderboard"
	"go-gamifier/internal/features/organization"
	"go-gamifier/internal/features/snapshot"
	"go-gamifier/internal/features/user"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func seedCmd() *cobra.Command {
	var file, adminEmployeeID, adminName, adminSurname string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create an organization from a catalog (built-in Starfleet catalog by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}
			return withServices(cmd, func(ctx context.Context, s *services) error {
				org, err := s.Orgs.ApplyCatalog(ctx, catalog, models.SystemReporterID)
				if err != nil {
					return err
				}
				s.Logger.Info("Organization seeded",
					zap.String("organizationId", org.ID.Hex()),
					zap.String("federationId", org.FederationID))

				if adminEmployeeID != "" {
					admin, err := s.Users.CreateUser(ctx, org.ID.Hex(), user.UserInput{
						EmployeeID: adminEmployeeID,
						Name:       adminName,
						Surname:    adminSurname,
						Role:       models.RoleAdmin,
					}, models.SystemReporterID)
					if err != nil {
						return fmt.Errorf("create admin: %w", err)
					}
					s.Logger.Info("Admin created", zap.String("userId", admin.ID.Hex()))
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"Organization", "Federation ID", "ID", "Ranks", "Action Types", "Missions"})
				tw.AppendRow(table.Row{org.Name, org.FederationID, org.ID.Hex(),
					len(org.RankConfigurations), len(org.ActionTypes), len(org.MissionTypes)})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog file")
	cmd.Flags().StringVar(&adminEmployeeID, "admin-employee-id", "", "also create an admin user with this employee id")
	cmd.Flags().StringVar(&adminName, "admin-name", "Admin", "admin first name")
	cmd.Flags().StringVar(&adminSurname, "admin-surname", "", "admin surname")
	return cmd
}

func loadCatalog(file string) (organization.Catalog, error) {
	if file == "" {
		return organization.DefaultCatalog()
	}
	f, err := os.Open(file)
	if err != nil {
		return organization.Catalog{}, err
	}
	defer f.Close()
	return organization.LoadCatalog(f)
}

func importUsersCmd() *cobra.Command {
	var orgRef, file string
	cmd := &cobra.Command{
		Use:   "import-users",
		Short: "Import users from a CSV or XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				org, err := resolveOrganization(ctx, s, orgRef)
				if err != nil {
					return err
				}
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()

				result, err := s.Users.ImportUsersFile(ctx, org.ID.Hex(), filepath.Base(file), f, models.SystemReporterID)
				if err != nil {
					return err
				}
				renderImport(cmd, result)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&orgRef, "org", "", "organization id or federation id")
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV or XLSX file")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func importActionsCmd() *cobra.Command {
	var orgRef, file string
	cmd := &cobra.Command{
		Use:   "import-actions",
		Short: "Import completed actions from a CSV or XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				org, err := resolveOrganization(ctx, s, orgRef)
				if err != nil {
					return err
				}
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()

				result, err := s.Actions.ImportFile(ctx, org.ID.Hex(), filepath.Base(file), f)
				if err != nil {
					return err
				}
				renderImport(cmd, result)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&orgRef, "org", "", "organization id or federation id")
	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV or XLSX file")
	_ = cmd.MarkFlagRequired("org")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func renderImport(cmd *cobra.Command, result *models.ImportResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.AppendHeader(table.Row{"Total", "Succeeded", "Failed"})
	tw.AppendRow(table.Row{result.TotalRecords, result.SuccessfulImports, result.FailedImports})
	tw.Render()

	if len(result.Errors) == 0 {
		return
	}
	errTable := table.NewWriter()
	errTable.SetOutputMirror(cmd.OutOrStdout())
	errTable.AppendHeader(table.Row{"Error"})
	for _, e := range result.Errors {
		errTable.AppendRow(table.Row{e})
	}
	errTable.Render()
}

func leaderboardCmd() *cobra.Command {
	var orgRef, month, department string
	var limit int64
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print an organization leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, s *services) error {
				org, err := resolveOrganization(ctx, s, orgRef)
				if err != nil {
					return err
				}
				orgID := org.ID.Hex()

				var page *leaderboard.Page
				switch {
				case month != "":
					start, perr := time.Parse("2006-01", month)
					if perr != nil {
						return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
					}
					page, err = s.Leaderboard.Monthly(ctx, orgID, start, 1, limit)
				case department != "":
					page, err = s.Leaderboard.Department(ctx, orgID, department, 1, limit)
				default:
					page, err = s.Leaderboard.AllTime(ctx, orgID, 1, limit)
				}
				if err != nil {
					return err
				}
				renderEntries(cmd, page.Entries)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&orgRef, "org", "", "organization id or federation id")
	cmd.Flags().StringVar(&month, "month", "", "monthly leaderboard (YYYY-MM)")
	cmd.Flags().StringVar(&department, "department", "", "department leaderboard")
	cmd.Flags().Int64Var(&limit, "limit", 10, "number of entries")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

func renderEntries(cmd *cobra.Command, entries []leaderboard.Entry) {
	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.AppendHeader(table.Row{"#", "Employee", "Name", "Department", "Points", "Rank"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.Position, e.EmployeeID, e.Name, e.Department, e.Points,
			fmt.Sprintf("%s %s", e.RankInsignia, e.RankName)})
	}
	tw.Render()
}

func snapshotCmd() *cobra.Command {
	var orgRef, month string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Take the monthly leaderboard snapshot (previous month by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if month == "" {
				month = snapshot.PreviousMonth(time.Now())
			}
			return withServices(cmd, func(ctx context.Context, s *services) error {
				if orgRef == "" {
					n, err := s.Snapshots.TakeAll(ctx, month)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Snapshotted %d organizations for %s\n", n, month)
					return nil
				}
				org, err := resolveOrganization(ctx, s, orgRef)
				if err != nil {
					return err
				}
				snap, err := s.Snapshots.Take(ctx, org.ID.Hex(), month)
				if err != nil {
					return err
				}
				renderEntries(cmd, snap.Entries)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&orgRef, "org", "", "organization id or federation id (all active organizations when empty)")
	cmd.Flags().StringVar(&month, "month", "", "month to snapshot (YYYY-MM)")
	return cmd
}
