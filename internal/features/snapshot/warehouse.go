package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"go-gamifier/internal/config"

	_ "github.com/lib/pq"
)

// Warehouse receives finished snapshots for reporting outside the application.
type Warehouse interface {
	Export(ctx context.Context, s *Snapshot) error
}

// PostgresWarehouse writes snapshot rows into a leaderboard_snapshots table,
// one row per user and month.
type PostgresWarehouse struct {
	DSN string
}

// NewWarehouse returns nil when no warehouse is configured.
func NewWarehouse(cfg *config.Config) Warehouse {
	if cfg.WarehouseDSN == "" {
		return nil
	}
	return &PostgresWarehouse{DSN: cfg.WarehouseDSN}
}

const createTable = `CREATE TABLE IF NOT EXISTS leaderboard_snapshots (
	organization_id TEXT NOT NULL,
	month TEXT NOT NULL,
	user_id TEXT NOT NULL,
	position BIGINT NOT NULL,
	employee_id TEXT NOT NULL,
	name TEXT NOT NULL,
	department TEXT,
	points INTEGER NOT NULL,
	rank_name TEXT,
	taken_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (organization_id, month, user_id)
)`

const upsertRow = `INSERT INTO leaderboard_snapshots
	(organization_id, month, user_id, position, employee_id, name, department, points, rank_name, taken_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (organization_id, month, user_id) DO UPDATE SET
	position = $4, employee_id = $5, name = $6, department = $7, points = $8, rank_name = $9, taken_at = $10`

func (w *PostgresWarehouse) Export(ctx context.Context, s *Snapshot) error {
	db, err := sql.Open("postgres", w.DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping warehouse: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to prepare warehouse table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertRow)
	if err != nil {
		return err
	}
	defer stmt.Close()

	orgID := s.OrganizationID.Hex()
	for _, e := range s.Entries {
		if _, err := stmt.ExecContext(ctx,
			orgID, s.Month, e.UserID, e.Position, e.EmployeeID, e.Name,
			e.Department, e.Points, e.RankName, s.TakenAt,
		); err != nil {
			return fmt.Errorf("failed to export %s: %w", e.UserID, err)
		}
	}
	return tx.Commit()
}
