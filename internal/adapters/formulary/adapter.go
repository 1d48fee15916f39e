// Package formulary loads drug dose ranges from a hospital information
// system running SQL Server. It backs the artifact store as an alternative
// to the compiled-in profile table.
package formulary

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server driver
	"github.com/medlink/dosage-service/internal/artifacts"
	"github.com/medlink/dosage-service/internal/dosage"
	"github.com/medlink/dosage-service/internal/shared/config"
)

// Adapter reads the hospital formulary table and exposes it as a profile
// source for the artifact store.
type Adapter struct {
	db     *sql.DB
	config config.FormularyConfig
}

// New creates an unconnected formulary adapter
func New(cfg config.FormularyConfig) *Adapter {
	return &Adapter{config: cfg}
}

// Connect opens the database connection and verifies it
func (a *Adapter) Connect(ctx context.Context) error {
	if a.db != nil {
		return fmt.Errorf("adapter already connected")
	}

	connStr := fmt.Sprintf("server=%s;port=%d;database=%s;user id=%s;password=%s",
		a.config.Host,
		a.config.Port,
		a.config.Database,
		a.config.User,
		a.config.Password,
	)

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return fmt.Errorf("failed to open formulary database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping formulary database: %w", err)
	}

	a.db = db
	return nil
}

// Close closes the database connection
func (a *Adapter) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// Health checks database connectivity
func (a *Adapter) Health(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("formulary adapter not connected")
	}
	return a.db.PingContext(ctx)
}

// LoadProfiles reads every formulary row into a profile table. Rows with an
// empty name or a non-positive dose range are skipped rather than failing
// the whole load.
func (a *Adapter) LoadProfiles(ctx context.Context) (dosage.ProfileTable, error) {
	if a.db == nil {
		return nil, fmt.Errorf("formulary adapter not connected")
	}

	query := fmt.Sprintf(`
		SELECT DrugName, MinDose, MaxDose, Unit, AgeSensitive
		FROM %s
		ORDER BY DrugName
	`, a.config.Table)

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query formulary: %w", err)
	}
	defer rows.Close()

	profiles := make(dosage.ProfileTable)
	for rows.Next() {
		var p dosage.DrugProfile
		var unit sql.NullString
		var ageSensitive sql.NullBool

		if err := rows.Scan(&p.Name, &p.MinDose, &p.MaxDose, &unit, &ageSensitive); err != nil {
			return nil, fmt.Errorf("failed to scan formulary row: %w", err)
		}

		if unit.Valid {
			p.Unit = unit.String
		}
		if ageSensitive.Valid {
			p.AgeSensitive = ageSensitive.Bool
		}

		if p.Name == "" || p.MaxDose <= 0 || p.MinDose > p.MaxDose {
			log.Printf("Warning: skipping invalid formulary row for %q", p.Name)
			continue
		}

		profiles[p.Name] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read formulary rows: %w", err)
	}

	return profiles, nil
}

// Verify interface implementation
var _ artifacts.ProfileSource = (*Adapter)(nil)
