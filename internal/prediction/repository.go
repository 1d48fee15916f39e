package prediction

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medlink/dosage-service/internal/shared/errors"
)

// Repository provides database operations for stored predictions
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new prediction repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save stores a completed prediction
func (r *Repository) Save(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO predictions (
			id, age, weight, drug, route, gender, admission_type, diagnosis,
			dosage_class, dosage_label, confidence, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.Age, rec.Weight, rec.Drug, rec.Route, rec.Gender, rec.AdmissionType, rec.Diagnosis,
		rec.DosageClass, rec.DosageLabel, rec.Confidence, rec.CreatedAt,
	)

	if err != nil {
		return errors.Wrap(err, "failed to store prediction")
	}

	return nil
}

// ListRecent returns the most recent predictions, newest first
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, age, weight, drug, route, gender, admission_type, diagnosis,
			dosage_class, dosage_label, confidence, created_at
		FROM predictions
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list predictions")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		err := rows.Scan(
			&rec.ID, &rec.Age, &rec.Weight, &rec.Drug, &rec.Route, &rec.Gender, &rec.AdmissionType, &rec.Diagnosis,
			&rec.DosageClass, &rec.DosageLabel, &rec.Confidence, &rec.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan prediction")
		}
		records = append(records, rec)
	}

	return records, nil
}

// CountByClass returns how many stored predictions fall in each class
func (r *Repository) CountByClass(ctx context.Context) (map[int]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT dosage_class, COUNT(*) FROM predictions GROUP BY dosage_class`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count predictions")
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var class, count int
		if err := rows.Scan(&class, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan prediction count")
		}
		counts[class] = count
	}

	return counts, nil
}
