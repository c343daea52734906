package repository

import (
	"context"
	"database/sql"

	"github.com/bpmonitor/capstone/internal/models"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// PostgresBPRepository implements blood-pressure and sample persistence against a PostgreSQL database.
// Measurement lists are stored as JSONB documents.
type PostgresBPRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresBPRepository creates a new PostgresBPRepository using the provided *sql.DB.
func NewPostgresBPRepository(db *sql.DB) *PostgresBPRepository {
	return &PostgresBPRepository{DB: db}
}

// FindBPByUserID fetches all blood-pressure records owned by the given user, in insertion order.
//
//	ctx:    context for cancellation and deadlines
//	userID: identifier of the owning user
//
// Returns an empty slice when the user has no records.
func (r *PostgresBPRepository) FindBPByUserID(ctx context.Context, userID string) ([]models.BloodPressure, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, date, user_id, diastolic, systolic, measurements
		  FROM bp WHERE user_id = $1 ORDER BY seq
	`, userID)
	if err != nil {
		return nil, storageErr("find bp by user", err)
	}
	defer rows.Close()

	records := []models.BloodPressure{}
	for rows.Next() {
		var (
			bp   models.BloodPressure
			date sql.NullTime
			raw  []byte
		)
		if err := rows.Scan(&bp.ID, &bp.Title, &date, &bp.UserID, &bp.Diastolic, &bp.Systolic, &raw); err != nil {
			return nil, storageErr("scan bp", err)
		}
		if date.Valid {
			t := date.Time
			bp.Date = &t
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &bp.Measurements); err != nil {
				return nil, storageErr("decode bp measurements", err)
			}
		}
		records = append(records, bp)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("find bp by user", err)
	}
	return records, nil
}

// ImportSample inserts the sample document as-is under a new ID and returns the stored copy.
func (r *PostgresBPRepository) ImportSample(ctx context.Context, sample models.Sample) (*models.Sample, error) {
	if sample.Measurements == nil {
		sample.Measurements = []models.Measurement{}
	}
	raw, err := json.Marshal(sample.Measurements)
	if err != nil {
		return nil, storageErr("encode sample", err)
	}
	sample.ID = uuid.NewString()
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO samples (id, user_id, measurements) VALUES ($1, $2, $3)
	`, sample.ID, sample.UserID, raw)
	if err != nil {
		return nil, storageErr("import sample", err)
	}
	return &sample, nil
}

// FindSamplesByUserID returns every sample document of the user, in import order.
func (r *PostgresBPRepository) FindSamplesByUserID(ctx context.Context, userID string) ([]models.Sample, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, measurements FROM samples WHERE user_id = $1 ORDER BY seq
	`, userID)
	if err != nil {
		return nil, storageErr("find samples by user", err)
	}
	defer rows.Close()

	samples := []models.Sample{}
	for rows.Next() {
		var (
			s   models.Sample
			raw []byte
		)
		if err := rows.Scan(&s.ID, &s.UserID, &raw); err != nil {
			return nil, storageErr("scan sample", err)
		}
		if err := json.Unmarshal(raw, &s.Measurements); err != nil {
			return nil, storageErr("decode sample measurements", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("find samples by user", err)
	}
	return samples, nil
}
