package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bpmonitor/capstone/internal/models"
)

func setupBPMock(t *testing.T) (*PostgresBPRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresBPRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestFindBPByUserID_Success(t *testing.T) {
	repo, mock, cleanup := setupBPMock(t)
	defer cleanup()

	date := time.Date(2016, 3, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM bp WHERE user_id = $1 ORDER BY seq`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "date", "user_id", "diastolic", "systolic", "measurements"}).
			AddRow("bp1", "morning", date, "u1", "80", "120", nil).
			AddRow("bp2", "evening", nil, "u1", "85", "130",
				[]byte(`[{"impedance_magnitude":1.5,"impedance_phase":-0.2,"pressure":90}]`)))

	records, err := repo.FindBPByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Date == nil || !records[0].Date.Equal(date) {
		t.Errorf("unexpected date: %v", records[0].Date)
	}
	if records[0].Measurements != nil {
		t.Errorf("expected no embedded measurements, got %+v", records[0].Measurements)
	}
	if records[1].Date != nil {
		t.Errorf("expected nil date, got %v", records[1].Date)
	}
	want := models.Measurement{ImpedanceMagnitude: 1.5, ImpedancePhase: -0.2, Pressure: 90}
	if len(records[1].Measurements) != 1 || records[1].Measurements[0] != want {
		t.Errorf("unexpected measurements: %+v", records[1].Measurements)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindBPByUserID_Error(t *testing.T) {
	repo, mock, cleanup := setupBPMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bp WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnError(errors.New("query failed"))

	_, err := repo.FindBPByUserID(context.Background(), "u1")
	if !IsStorageError(err) {
		t.Errorf("expected *StorageError, got %v", err)
	}
}

func TestImportSample(t *testing.T) {
	repo, mock, cleanup := setupBPMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO samples (id, user_id, measurements) VALUES ($1, $2, $3)`)).
		WithArgs(sqlmock.AnyArg(), "u1", []byte(`[{"impedance_magnitude":2,"impedance_phase":0.5,"pressure":100}]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	in := models.Sample{UserID: "u1", Measurements: []models.Measurement{{ImpedanceMagnitude: 2, ImpedancePhase: 0.5, Pressure: 100}}}
	got, err := repo.ImportSample(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID == "" {
		t.Error("expected generated ID")
	}
	if got.UserID != "u1" || len(got.Measurements) != 1 {
		t.Errorf("unexpected sample: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestImportSample_Error(t *testing.T) {
	repo, mock, cleanup := setupBPMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO samples`)).
		WillReturnError(errors.New("insert failed"))

	_, err := repo.ImportSample(context.Background(), models.Sample{UserID: "u1"})
	if !IsStorageError(err) {
		t.Errorf("expected *StorageError, got %v", err)
	}
}

func TestFindSamplesByUserID(t *testing.T) {
	repo, mock, cleanup := setupBPMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM samples WHERE user_id = $1 ORDER BY seq`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "measurements"}).
			AddRow("s1", "u1", []byte(`[{"impedance_magnitude":1,"impedance_phase":0,"pressure":10},{"impedance_magnitude":2,"impedance_phase":0,"pressure":20}]`)))

	samples, err := repo.FindSamplesByUserID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(samples) != 1 || len(samples[0].Measurements) != 2 {
		t.Fatalf("unexpected samples: %+v", samples)
	}
	if samples[0].Measurements[1].Pressure != 20 {
		t.Errorf("measurement order not preserved: %+v", samples[0].Measurements)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
