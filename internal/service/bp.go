package service

import (
	"context"

	"github.com/bpmonitor/capstone/internal/models"
)

// BPRepository defines the persistence operations needed by the BPService.
type BPRepository interface {
	// FindBPByUserID returns every blood-pressure record owned by userID.
	FindBPByUserID(ctx context.Context, userID string) ([]models.BloodPressure, error)
	// ImportSample stores a sample document and returns it with its generated ID.
	ImportSample(ctx context.Context, sample models.Sample) (*models.Sample, error)
	// FindSamplesByUserID returns every sample document owned by userID.
	FindSamplesByUserID(ctx context.Context, userID string) ([]models.Sample, error)
}

// BPService implements the blood-pressure and sample operations.
type BPService struct {
	repo BPRepository
}

// NewBPService constructs a BPService with the provided BPRepository.
func NewBPService(repo BPRepository) *BPService {
	return &BPService{repo: repo}
}

// FindAllForUser returns the user's blood-pressure records in storage order.
func (s *BPService) FindAllForUser(ctx context.Context, userID string) ([]models.BloodPressure, error) {
	return s.repo.FindBPByUserID(ctx, userID)
}

// ImportSample stores a bulk-imported sample unchanged.
func (s *BPService) ImportSample(ctx context.Context, sample models.Sample) (*models.Sample, error) {
	return s.repo.ImportSample(ctx, sample)
}

// FindSampleDataForUser returns the user's sample documents.
func (s *BPService) FindSampleDataForUser(ctx context.Context, userID string) ([]models.Sample, error) {
	return s.repo.FindSamplesByUserID(ctx, userID)
}
