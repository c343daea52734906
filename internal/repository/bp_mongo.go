package repository

import (
	"context"

	"github.com/bpmonitor/capstone/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Mongo collections for blood-pressure records and imported samples.
const (
	BPCollection     = "bp"
	SampleCollection = "sample"
)

// MongoBPRepository implements blood-pressure and sample persistence on MongoDB.
type MongoBPRepository struct {
	bp      *mongo.Collection
	samples *mongo.Collection
}

// NewMongoBPRepository binds the repository to the bp and sample collections of db.
func NewMongoBPRepository(db *mongo.Database) *MongoBPRepository {
	return &MongoBPRepository{
		bp:      db.Collection(BPCollection),
		samples: db.Collection(SampleCollection),
	}
}

// FindBPByUserID returns all blood-pressure documents owned by userID.
func (r *MongoBPRepository) FindBPByUserID(ctx context.Context, userID string) ([]models.BloodPressure, error) {
	cur, err := r.bp.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, storageErr("find bp by user", err)
	}
	records := []models.BloodPressure{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, storageErr("find bp by user", err)
	}
	return records, nil
}

// ImportSample stores the sample under a generated ID.
func (r *MongoBPRepository) ImportSample(ctx context.Context, sample models.Sample) (*models.Sample, error) {
	sample.ID = uuid.NewString()
	if sample.Measurements == nil {
		sample.Measurements = []models.Measurement{}
	}
	if _, err := r.samples.InsertOne(ctx, sample); err != nil {
		return nil, storageErr("import sample", err)
	}
	return &sample, nil
}

// FindSamplesByUserID returns all sample documents owned by userID.
func (r *MongoBPRepository) FindSamplesByUserID(ctx context.Context, userID string) ([]models.Sample, error) {
	cur, err := r.samples.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, storageErr("find samples by user", err)
	}
	samples := []models.Sample{}
	if err := cur.All(ctx, &samples); err != nil {
		return nil, storageErr("find samples by user", err)
	}
	return samples, nil
}
