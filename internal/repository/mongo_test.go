package repository

import (
	"context"
	"testing"

	"github.com/bpmonitor/capstone/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestUserUpdate(t *testing.T) {
	first := "Ann"
	emails := []string{"a@x.io"}

	update := userUpdate(models.UserPatch{FirstName: &first, Emails: &emails})

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"firstName": "Ann", "emails": []string{"a@x.io"}}, set)

	onInsert, ok := update["$setOnInsert"].(bson.M)
	require.True(t, ok)
	assert.NotContains(t, onInsert, "firstName")
	assert.NotContains(t, onInsert, "emails")
	assert.Equal(t, "", onInsert["username"])
	assert.Equal(t, []string{}, onInsert["pcp"])
}

func TestUserUpdate_EmptyPatch(t *testing.T) {
	update := userUpdate(models.UserPatch{})
	assert.NotContains(t, update, "$set")
	assert.Len(t, update["$setOnInsert"], 7)
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find by credentials", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.user", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "username", Value: "a"},
			{Key: "password", Value: "b"},
		}))

		u, err := repo.FindUserByCredentials(context.Background(), "a", "b")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "u1", u.ID)
	})

	mt.Run("not found is nil", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.user", mtest.FirstBatch))

		u, err := repo.FindUserByID(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := repo.CreateUser(context.Background(), models.User{Username: "a", Password: "b"})
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, []string{}, u.Emails)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		_, err := repo.CreateUser(context.Background(), models.User{Username: "a"})
		require.Error(t, err)
		assert.True(t, IsStorageError(err))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.NoError(t, repo.DeleteUser(context.Background(), "missing"))
	})
}

func TestMongoBPRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("find bp", func(mt *mtest.T) {
		repo := NewMongoBPRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.bp", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: "bp1"}, {Key: "userId", Value: "u1"}, {Key: "systolic", Value: "120"}},
				bson.D{{Key: "_id", Value: "bp2"}, {Key: "userId", Value: "u1"}, {Key: "systolic", Value: "125"}},
			),
		)

		records, err := repo.FindBPByUserID(context.Background(), "u1")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "bp1", records[0].ID)
		assert.Equal(t, "125", records[1].Systolic)
	})

	mt.Run("import sample", func(mt *mtest.T) {
		repo := NewMongoBPRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		s, err := repo.ImportSample(context.Background(), models.Sample{UserID: "u1"})
		require.NoError(t, err)
		assert.NotEmpty(t, s.ID)
		assert.NotNil(t, s.Measurements)
	})
}
