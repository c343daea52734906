package repository

import (
	"context"
	"errors"

	"github.com/bpmonitor/capstone/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserCollection is the Mongo collection holding user documents.
const UserCollection = "user"

// MongoUserRepository implements user persistence on a MongoDB collection.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository binds the repository to the user collection of db.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: db.Collection(UserCollection)}
}

// EnsureIndexes creates the unique username index.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return storageErr("create user indexes", err)
}

func (r *MongoUserRepository) findOne(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.users.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(op, err)
	}
	return &u, nil
}

// CreateUser inserts a new user document under a generated ID.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	user.ID = uuid.NewString()
	user.Emails = nonNil(user.Emails)
	user.Phones = nonNil(user.Phones)
	user.PCP = nonNil(user.PCP)
	if _, err := r.users.InsertOne(ctx, user); err != nil {
		return nil, storageErr("create user", err)
	}
	return &user, nil
}

// FindUserByID returns the user with the given ID, or nil when none exists.
func (r *MongoUserRepository) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "find user by id", bson.M{"_id": id})
}

// FindUserByUsername returns the user with the given username, or nil when none exists.
func (r *MongoUserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "find user by username", bson.M{"username": username})
}

// FindUserByCredentials returns the user whose username and password both match exactly.
func (r *MongoUserRepository) FindUserByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	return r.findOne(ctx, "find user by credentials", bson.M{"username": username, "password": password})
}

// FindAllUsers returns every user document in natural order.
func (r *MongoUserRepository) FindAllUsers(ctx context.Context) ([]models.User, error) {
	cur, err := r.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, storageErr("find all users", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, storageErr("find all users", err)
	}
	return users, nil
}

// UpdateUser sets the non-nil fields of patch on the document and upserts it.
func (r *MongoUserRepository) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.User
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, userUpdate(patch), opts).Decode(&u)
	if err != nil {
		return nil, storageErr("update user", err)
	}
	return &u, nil
}

// DeleteUser removes the user document. A missing document is not an error.
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	return storageErr("delete user", err)
}

// userUpdate builds the $set / $setOnInsert document for patch. Fields absent
// from the patch get their zero value only when the document is created.
func userUpdate(patch models.UserPatch) bson.M {
	set := bson.M{}
	onInsert := bson.M{}

	str := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		} else {
			onInsert[key] = ""
		}
	}
	list := func(key string, v *[]string) {
		if v != nil {
			set[key] = nonNil(*v)
		} else {
			onInsert[key] = []string{}
		}
	}

	str("username", patch.Username)
	str("password", patch.Password)
	str("firstName", patch.FirstName)
	str("lastName", patch.LastName)
	list("emails", patch.Emails)
	list("phones", patch.Phones)
	list("pcp", patch.PCP)

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(onInsert) > 0 {
		update["$setOnInsert"] = onInsert
	}
	return update
}
