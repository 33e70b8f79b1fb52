package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gymweb/booking-api/internal/domain"
	"gymweb/booking-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByEmail retrieves a non-deleted user by email (case-insensitive via
// lowercasing at write time).
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email)), "isDeleted": false}
	return r.findOne(ctx, filter)
}

// GetByID retrieves a non-deleted user by ID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id, "isDeleted": false})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs fetches several users in one query, keyed by ID. Missing IDs are
// simply absent from the map.
func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.User, error) {
	users := make(map[primitive.ObjectID]domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []domain.User
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	for _, u := range results {
		users[u.ID] = u
	}
	return users, nil
}

// List returns non-deleted users, newest first, optionally filtered by status.
func (r *mongoUserRepository) List(ctx context.Context, status domain.UserStatus) ([]domain.User, error) {
	filter := bson.M{"isDeleted": false}
	if status != "" {
		filter["status"] = status
	}
	return r.findMany(ctx, filter)
}

// ListPending returns client accounts awaiting administrator approval.
func (r *mongoUserRepository) ListPending(ctx context.Context) ([]domain.User, error) {
	filter := bson.M{
		"status":    domain.StatusPending,
		"role":      domain.RoleUser,
		"isDeleted": false,
	}
	return r.findMany(ctx, filter)
}

func (r *mongoUserRepository) findMany(ctx context.Context, filter bson.M) ([]domain.User, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []domain.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update persists profile fields (name, date of birth, avatar key).
func (r *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user.ID == primitive.NilObjectID {
		return errors.New("user ID is required for update")
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"name":        user.Name,
			"dateOfBirth": user.DateOfBirth,
			"avatarKey":   user.AvatarKey,
			"updatedAt":   time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, user.ID, updateDoc)
}

// UpdateStatus sets the approval status of an account.
func (r *mongoUserRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.UserStatus) error {
	updateDoc := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, id, updateDoc)
}

// UpdatePasswordHash replaces the stored bcrypt hash.
func (r *mongoUserRepository) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	updateDoc := bson.M{
		"$set": bson.M{
			"passwordHash": hash,
			"updatedAt":    time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, id, updateDoc)
}

// SoftDelete flags the account as deleted; the document is retained.
func (r *mongoUserRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	updateDoc := bson.M{
		"$set": bson.M{
			"isDeleted": true,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, id, updateDoc)
}

func (r *mongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, updateDoc bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "isDeleted": false}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes. Call during startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
