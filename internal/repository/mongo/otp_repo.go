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

const otpCollectionName = "otps"

// mongoOTPRepository implements repository.OTPRepository
type mongoOTPRepository struct {
	collection *mongo.Collection
}

// NewMongoOTPRepository creates a new password-reset code repository.
func NewMongoOTPRepository(db *mongo.Database) repository.OTPRepository {
	return &mongoOTPRepository{
		collection: db.Collection(otpCollectionName),
	}
}

// Replace drops any pending code for the email and stores the new one, so at
// most one reset code is valid per account at a time.
func (r *mongoOTPRepository) Replace(ctx context.Context, otp *domain.OTP) error {
	email := strings.ToLower(strings.TrimSpace(otp.Email))
	if _, err := r.collection.DeleteMany(ctx, bson.M{"email": email}); err != nil {
		return err
	}

	otp.ID = primitive.NewObjectID()
	otp.Email = email
	otp.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, otp)
	return err
}

// Consume validates a code and deletes it on success (single use).
func (r *mongoOTPRepository) Consume(ctx context.Context, email, code string, now time.Time) (bool, error) {
	filter := bson.M{
		"email":     strings.ToLower(strings.TrimSpace(email)),
		"code":      code,
		"expiresAt": bson.M{"$gt": now},
	}

	var otp domain.OTP
	err := r.collection.FindOneAndDelete(ctx, filter).Decode(&otp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteExpired purges codes past their expiry. Redundant with the TTL index
// but keeps the collection tidy when the monitor lags.
func (r *mongoOTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureOTPIndexes creates necessary indexes. Call during startup.
func EnsureOTPIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Mongo removes expired codes automatically.
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
