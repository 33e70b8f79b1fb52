package mongo

import (
	"context"
	"errors"
	"time"

	"gymweb/booking-api/internal/domain"
	"gymweb/booking-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "workout_sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new workout session repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// activeFilter matches sessions that occupy gym capacity: not soft-deleted
// and not cancelled.
func activeFilter() bson.M {
	return bson.M{
		"isDeleted": false,
		"status":    bson.M{"$ne": domain.StatusCancelled},
	}
}

// Create inserts a new session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session requires clientId")
	}
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single non-deleted session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	return r.findOne(ctx, bson.M{"_id": id, "isDeleted": false})
}

// GetByIDForClient retrieves a non-deleted session scoped to its owner.
func (r *mongoSessionRepository) GetByIDForClient(ctx context.Context, id, clientID primitive.ObjectID) (*domain.WorkoutSession, error) {
	return r.findOne(ctx, bson.M{"_id": id, "clientId": clientID, "isDeleted": false})
}

func (r *mongoSessionRepository) findOne(ctx context.Context, filter bson.M) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Update persists the mutable fields of a session.
func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.WorkoutSession) error {
	if session.ID == primitive.NilObjectID {
		return errors.New("session ID is required for update")
	}

	filter := bson.M{"_id": session.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"notes":     session.Notes,
			"startTime": session.StartTime,
			"endTime":   session.EndTime,
			"status":    session.Status,
			"isDeleted": session.IsDeleted,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Find returns a page of non-deleted sessions matching the filter, plus the
// total match count for pagination.
func (r *mongoSessionRepository) Find(ctx context.Context, filter repository.SessionFilter) ([]domain.WorkoutSession, int64, error) {
	query := bson.M{"isDeleted": false}
	if filter.ClientID != nil {
		query["clientId"] = *filter.ClientID
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.From != nil || filter.To != nil {
		timeRange := bson.M{}
		if filter.From != nil {
			timeRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			timeRange["$lte"] = *filter.To
		}
		query["startTime"] = timeRange
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	sortDir := 1
	if filter.SortDesc {
		sortDir = -1
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "startTime", Value: sortDir}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.WorkoutSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// FindByClient returns all non-deleted sessions for a client, soonest first.
func (r *mongoSessionRepository) FindByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	filter := bson.M{"clientId": clientID, "isDeleted": false}
	findOptions := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.WorkoutSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountOnDay counts the client's active sessions starting within
// [dayStart, dayEnd].
func (r *mongoSessionRepository) CountOnDay(ctx context.Context, clientID primitive.ObjectID, dayStart, dayEnd time.Time, excludeID primitive.ObjectID) (int64, error) {
	filter := activeFilter()
	filter["clientId"] = clientID
	filter["startTime"] = bson.M{"$gte": dayStart, "$lte": dayEnd}
	if excludeID != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return r.collection.CountDocuments(ctx, filter)
}

// CountOverlapping counts active sessions intersecting [start, end).
// Half-open semantics: a session ending exactly at start does not count.
func (r *mongoSessionRepository) CountOverlapping(ctx context.Context, start, end time.Time, excludeID primitive.ObjectID) (int64, error) {
	filter := activeFilter()
	filter["startTime"] = bson.M{"$lt": end}
	filter["endTime"] = bson.M{"$gt": start}
	if excludeID != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return r.collection.CountDocuments(ctx, filter)
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Daily-limit lookup path
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index(),
		},
		{
			// Overlap counting path
			Keys:    bson.D{{Key: "startTime", Value: 1}, {Key: "endTime", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
