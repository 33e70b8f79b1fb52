package repository

import (
	"context"
	"time"

	"gymweb/booking-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// SessionFilter is the structured predicate for session listings.
// Nil pointer fields are ignored. From/To bound StartTime.
type SessionFilter struct {
	ClientID *primitive.ObjectID
	Status   *domain.SessionStatus
	From     *time.Time
	To       *time.Time
	Page     int64
	Limit    int64
	SortDesc bool // default ordering is StartTime ascending
}

// SessionRepository defines the interface for interacting with workout
// session data. Every lookup excludes soft-deleted documents; the capacity
// and same-day queries additionally exclude cancelled sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	// GetByID fetches a non-deleted session regardless of owner.
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	// GetByIDForClient fetches a non-deleted session only when it is owned by
	// clientID, so a miss conflates "absent" and "not yours".
	GetByIDForClient(ctx context.Context, id, clientID primitive.ObjectID) (*domain.WorkoutSession, error)
	Update(ctx context.Context, session *domain.WorkoutSession) error
	Find(ctx context.Context, filter SessionFilter) ([]domain.WorkoutSession, int64, error)
	FindByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutSession, error)
	// CountOnDay counts active sessions held by clientID whose StartTime
	// falls in [dayStart, dayEnd]. excludeID (when non-nil ObjectID) is left
	// out of the count.
	CountOnDay(ctx context.Context, clientID primitive.ObjectID, dayStart, dayEnd time.Time, excludeID primitive.ObjectID) (int64, error)
	// CountOverlapping counts active sessions whose interval intersects
	// [start, end) with half-open semantics.
	CountOverlapping(ctx context.Context, start, end time.Time, excludeID primitive.ObjectID) (int64, error)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByIDs is a batched multi-get used to hydrate client names in session
	// listings without one directory call per row.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.User, error)
	List(ctx context.Context, status domain.UserStatus) ([]domain.User, error)
	ListPending(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.UserStatus) error
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
}

// OTPRepository defines the interface for password-reset codes.
type OTPRepository interface {
	// Replace removes any pending code for the email and stores a new one.
	Replace(ctx context.Context, otp *domain.OTP) error
	// Consume validates and deletes a matching, unexpired code. It returns
	// false when no such code exists.
	Consume(ctx context.Context, email, code string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
