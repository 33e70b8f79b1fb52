package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the workout session lifecycle
type SessionStatus string

const (
	StatusScheduled  SessionStatus = "scheduled"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusCancelled  SessionStatus = "cancelled"
)

// IsTerminal reports whether no further mutation of the session is allowed.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// MaxSessionNotesLength is the upper bound for the free-text notes field.
const MaxSessionNotesLength = 200

// DefaultSessionNotes is applied when a booking is created without notes.
const DefaultSessionNotes = "Personal workout session"

// WorkoutSession represents one person booking gym time for the interval
// [StartTime, EndTime). Cancelled sessions are soft-deleted and kept for audit;
// they never count against gym capacity or the per-day limit.
type WorkoutSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	StartTime time.Time          `bson:"startTime" json:"startTime"`
	EndTime   time.Time          `bson:"endTime" json:"endTime"`
	Status    SessionStatus      `bson:"status" json:"status"`
	IsDeleted bool               `bson:"isDeleted" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Overlaps reports whether the session's interval intersects [start, end)
// using half-open semantics: a session ending exactly when another starts
// does not overlap it.
func (w *WorkoutSession) Overlaps(start, end time.Time) bool {
	return w.StartTime.Before(end) && start.Before(w.EndTime)
}
