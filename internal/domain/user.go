package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserStatus tracks the registration approval state of a client account.
// New registrations start as pending and must be approved by an administrator
// before the user can sign in or book sessions.
type UserStatus string

const (
	StatusPending   UserStatus = "pending"
	StatusApproved  UserStatus = "approved"
	StatusRejected  UserStatus = "rejected"
	StatusSuspended UserStatus = "suspended"
)

// User represents an account in the system (a gym client or an administrator).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // Unique, lowercased
	PasswordHash string             `bson:"passwordHash" json:"-"`
	DateOfBirth  time.Time          `bson:"dateOfBirth" json:"dateOfBirth"`
	AvatarKey    string             `bson:"avatarKey,omitempty" json:"-"` // Object storage key, not a URL
	Role         Role               `bson:"role" json:"role"`
	Status       UserStatus         `bson:"status" json:"status"`
	IsDeleted    bool               `bson:"isDeleted" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanBook reports whether the account is allowed to use the booking endpoints.
// Admins bypass the approval flow.
func (u *User) CanBook() bool {
	return u.IsAdmin() || u.Status == StatusApproved
}
