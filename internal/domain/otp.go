package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTPTTL is how long a password-reset code stays valid.
const OTPTTL = 5 * time.Minute

// OTP is a single-use password-reset code tied to an email address.
// Only one code can be pending per email; issuing a new one replaces it.
type OTP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Code      string             `bson:"code"`
	ExpiresAt time.Time          `bson:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt"`
}
