package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gymweb/booking-api/internal/domain"
	"gymweb/booking-api/internal/notification"
	"gymweb/booking-api/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Service Interface ---

type AuthService interface {
	// Register creates a client account in pending state; an administrator
	// must approve it before the user can sign in.
	Register(ctx context.Context, name, email, password string, dateOfBirth time.Time) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// ForgotPassword issues a reset code. It never reveals whether the email
	// is registered.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	GetJWTSecret() string
}

// --- Service Implementation ---

type authService struct {
	userRepo      repository.UserRepository
	otpRepo       repository.OTPRepository
	mailer        notification.Sender
	jwtSecret     string
	jwtExpiration time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	mailer notification.Sender,
	jwtSecret string,
	jwtExpiration time.Duration,
	logger *zap.Logger,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		otpRepo:       otpRepo,
		mailer:        mailer,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		logger:        logger,
		now:           time.Now,
	}
}

// Register handles new user registration. Every self-registered account gets
// the client role and pending status; admin accounts are provisioned out of
// band.
func (s *authService) Register(ctx context.Context, name, email, password string, dateOfBirth time.Time) (*domain.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, ErrInvalidInput
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		DateOfBirth:  dateOfBirth,
		Role:         domain.RoleUser,
		Status:       domain.StatusPending,
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// The unique email index closes the race between the lookup above and
		// this insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.ID = userID

	s.logger.Info("user registered", zap.String("userId", userID.Hex()), zap.String("email", user.Email))
	user.PasswordHash = ""
	return user, nil
}

// Login authenticates a user and returns a signed JWT. Clients that have not
// been approved yet cannot sign in; admins bypass the approval check.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if email == "" || password == "" {
		return "", nil, ErrInvalidInput
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, fmt.Errorf("load user: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	if !user.CanBook() {
		return "", nil, ErrAccountNotApproved
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	oid, err := parseObjectID(userID)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrAuthenticationFailed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	return s.userRepo.UpdatePasswordHash(ctx, oid, string(hash))
}

// ForgotPassword generates and emails a reset code. A lookup miss returns
// nil so the endpoint cannot be used to probe registered emails.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}

	code := generateOTPCode()
	otp := &domain.OTP{
		Email:     user.Email,
		Code:      code,
		ExpiresAt: s.now().Add(domain.OTPTTL),
	}
	if err := s.otpRepo.Replace(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, user.Email, user.Name, code); err != nil {
		s.logger.Error("otp email delivery failed", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("send otp email: %w", err)
	}
	s.logger.Info("password reset otp sent", zap.String("email", user.Email))
	return nil
}

// ResetPassword consumes a valid OTP and replaces the password hash.
func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	ok, err := s.otpRepo.Consume(ctx, user.Email, code, s.now())
	if err != nil {
		return fmt.Errorf("validate otp: %w", err)
	}
	if !ok {
		return ErrInvalidOTP
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.Info("password reset completed", zap.String("email", user.Email))
	return nil
}

// generateOTPCode returns a 6-digit numeric code.
func generateOTPCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// --- JWT Helper ---

// JWTClaims defines the structure of the JWT payload. The approval status is
// embedded so the API layer can gate booking endpoints without a directory
// lookup per request.
type JWTClaims struct {
	UserID string            `json:"uid"`
	Role   domain.Role       `json:"role"`
	Status domain.UserStatus `json:"status"`
	jwt.RegisteredClaims
}

// generateJWT creates a new signed token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &JWTClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		Status: user.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gymweb-booking-api",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
