package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"gymweb/booking-api/internal/domain"
	"gymweb/booking-api/internal/repository"
	"gymweb/booking-api/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserProfile is the user projection returned to the API layer. AvatarURL is
// a short-lived presigned download link, empty if no avatar was uploaded.
type UserProfile struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	DateOfBirth time.Time         `json:"dateOfBirth"`
	AvatarURL   string            `json:"avatarUrl,omitempty"`
	Role        domain.Role       `json:"role"`
	Status      domain.UserStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// AvatarUploadResponse carries the presigned PUT URL and the object key the
// client reports back once the upload completes.
type AvatarUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// UpdateProfileInput is a partial profile patch; nil fields are unchanged.
type UpdateProfileInput struct {
	Name        *string
	DateOfBirth *time.Time
	AvatarKey   *string
}

// --- Service Interface ---

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, patch UpdateProfileInput) (*UserProfile, error)
	RequestAvatarUploadURL(ctx context.Context, userID, contentType string) (*AvatarUploadResponse, error)

	// Administrator operations.
	ListUsers(ctx context.Context, status string) ([]UserProfile, error)
	ListPendingUsers(ctx context.Context) ([]UserProfile, error)
	UpdateUserStatus(ctx context.Context, userID, status string) error
	DeleteUser(ctx context.Context, userID string) error
}

// --- Service Implementation ---

type userService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	logger      *zap.Logger
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage, logger *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// GetProfile returns the user's own profile.
func (s *userService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	profile := s.toProfile(ctx, user)
	return &profile, nil
}

// UpdateProfile applies a partial patch to the user's own profile.
func (s *userService) UpdateProfile(ctx context.Context, userID string, patch UpdateProfileInput) (*UserProfile, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.DateOfBirth != nil {
		user.DateOfBirth = *patch.DateOfBirth
	}
	if patch.AvatarKey != nil {
		// Replacing an existing avatar orphans the old object; clean it up
		// best-effort.
		if user.AvatarKey != "" && user.AvatarKey != *patch.AvatarKey {
			if err := s.fileStorage.DeleteObject(ctx, user.AvatarKey); err != nil {
				s.logger.Warn("failed to delete replaced avatar", zap.String("key", user.AvatarKey))
			}
		}
		user.AvatarKey = *patch.AvatarKey
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	profile := s.toProfile(ctx, user)
	return &profile, nil
}

// RequestAvatarUploadURL generates a presigned URL for uploading an avatar
// image directly to object storage.
func (s *userService) RequestAvatarUploadURL(ctx context.Context, userID, contentType string) (*AvatarUploadResponse, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrInvalidInput
	}

	ext := ""
	if parts := strings.Split(contentType, "/"); len(parts) == 2 {
		ext = parts[1]
	}
	objectKey := path.Join("avatars", oid.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), ext))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate upload url: %w", err)
	}
	return &AvatarUploadResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ListUsers returns all accounts, optionally filtered by approval status.
func (s *userService) ListUsers(ctx context.Context, status string) ([]UserProfile, error) {
	var userStatus domain.UserStatus
	if status != "" {
		parsed, err := parseUserStatus(status)
		if err != nil {
			return nil, err
		}
		userStatus = parsed
	}
	users, err := s.userRepo.List(ctx, userStatus)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return s.toProfiles(ctx, users), nil
}

// ListPendingUsers returns client accounts awaiting approval, newest first.
func (s *userService) ListPendingUsers(ctx context.Context) ([]UserProfile, error) {
	users, err := s.userRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	return s.toProfiles(ctx, users), nil
}

// UpdateUserStatus approves, rejects, or suspends a client account. Admin
// accounts cannot be modified this way.
func (s *userService) UpdateUserStatus(ctx context.Context, userID, status string) error {
	oid, err := parseObjectID(userID)
	if err != nil {
		return err
	}
	newStatus, err := parseUserStatus(status)
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
	if user.IsAdmin() {
		return ErrCannotModifyAdmin
	}

	if err := s.userRepo.UpdateStatus(ctx, oid, newStatus); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	s.logger.Info("user status updated",
		zap.String("userId", userID),
		zap.String("status", string(newStatus)))
	return nil
}

// DeleteUser soft-deletes an account; the document is retained for audit.
func (s *userService) DeleteUser(ctx context.Context, userID string) error {
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
	if user.IsAdmin() {
		return ErrCannotModifyAdmin
	}
	return s.userRepo.SoftDelete(ctx, oid)
}

func (s *userService) toProfiles(ctx context.Context, users []domain.User) []UserProfile {
	profiles := make([]UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, s.toProfile(ctx, &users[i]))
	}
	return profiles
}

func (s *userService) toProfile(ctx context.Context, user *domain.User) UserProfile {
	profile := UserProfile{
		ID:          user.ID.Hex(),
		Name:        user.Name,
		Email:       user.Email,
		DateOfBirth: user.DateOfBirth,
		Role:        user.Role,
		Status:      user.Status,
		CreatedAt:   user.CreatedAt,
	}
	if user.AvatarKey != "" {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, user.AvatarKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			s.logger.Warn("failed to presign avatar url", zap.String("key", user.AvatarKey))
		} else {
			profile.AvatarURL = url
		}
	}
	return profile
}

func parseUserStatus(value string) (domain.UserStatus, error) {
	switch status := domain.UserStatus(value); status {
	case domain.StatusPending, domain.StatusApproved, domain.StatusRejected, domain.StatusSuspended:
		return status, nil
	default:
		return "", ErrInvalidInput
	}
}
