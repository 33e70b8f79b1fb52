package api

import (
	"net/http"
	"time"

	"gymweb/booking-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler holds the user service dependency.
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// --- Request Structs ---

type UpdateProfileRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	DateOfBirth *string `json:"dateOfBirth"`
	AvatarKey   *string `json:"avatarKey"`
}

type AvatarUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected suspended"`
}

// --- Handler Methods ---

// GetMe returns the authenticated user's profile.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe patches the authenticated user's profile.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	patch := service.UpdateProfileInput{
		Name:      req.Name,
		AvatarKey: req.AvatarKey,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "dateOfBirth must be in YYYY-MM-DD format")
			return
		}
		patch.DateOfBirth = &dob
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), userID, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RequestAvatarUploadURL returns a presigned PUT URL for an avatar image.
func (h *UserHandler) RequestAvatarUploadURL(c *gin.Context) {
	var req AvatarUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	resp, err := h.userService.RequestAvatarUploadURL(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListUsers returns all accounts, optionally filtered by status (admin only).
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ListPendingUsers returns accounts awaiting approval (admin only).
func (h *UserHandler) ListPendingUsers(c *gin.Context) {
	users, err := h.userService.ListPendingUsers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserStatus approves, rejects, or suspends an account (admin only).
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.userService.UpdateUserStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User status updated to " + req.Status})
}

// DeleteUser soft-deletes an account (admin only).
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
