package api

import (
	"errors"
	"net/http"

	"gymweb/booking-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP status codes. Business-rule
// rejections are client-correctable and land in the 4xx range; anything
// unclassified is logged with context and surfaced as an opaque 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrDurationExceeded),
		errors.Is(err, service.ErrOutOfBookingWindow),
		errors.Is(err, service.ErrDailyLimitExceeded),
		errors.Is(err, service.ErrCapacityExceeded):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSessionNotFoundOrUnauthorized),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrAlreadyStarted),
		errors.Is(err, service.ErrUserAlreadyExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAuthenticationFailed),
		errors.Is(err, service.ErrInvalidOTP):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAccountNotApproved),
		errors.Is(err, service.ErrCannotModifyAdmin):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
