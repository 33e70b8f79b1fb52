package api

import (
	"net/http"
	"strconv"

	"gymweb/booking-api/internal/domain"
	"gymweb/booking-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler holds the booking service dependency.
type SessionHandler struct {
	bookingService service.BookingService
	logger         *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(bookingService service.BookingService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{bookingService: bookingService, logger: logger}
}

// --- Request Structs ---

type CreateSessionRequest struct {
	Notes     string `json:"notes" binding:"omitempty,max=200"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

type UpdateSessionRequest struct {
	Notes     *string `json:"notes" binding:"omitempty,max=200"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
}

// --- Handler Methods ---

// CreateSession books a new workout session for the authenticated client.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	session, err := h.bookingService.Create(c.Request.Context(), userID, service.CreateSessionInput{
		Notes:     req.Notes,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// ListSessions returns a filtered, paginated listing (admin only).
func (h *SessionHandler) ListSessions(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)

	query := service.ListSessionsQuery{
		ClientID:  c.Query("clientId"),
		Status:    c.Query("status"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Page:      page,
		Limit:     limit,
		SortDesc:  c.Query("sort") == "desc",
	}

	result, err := h.bookingService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMySessions returns the authenticated client's own sessions.
func (h *SessionHandler) ListMySessions(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	sessions, err := h.bookingService.ListForClient(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// GetSession returns a single hydrated session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.bookingService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// UpdateSession patches an owned session; interval changes re-run the full
// validation pipeline.
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	var req UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	session, err := h.bookingService.Update(c.Request.Context(), c.Param("id"), userID, service.UpdateSessionInput{
		Notes:     req.Notes,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession cancels a session. Admins may cancel any session (the client
// is notified by email); clients may only cancel their own scheduled,
// not-yet-started sessions.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user role from token")
		return
	}

	if role == domain.RoleAdmin {
		err = h.bookingService.CancelAsAdmin(c.Request.Context(), c.Param("id"))
	} else {
		err = h.bookingService.CancelAsOwner(c.Request.Context(), c.Param("id"), userID)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workout session cancelled successfully"})
}
