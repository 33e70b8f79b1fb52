package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymweb/booking-api/internal/config"
	"gymweb/booking-api/internal/domain"
	"gymweb/booking-api/internal/notification"
	"gymweb/booking-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Input/Output Structs ---

// CreateSessionInput carries the plain data for a new booking. Timestamps
// cross this boundary as ISO-8601 strings and are parsed here.
type CreateSessionInput struct {
	Notes     string
	StartTime string
	EndTime   string
}

// UpdateSessionInput is a partial patch; nil fields keep the stored value.
type UpdateSessionInput struct {
	Notes     *string
	StartTime *string
	EndTime   *string
}

// ListSessionsQuery holds the admin listing filters.
type ListSessionsQuery struct {
	ClientID  string
	Status    string
	StartDate string
	EndDate   string
	Page      int64
	Limit     int64
	SortDesc  bool
}

// SessionResponse is the hydrated projection returned to the API layer,
// including the denormalized client display name.
type SessionResponse struct {
	ID         string               `json:"id"`
	ClientID   string               `json:"clientId"`
	ClientName string               `json:"clientName"`
	Notes      string               `json:"notes"`
	StartTime  time.Time            `json:"startTime"`
	EndTime    time.Time            `json:"endTime"`
	Status     domain.SessionStatus `json:"status"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// SessionPage is a paginated listing result.
type SessionPage struct {
	Sessions   []SessionResponse `json:"sessions"`
	Total      int64             `json:"total"`
	Page       int64             `json:"page"`
	TotalPages int64             `json:"totalPages"`
}

const unknownClientName = "Unknown Client"

// adminCancellationReason is the reason line in the notification email.
const adminCancellationReason = "Session cancelled by gym administration"

// --- Service Interface ---

// BookingService orchestrates the workout session lifecycle: every mutation
// runs the validation pipeline (duration, booking window, daily limit,
// overlap capacity, in that order — first failure wins) before touching the
// store.
type BookingService interface {
	Create(ctx context.Context, clientID string, input CreateSessionInput) (*SessionResponse, error)
	Update(ctx context.Context, sessionID, clientID string, patch UpdateSessionInput) (*SessionResponse, error)
	CancelAsOwner(ctx context.Context, sessionID, clientID string) error
	CancelAsAdmin(ctx context.Context, sessionID string) error
	GetByID(ctx context.Context, sessionID string) (*SessionResponse, error)
	List(ctx context.Context, query ListSessionsQuery) (*SessionPage, error)
	ListForClient(ctx context.Context, clientID string) ([]SessionResponse, error)
}

// --- Service Implementation ---

type bookingService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	mailer      notification.Sender
	rules       config.BookingConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewBookingService creates a new instance of bookingService.
func NewBookingService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	mailer notification.Sender,
	rules config.BookingConfig,
	logger *zap.Logger,
) BookingService {
	if rules.CapacityCeiling <= 0 {
		rules.CapacityCeiling = 8
	}
	if rules.MaxSessionDuration <= 0 {
		rules.MaxSessionDuration = 3 * time.Hour
	}
	if rules.DailySessionLimit <= 0 {
		rules.DailySessionLimit = 1
	}
	return &bookingService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		mailer:      mailer,
		rules:       rules,
		logger:      logger,
		now:         time.Now,
	}
}

// Create books a new session for the client after running the full
// validation pipeline.
func (s *bookingService) Create(ctx context.Context, clientID string, input CreateSessionInput) (*SessionResponse, error) {
	clientOID, err := parseObjectID(clientID)
	if err != nil {
		return nil, err
	}
	start, err := parseTimestamp(input.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp(input.EndTime)
	if err != nil {
		return nil, err
	}

	if err := s.runValidationPipeline(ctx, clientOID, start, end, primitive.NilObjectID); err != nil {
		return nil, err
	}

	notes := input.Notes
	if notes == "" {
		notes = domain.DefaultSessionNotes
	}
	session := &domain.WorkoutSession{
		ClientID:  clientOID,
		Notes:     notes,
		StartTime: start,
		EndTime:   end,
		Status:    domain.StatusScheduled,
	}
	if _, err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("session created",
		zap.String("sessionId", session.ID.Hex()),
		zap.String("clientId", clientID),
		zap.Time("startTime", start))
	return s.hydrate(ctx, session)
}

// Update applies a partial patch to an owned, non-terminal session. When the
// interval changes, the prospective final interval is validated with the
// session itself excluded so its prior state does not self-collide.
func (s *bookingService) Update(ctx context.Context, sessionID, clientID string, patch UpdateSessionInput) (*SessionResponse, error) {
	sessionOID, err := parseObjectID(sessionID)
	if err != nil {
		return nil, err
	}
	clientOID, err := parseObjectID(clientID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByIDForClient(ctx, sessionOID, clientOID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFoundOrUnauthorized
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.Status.IsTerminal() {
		return nil, ErrInvalidState
	}

	if patch.StartTime != nil || patch.EndTime != nil {
		start, end := session.StartTime, session.EndTime
		if patch.StartTime != nil {
			if start, err = parseTimestamp(*patch.StartTime); err != nil {
				return nil, err
			}
		}
		if patch.EndTime != nil {
			if end, err = parseTimestamp(*patch.EndTime); err != nil {
				return nil, err
			}
		}
		if err := s.runValidationPipeline(ctx, clientOID, start, end, sessionOID); err != nil {
			return nil, err
		}
		session.StartTime = start
		session.EndTime = end
	}
	if patch.Notes != nil {
		session.Notes = *patch.Notes
	}

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return s.hydrate(ctx, session)
}

// CancelAsOwner lets a client cancel their own session, but only while it is
// still scheduled and has not started yet.
func (s *bookingService) CancelAsOwner(ctx context.Context, sessionID, clientID string) error {
	sessionOID, err := parseObjectID(sessionID)
	if err != nil {
		return err
	}
	clientOID, err := parseObjectID(clientID)
	if err != nil {
		return err
	}

	session, err := s.sessionRepo.GetByIDForClient(ctx, sessionOID, clientOID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFoundOrUnauthorized
		}
		return fmt.Errorf("load session: %w", err)
	}
	if session.Status != domain.StatusScheduled {
		return ErrInvalidState
	}
	if !session.StartTime.After(s.now()) {
		return ErrAlreadyStarted
	}

	session.IsDeleted = true
	session.Status = domain.StatusCancelled
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}

	s.logger.Info("session cancelled by owner",
		zap.String("sessionId", sessionID),
		zap.String("clientId", clientID))
	return nil
}

// CancelAsAdmin cancels any session regardless of state or timing, then
// notifies the client by email. The notification is best-effort: by the time
// it runs the cancellation has already committed, so a delivery failure is
// logged and swallowed.
func (s *bookingService) CancelAsAdmin(ctx context.Context, sessionID string) error {
	sessionOID, err := parseObjectID(sessionID)
	if err != nil {
		return err
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionOID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("load session: %w", err)
	}

	session.IsDeleted = true
	session.Status = domain.StatusCancelled
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("cancel session: %w", err)
	}
	s.logger.Info("session cancelled by admin", zap.String("sessionId", sessionID))

	s.notifyCancellation(ctx, session)
	return nil
}

// notifyCancellation emails the session owner about an administrative
// cancellation. Never returns an error.
func (s *bookingService) notifyCancellation(ctx context.Context, session *domain.WorkoutSession) {
	client, err := s.userRepo.GetByID(ctx, session.ClientID)
	if err != nil {
		s.logger.Warn("cancellation notice skipped: client lookup failed",
			zap.String("sessionId", session.ID.Hex()), zap.Error(err))
		return
	}
	if client.Email == "" {
		s.logger.Warn("cancellation notice skipped: client has no email",
			zap.String("clientId", client.ID.Hex()))
		return
	}

	data := notification.CancellationData{
		Name:        client.Name,
		Notes:       session.Notes,
		SessionDate: session.StartTime.Format("January 2, 2006"),
		SessionTime: session.StartTime.Format("15:04"),
		Reason:      adminCancellationReason,
	}
	if err := s.mailer.SendSessionCancellation(ctx, client.Email, data); err != nil {
		s.logger.Error("cancellation notice delivery failed",
			zap.String("sessionId", session.ID.Hex()),
			zap.String("to", client.Email),
			zap.Error(err))
	}
}

// GetByID returns a hydrated session projection.
func (s *bookingService) GetByID(ctx context.Context, sessionID string) (*SessionResponse, error) {
	sessionOID, err := parseObjectID(sessionID)
	if err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionOID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return s.hydrate(ctx, session)
}

// List returns a filtered, paginated page of sessions for administrators.
// Cancelled (soft-deleted) sessions never appear.
func (s *bookingService) List(ctx context.Context, query ListSessionsQuery) (*SessionPage, error) {
	filter := repository.SessionFilter{
		Page:     query.Page,
		Limit:    query.Limit,
		SortDesc: query.SortDesc,
	}
	if query.ClientID != "" {
		oid, err := parseObjectID(query.ClientID)
		if err != nil {
			return nil, err
		}
		filter.ClientID = &oid
	}
	if query.Status != "" {
		status, err := parseSessionStatus(query.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if query.StartDate != "" {
		from, err := parseTimestamp(query.StartDate)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if query.EndDate != "" {
		to, err := parseTimestamp(query.EndDate)
		if err != nil {
			return nil, err
		}
		filter.To = &to
	}

	sessions, total, err := s.sessionRepo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	responses, err := s.hydrateAll(ctx, sessions)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	return &SessionPage{
		Sessions:   responses,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// ListForClient returns the client's own sessions, soonest first, excluding
// cancelled ones.
func (s *bookingService) ListForClient(ctx context.Context, clientID string) ([]SessionResponse, error) {
	clientOID, err := parseObjectID(clientID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.FindByClient(ctx, clientOID)
	if err != nil {
		return nil, fmt.Errorf("list client sessions: %w", err)
	}
	return s.hydrateAll(ctx, sessions)
}

// === Validation Pipeline ===

// runValidationPipeline enforces the booking rules in fixed order: duration,
// booking window, daily limit, overlap capacity. The first violation wins and
// no further checks run.
//
// The daily-limit and capacity checks are read-then-write and not atomic
// against concurrent creates; two simultaneous bookings for the same slot can
// both pass and jointly exceed the ceiling. Closing this requires a
// store-level constraint or a per-slot lease (see DESIGN.md).
func (s *bookingService) runValidationPipeline(ctx context.Context, clientID primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) error {
	if err := validateDuration(s.rules, start, end); err != nil {
		return err
	}
	if err := validateBookingWindow(s.now(), start); err != nil {
		return err
	}

	dayStart, dayEnd := dayBounds(start)
	sameDay, err := s.sessionRepo.CountOnDay(ctx, clientID, dayStart, dayEnd, excludeID)
	if err != nil {
		return fmt.Errorf("daily limit check: %w", err)
	}
	if sameDay >= int64(s.rules.DailySessionLimit) {
		return ErrDailyLimitExceeded
	}

	overlapping, err := s.sessionRepo.CountOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("capacity check: %w", err)
	}
	if overlapping >= int64(s.rules.CapacityCeiling) {
		return ErrCapacityExceeded
	}
	return nil
}

// === Hydration ===

func (s *bookingService) hydrate(ctx context.Context, session *domain.WorkoutSession) (*SessionResponse, error) {
	name := unknownClientName
	if client, err := s.userRepo.GetByID(ctx, session.ClientID); err == nil {
		name = client.Name
	}
	resp := toSessionResponse(session, name)
	return &resp, nil
}

// hydrateAll resolves client display names with a single batched directory
// lookup instead of one call per session.
func (s *bookingService) hydrateAll(ctx context.Context, sessions []domain.WorkoutSession) ([]SessionResponse, error) {
	ids := make([]primitive.ObjectID, 0, len(sessions))
	seen := make(map[primitive.ObjectID]bool, len(sessions))
	for _, session := range sessions {
		if !seen[session.ClientID] {
			seen[session.ClientID] = true
			ids = append(ids, session.ClientID)
		}
	}

	clients, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve client names: %w", err)
	}

	responses := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		name := unknownClientName
		if client, ok := clients[sessions[i].ClientID]; ok {
			name = client.Name
		}
		responses = append(responses, toSessionResponse(&sessions[i], name))
	}
	return responses, nil
}

func toSessionResponse(session *domain.WorkoutSession, clientName string) SessionResponse {
	return SessionResponse{
		ID:         session.ID.Hex(),
		ClientID:   session.ClientID.Hex(),
		ClientName: clientName,
		Notes:      session.Notes,
		StartTime:  session.StartTime,
		EndTime:    session.EndTime,
		Status:     session.Status,
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
	}
}

// === Parsing Helpers ===

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidInput
	}
	return oid, nil
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ErrInvalidInput
	}
	return t, nil
}

func parseSessionStatus(value string) (domain.SessionStatus, error) {
	switch status := domain.SessionStatus(value); status {
	case domain.StatusScheduled, domain.StatusInProgress, domain.StatusCompleted, domain.StatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidInput
	}
}
