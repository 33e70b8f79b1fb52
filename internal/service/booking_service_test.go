package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gymweb/booking-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// testNow is a Wednesday, so the booking window runs from Monday 2026-01-19
// through Sunday 2026-02-01.
var testNow = time.Date(2026, 1, 21, 10, 0, 0, 0, time.UTC)

func newTestBookingService(t *testing.T) (*bookingService, *fakeSessionRepo, *fakeUserRepo, *fakeMailer) {
	t.Helper()
	sessions := newFakeSessionRepo()
	users := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := NewBookingService(sessions, users, mailer, testRules, zap.NewNop()).(*bookingService)
	svc.now = func() time.Time { return testNow }
	return svc, sessions, users, mailer
}

func approvedClient(users *fakeUserRepo, name, email string) primitive.ObjectID {
	return users.add(domain.User{
		Name:   name,
		Email:  email,
		Role:   domain.RoleUser,
		Status: domain.StatusApproved,
	})
}

func rfc3339(t time.Time) string {
	return t.Format(time.RFC3339)
}

func TestCreateSession(t *testing.T) {
	svc, _, users, _ := newTestBookingService(t)
	clientID := approvedClient(users, "Ada Lovelace", "ada@example.com")

	start := testNow.Add(24 * time.Hour)
	resp, err := svc.Create(context.Background(), clientID.Hex(), CreateSessionInput{
		StartTime: rfc3339(start),
		EndTime:   rfc3339(start.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.Status != domain.StatusScheduled {
		t.Errorf("status = %q, want %q", resp.Status, domain.StatusScheduled)
	}
	if resp.Notes != domain.DefaultSessionNotes {
		t.Errorf("notes = %q, want default %q", resp.Notes, domain.DefaultSessionNotes)
	}
	if resp.ClientName != "Ada Lovelace" {
		t.Errorf("clientName = %q, want hydrated name", resp.ClientName)
	}
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	svc, _, users, _ := newTestBookingService(t)
	clientID := approvedClient(users, "Ada", "ada@example.com")
	start := testNow.Add(24 * time.Hour)

	tests := []struct {
		name     string
		clientID string
		input    CreateSessionInput
	}{
		{"malformed client id", "not-an-id", CreateSessionInput{
			StartTime: rfc3339(start), EndTime: rfc3339(start.Add(time.Hour)),
		}},
		{"malformed start time", clientID.Hex(), CreateSessionInput{
			StartTime: "tomorrow at noon", EndTime: rfc3339(start.Add(time.Hour)),
		}},
		{"malformed end time", clientID.Hex(), CreateSessionInput{
			StartTime: rfc3339(start), EndTime: "",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.clientID, tt.input); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Create() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCreateSessionCapacityCeiling(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	start := testNow.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	// Fill the slot up to the ceiling with other clients.
	for i := 0; i < testRules.CapacityCeiling; i++ {
		other := approvedClient(users, fmt.Sprintf("Client %d", i), fmt.Sprintf("c%d@example.com", i))
		sessions.add(domain.WorkoutSession{
			ClientID:  other,
			StartTime: start,
			EndTime:   end,
			Status:    domain.StatusScheduled,
		})
	}

	clientID := approvedClient(users, "Latecomer", "late@example.com")
	_, err := svc.Create(context.Background(), clientID.Hex(), CreateSessionInput{
		StartTime: rfc3339(start),
		EndTime:   rfc3339(end),
	})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Create() error = %v, want ErrCapacityExceeded", err)
	}

	// Intervals are half-open: a session starting exactly when the full
	// slot ends does not overlap it.
	_, err = svc.Create(context.Background(), clientID.Hex(), CreateSessionInput{
		StartTime: rfc3339(end),
		EndTime:   rfc3339(end.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("Create() at slot boundary error = %v, want nil", err)
	}
}

func TestCreateSessionCapacityIgnoresCancelled(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	start := testNow.Add(24 * time.Hour)
	end := start.Add(time.Hour)

	for i := 0; i < testRules.CapacityCeiling; i++ {
		other := approvedClient(users, fmt.Sprintf("Client %d", i), fmt.Sprintf("c%d@example.com", i))
		s := domain.WorkoutSession{
			ClientID:  other,
			StartTime: start,
			EndTime:   end,
			Status:    domain.StatusScheduled,
		}
		if i == 0 {
			s.Status = domain.StatusCancelled
			s.IsDeleted = true
		}
		sessions.add(s)
	}

	clientID := approvedClient(users, "Booker", "booker@example.com")
	if _, err := svc.Create(context.Background(), clientID.Hex(), CreateSessionInput{
		StartTime: rfc3339(start),
		EndTime:   rfc3339(end),
	}); err != nil {
		t.Fatalf("Create() error = %v, want nil (cancelled session frees capacity)", err)
	}
}

func TestCreateSessionDailyLimit(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	clientID := approvedClient(users, "Ada", "ada@example.com")

	morning := testNow.Add(24 * time.Hour)
	sessions.add(domain.WorkoutSession{
		ClientID:  clientID,
		StartTime: morning,
		EndTime:   morning.Add(time.Hour),
		Status:    domain.StatusScheduled,
	})

	// Second booking the same calendar day is rejected.
	evening := morning.Add(8 * time.Hour)
	_, err := svc.Create(context.Background(), clientID.Hex(), CreateSessionInput{
		StartTime: rfc3339(evening),
		EndTime:   rfc3339(evening.Add(time.Hour)),
	})
	if !errors.Is(err, ErrDailyLimitExceeded) {
		t.Fatalf("Create() same day error = %v, want ErrDailyLimitExceeded", err)
	}

	// The next day is fine.
	nextDay := morning.Add(24 * time.Hour)
	if _, err := svc.Create(context.Background(), clientID.Hex(), CreateSessionInput{
		StartTime: rfc3339(nextDay),
		EndTime:   rfc3339(nextDay.Add(time.Hour)),
	}); err != nil {
		t.Fatalf("Create() next day error = %v, want nil", err)
	}
}

// The pipeline runs duration, window, daily limit, capacity in that order;
// the first violation is the one reported even when several apply.
func TestValidationPipelineOrder(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	clientID := approvedClient(users, "Ada", "ada@example.com")

	morning := testNow.Add(24 * time.Hour)
	sessions.add(domain.WorkoutSession{
		ClientID:  clientID,
		StartTime: morning,
		EndTime:   morning.Add(time.Hour),
		Status:    domain.StatusScheduled,
	})

	// Over-long session on a day that already has one: duration wins.
	_, err := svc.Create(context.Background(), clientID.Hex(), CreateSessionInput{
		StartTime: rfc3339(morning.Add(4 * time.Hour)),
		EndTime:   rfc3339(morning.Add(8 * time.Hour)),
	})
	if !errors.Is(err, ErrDurationExceeded) {
		t.Fatalf("Create() error = %v, want ErrDurationExceeded to win", err)
	}

	// Out-of-window session on a day that already has one: window wins.
	farOut := testNow.AddDate(0, 1, 0)
	_, err = svc.Create(context.Background(), clientID.Hex(), CreateSessionInput{
		StartTime: rfc3339(farOut),
		EndTime:   rfc3339(farOut.Add(time.Hour)),
	})
	if !errors.Is(err, ErrOutOfBookingWindow) {
		t.Fatalf("Create() error = %v, want ErrOutOfBookingWindow to win", err)
	}
}

func TestUpdateSessionExcludesSelf(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	clientID := approvedClient(users, "Ada", "ada@example.com")

	start := testNow.Add(24 * time.Hour)
	sessionID := sessions.add(domain.WorkoutSession{
		ClientID:  clientID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    domain.StatusScheduled,
	})

	// Shifting within the same day must not trip the daily limit or
	// collide with the session's own stored interval.
	newStart := rfc3339(start.Add(2 * time.Hour))
	newEnd := rfc3339(start.Add(3 * time.Hour))
	resp, err := svc.Update(context.Background(), sessionID.Hex(), clientID.Hex(), UpdateSessionInput{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := rfc3339(resp.StartTime); got != newStart {
		t.Errorf("startTime = %s, want %s", got, newStart)
	}
}

func TestUpdateSessionPartialPatch(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	clientID := approvedClient(users, "Ada", "ada@example.com")

	start := testNow.Add(24 * time.Hour)
	sessionID := sessions.add(domain.WorkoutSession{
		ClientID:  clientID,
		Notes:     "Leg day",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    domain.StatusScheduled,
	})

	notes := "Upper body"
	resp, err := svc.Update(context.Background(), sessionID.Hex(), clientID.Hex(), UpdateSessionInput{Notes: &notes})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if resp.Notes != "Upper body" {
		t.Errorf("notes = %q, want %q", resp.Notes, "Upper body")
	}
	if !resp.StartTime.Equal(start) {
		t.Errorf("startTime changed by notes-only patch: %v", resp.StartTime)
	}
}

func TestUpdateSessionOwnershipAndState(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	owner := approvedClient(users, "Owner", "owner@example.com")
	stranger := approvedClient(users, "Stranger", "stranger@example.com")

	start := testNow.Add(24 * time.Hour)
	sessionID := sessions.add(domain.WorkoutSession{
		ClientID:  owner,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    domain.StatusScheduled,
	})
	completedID := sessions.add(domain.WorkoutSession{
		ClientID:  owner,
		StartTime: testNow.Add(-24 * time.Hour),
		EndTime:   testNow.Add(-23 * time.Hour),
		Status:    domain.StatusCompleted,
	})

	notes := "hijack"
	if _, err := svc.Update(context.Background(), sessionID.Hex(), stranger.Hex(), UpdateSessionInput{Notes: &notes}); !errors.Is(err, ErrSessionNotFoundOrUnauthorized) {
		t.Errorf("Update() by non-owner error = %v, want ErrSessionNotFoundOrUnauthorized", err)
	}
	if _, err := svc.Update(context.Background(), completedID.Hex(), owner.Hex(), UpdateSessionInput{Notes: &notes}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Update() of completed session error = %v, want ErrInvalidState", err)
	}
}

func TestCancelAsOwner(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	clientID := approvedClient(users, "Ada", "ada@example.com")

	start := testNow.Add(24 * time.Hour)
	sessionID := sessions.add(domain.WorkoutSession{
		ClientID:  clientID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    domain.StatusScheduled,
	})

	if err := svc.CancelAsOwner(context.Background(), sessionID.Hex(), clientID.Hex()); err != nil {
		t.Fatalf("CancelAsOwner() error = %v", err)
	}
	stored := sessions.sessions[sessionID]
	if !stored.IsDeleted || stored.Status != domain.StatusCancelled {
		t.Errorf("session after owner cancel: isDeleted=%v status=%q, want soft-deleted cancelled", stored.IsDeleted, stored.Status)
	}
}

func TestCancelAsOwnerRejections(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	owner := approvedClient(users, "Owner", "owner@example.com")
	stranger := approvedClient(users, "Stranger", "stranger@example.com")

	startedID := sessions.add(domain.WorkoutSession{
		ClientID:  owner,
		StartTime: testNow.Add(-10 * time.Minute),
		EndTime:   testNow.Add(50 * time.Minute),
		Status:    domain.StatusScheduled,
	})
	inProgressID := sessions.add(domain.WorkoutSession{
		ClientID:  owner,
		StartTime: testNow.Add(24 * time.Hour),
		EndTime:   testNow.Add(25 * time.Hour),
		Status:    domain.StatusInProgress,
	})
	futureID := sessions.add(domain.WorkoutSession{
		ClientID:  owner,
		StartTime: testNow.Add(48 * time.Hour),
		EndTime:   testNow.Add(49 * time.Hour),
		Status:    domain.StatusScheduled,
	})

	if err := svc.CancelAsOwner(context.Background(), startedID.Hex(), owner.Hex()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("cancel of started session error = %v, want ErrAlreadyStarted", err)
	}
	if err := svc.CancelAsOwner(context.Background(), inProgressID.Hex(), owner.Hex()); !errors.Is(err, ErrInvalidState) {
		t.Errorf("cancel of in-progress session error = %v, want ErrInvalidState", err)
	}
	if err := svc.CancelAsOwner(context.Background(), futureID.Hex(), stranger.Hex()); !errors.Is(err, ErrSessionNotFoundOrUnauthorized) {
		t.Errorf("cancel by non-owner error = %v, want ErrSessionNotFoundOrUnauthorized", err)
	}
}

func TestCancelAsAdminNotifiesClient(t *testing.T) {
	svc, sessions, users, mailer := newTestBookingService(t)
	clientID := approvedClient(users, "Ada Lovelace", "ada@example.com")

	// Admins may cancel even sessions a client no longer could.
	sessionID := sessions.add(domain.WorkoutSession{
		ClientID:  clientID,
		Notes:     "Morning strength",
		StartTime: testNow.Add(-30 * time.Minute),
		EndTime:   testNow.Add(30 * time.Minute),
		Status:    domain.StatusInProgress,
	})

	if err := svc.CancelAsAdmin(context.Background(), sessionID.Hex()); err != nil {
		t.Fatalf("CancelAsAdmin() error = %v", err)
	}
	stored := sessions.sessions[sessionID]
	if !stored.IsDeleted || stored.Status != domain.StatusCancelled {
		t.Errorf("session after admin cancel: isDeleted=%v status=%q", stored.IsDeleted, stored.Status)
	}
	if len(mailer.cancelTo) != 1 {
		t.Fatalf("cancellation emails sent = %d, want 1", len(mailer.cancelTo))
	}
	if mailer.cancelTo[0] != "ada@example.com" {
		t.Errorf("email recipient = %q, want owner address", mailer.cancelTo[0])
	}
	if mailer.cancellations[0].Name != "Ada Lovelace" || mailer.cancellations[0].Notes != "Morning strength" {
		t.Errorf("cancellation data = %+v", mailer.cancellations[0])
	}
}

func TestCancelAsAdminSwallowsMailFailure(t *testing.T) {
	svc, sessions, users, mailer := newTestBookingService(t)
	clientID := approvedClient(users, "Ada", "ada@example.com")
	mailer.sendErr = errors.New("smtp unreachable")

	sessionID := sessions.add(domain.WorkoutSession{
		ClientID:  clientID,
		StartTime: testNow.Add(24 * time.Hour),
		EndTime:   testNow.Add(25 * time.Hour),
		Status:    domain.StatusScheduled,
	})

	if err := svc.CancelAsAdmin(context.Background(), sessionID.Hex()); err != nil {
		t.Fatalf("CancelAsAdmin() error = %v, want nil despite mail failure", err)
	}
	if stored := sessions.sessions[sessionID]; stored.Status != domain.StatusCancelled {
		t.Errorf("cancellation not committed: status = %q", stored.Status)
	}
}

func TestCancelAsAdminUnknownSession(t *testing.T) {
	svc, _, _, _ := newTestBookingService(t)
	if err := svc.CancelAsAdmin(context.Background(), primitive.NewObjectID().Hex()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("CancelAsAdmin() error = %v, want ErrSessionNotFound", err)
	}
}

func TestListHydratesClientNames(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	ada := approvedClient(users, "Ada", "ada@example.com")
	ghost := primitive.NewObjectID() // no directory entry

	start := testNow.Add(24 * time.Hour)
	sessions.add(domain.WorkoutSession{
		ClientID: ada, StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusScheduled,
	})
	sessions.add(domain.WorkoutSession{
		ClientID: ghost, StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour), Status: domain.StatusScheduled,
	})
	sessions.add(domain.WorkoutSession{
		ClientID: ada, StartTime: start.Add(-48 * time.Hour), EndTime: start.Add(-47 * time.Hour),
		Status: domain.StatusCancelled, IsDeleted: true,
	})

	page, err := svc.List(context.Background(), ListSessionsQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Sessions) != 2 {
		t.Fatalf("List() returned %d sessions, want 2 (cancelled excluded)", len(page.Sessions))
	}
	if page.Sessions[0].ClientName != "Ada" {
		t.Errorf("first clientName = %q, want %q", page.Sessions[0].ClientName, "Ada")
	}
	if page.Sessions[1].ClientName != unknownClientName {
		t.Errorf("unknown client resolved to %q, want %q", page.Sessions[1].ClientName, unknownClientName)
	}
}

func TestListForClient(t *testing.T) {
	svc, sessions, users, _ := newTestBookingService(t)
	ada := approvedClient(users, "Ada", "ada@example.com")
	other := approvedClient(users, "Other", "other@example.com")

	start := testNow.Add(24 * time.Hour)
	sessions.add(domain.WorkoutSession{
		ClientID: ada, StartTime: start.Add(4 * time.Hour), EndTime: start.Add(5 * time.Hour), Status: domain.StatusScheduled,
	})
	sessions.add(domain.WorkoutSession{
		ClientID: ada, StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusScheduled,
	})
	sessions.add(domain.WorkoutSession{
		ClientID: other, StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusScheduled,
	})

	list, err := svc.ListForClient(context.Background(), ada.Hex())
	if err != nil {
		t.Fatalf("ListForClient() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListForClient() returned %d sessions, want 2", len(list))
	}
	if list[0].StartTime.After(list[1].StartTime) {
		t.Errorf("sessions not sorted soonest first: %v then %v", list[0].StartTime, list[1].StartTime)
	}
}

func TestListRejectsBadFilters(t *testing.T) {
	svc, _, _, _ := newTestBookingService(t)

	if _, err := svc.List(context.Background(), ListSessionsQuery{ClientID: "nope"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("List() with bad clientId error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.List(context.Background(), ListSessionsQuery{Status: "snoozing"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("List() with bad status error = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.List(context.Background(), ListSessionsQuery{StartDate: "last tuesday"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("List() with bad startDate error = %v, want ErrInvalidInput", err)
	}
}
