package service

import (
	"context"
	"sort"
	"time"

	"gymweb/booking-api/internal/domain"
	"gymweb/booking-api/internal/notification"
	"gymweb/booking-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Session store fake ---

type fakeSessionRepo struct {
	sessions map[primitive.ObjectID]*domain.WorkoutSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*domain.WorkoutSession)}
}

func (f *fakeSessionRepo) add(session domain.WorkoutSession) primitive.ObjectID {
	if session.ID == primitive.NilObjectID {
		session.ID = primitive.NewObjectID()
	}
	f.sessions[session.ID] = &session
	return session.ID
}

func (f *fakeSessionRepo) active(s *domain.WorkoutSession) bool {
	return !s.IsDeleted && s.Status != domain.StatusCancelled
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	copied := *session
	f.sessions[session.ID] = &copied
	return session.ID, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.IsDeleted {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) GetByIDForClient(ctx context.Context, id, clientID primitive.ObjectID) (*domain.WorkoutSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.IsDeleted || s.ClientID != clientID {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, session *domain.WorkoutSession) error {
	if _, ok := f.sessions[session.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *session
	copied.UpdatedAt = time.Now().UTC()
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) Find(ctx context.Context, filter repository.SessionFilter) ([]domain.WorkoutSession, int64, error) {
	var matches []domain.WorkoutSession
	for _, s := range f.sessions {
		if s.IsDeleted {
			continue
		}
		if filter.ClientID != nil && s.ClientID != *filter.ClientID {
			continue
		}
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.From != nil && s.StartTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.StartTime.After(*filter.To) {
			continue
		}
		matches = append(matches, *s)
	}
	sort.Slice(matches, func(i, j int) bool {
		if filter.SortDesc {
			return matches[i].StartTime.After(matches[j].StartTime)
		}
		return matches[i].StartTime.Before(matches[j].StartTime)
	})
	return matches, int64(len(matches)), nil
}

func (f *fakeSessionRepo) FindByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	var matches []domain.WorkoutSession
	for _, s := range f.sessions {
		if s.IsDeleted || s.ClientID != clientID {
			continue
		}
		matches = append(matches, *s)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].StartTime.Before(matches[j].StartTime)
	})
	return matches, nil
}

func (f *fakeSessionRepo) CountOnDay(ctx context.Context, clientID primitive.ObjectID, dayStart, dayEnd time.Time, excludeID primitive.ObjectID) (int64, error) {
	var count int64
	for _, s := range f.sessions {
		if !f.active(s) || s.ClientID != clientID || s.ID == excludeID {
			continue
		}
		if s.StartTime.Before(dayStart) || s.StartTime.After(dayEnd) {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeSessionRepo) CountOverlapping(ctx context.Context, start, end time.Time, excludeID primitive.ObjectID) (int64, error) {
	var count int64
	for _, s := range f.sessions {
		if !f.active(s) || s.ID == excludeID {
			continue
		}
		if s.Overlaps(start, end) {
			count++
		}
	}
	return count, nil
}

// --- User directory fake ---

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (f *fakeUserRepo) add(user domain.User) primitive.ObjectID {
	if user.ID == primitive.NilObjectID {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID] = &user
	return user.ID
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	copied := *user
	f.users[user.ID] = &copied
	return user.ID, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email && !u.IsDeleted {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok || u.IsDeleted {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]domain.User, error) {
	result := make(map[primitive.ObjectID]domain.User, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			result[id] = *u
		}
	}
	return result, nil
}

func (f *fakeUserRepo) List(ctx context.Context, status domain.UserStatus) ([]domain.User, error) {
	var users []domain.User
	for _, u := range f.users {
		if u.IsDeleted {
			continue
		}
		if status != "" && u.Status != status {
			continue
		}
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeUserRepo) ListPending(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	for _, u := range f.users {
		if !u.IsDeleted && u.Role == domain.RoleUser && u.Status == domain.StatusPending {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.UserStatus) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsDeleted = true
	return nil
}

// --- OTP store fake ---

type fakeOTPRepo struct {
	stored    *domain.OTP
	deleteErr error
}

func (f *fakeOTPRepo) Replace(ctx context.Context, otp *domain.OTP) error {
	copied := *otp
	f.stored = &copied
	return nil
}

func (f *fakeOTPRepo) Consume(ctx context.Context, email, code string, now time.Time) (bool, error) {
	if f.stored == nil || f.stored.Email != email || f.stored.Code != code || !f.stored.ExpiresAt.After(now) {
		return false, nil
	}
	f.stored = nil
	return true, nil
}

func (f *fakeOTPRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	if f.stored != nil && f.stored.ExpiresAt.Before(now) {
		f.stored = nil
		return 1, nil
	}
	return 0, nil
}

// --- Mail sender fake ---

type fakeMailer struct {
	cancellations []notification.CancellationData
	cancelTo      []string
	otpTo         []string
	otpCodes      []string
	sendErr       error
}

func (f *fakeMailer) SendSessionCancellation(ctx context.Context, to string, data notification.CancellationData) error {
	f.cancelTo = append(f.cancelTo, to)
	f.cancellations = append(f.cancellations, data)
	return f.sendErr
}

func (f *fakeMailer) SendOTP(ctx context.Context, to, name, code string) error {
	f.otpTo = append(f.otpTo, to)
	f.otpCodes = append(f.otpCodes, code)
	return f.sendErr
}
