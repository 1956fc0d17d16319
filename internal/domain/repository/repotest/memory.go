// Package repotest provides in-memory repositories with the same semantics as the
// postgres implementations, for use in tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shubhamprakash681/truefeed/internal/domain/entity"
	"github.com/shubhamprakash681/truefeed/internal/domain/repository"
)

type userRecord struct {
	user entity.User
	seq  int
}

// Users is an in-memory repository.UserRepository. Set Err to make every call fail.
type Users struct {
	mu    sync.Mutex
	rows  map[string]*userRecord
	seq   int
	Err   error
	Calls map[string]int
}

func NewUsers() *Users {
	return &Users{rows: map[string]*userRecord{}, Calls: map[string]int{}}
}

// Put stores u as is, generating an ID if empty.
func (r *Users) Put(u entity.User) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.seq++
	r.rows[u.ID] = &userRecord{user: u, seq: r.seq}
	out := u
	return &out
}

// Count returns how many records exist for email.
func (r *Users) Count(email string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.rows {
		if rec.user.Email == email {
			n++
		}
	}
	return n
}

func (r *Users) begin(op string) error {
	r.Calls[op]++
	return r.Err
}

func (r *Users) best(match func(u *entity.User) bool) (*entity.User, error) {
	var found *userRecord
	for _, rec := range r.rows {
		if !match(&rec.user) {
			continue
		}
		if found == nil ||
			(rec.user.IsUserVerified && !found.user.IsUserVerified) ||
			(rec.user.IsUserVerified == found.user.IsUserVerified && rec.seq > found.seq) {
			found = rec
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	out := found.user
	return &out, nil
}

func (r *Users) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("GetByID"); err != nil {
		return nil, err
	}
	return r.best(func(u *entity.User) bool { return u.ID == id })
}

func (r *Users) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("GetByUsername"); err != nil {
		return nil, err
	}
	return r.best(func(u *entity.User) bool { return u.Username == username })
}

func (r *Users) ListByUsername(_ context.Context, username string) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("ListByUsername"); err != nil {
		return nil, err
	}
	var recs []*userRecord
	for _, rec := range r.rows {
		if rec.user.Username == username {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].user.IsUserVerified != recs[j].user.IsUserVerified {
			return recs[i].user.IsUserVerified
		}
		return recs[i].seq > recs[j].seq
	})
	out := make([]*entity.User, 0, len(recs))
	for _, rec := range recs {
		u := rec.user
		out = append(out, &u)
	}
	return out, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("GetByEmail"); err != nil {
		return nil, err
	}
	return r.best(func(u *entity.User) bool { return u.Email == email })
}

func (r *Users) GetByIdentifier(_ context.Context, identifier string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("GetByIdentifier"); err != nil {
		return nil, err
	}
	return r.best(func(u *entity.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (r *Users) ExistsVerifiedUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("ExistsVerifiedUsername"); err != nil {
		return false, err
	}
	_, err := r.best(func(u *entity.User) bool { return u.Username == username && u.IsUserVerified })
	return err == nil, nil
}

func (r *Users) UpsertUnverified(_ context.Context, p repository.PendingSignup) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("UpsertUnverified"); err != nil {
		return nil, err
	}
	now := time.Now()
	r.seq++
	for _, rec := range r.rows {
		if rec.user.Email != p.Email {
			continue
		}
		if rec.user.IsUserVerified {
			return nil, repository.ErrVerifiedConflict
		}
		rec.user.PasswordHash = p.PasswordHash
		rec.user.VerificationCode = p.VerificationCode
		rec.user.VerificationCodeExpiry = p.VerificationCodeExpiry
		rec.user.UpdatedAt = now
		rec.seq = r.seq
		out := rec.user
		return &out, nil
	}
	u := entity.User{
		ID:                     uuid.NewString(),
		Username:               p.Username,
		Email:                  p.Email,
		PasswordHash:           p.PasswordHash,
		VerificationCode:       p.VerificationCode,
		VerificationCodeExpiry: p.VerificationCodeExpiry,
		IsAcceptingMessage:     true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	r.rows[u.ID] = &userRecord{user: u, seq: r.seq}
	out := u
	return &out, nil
}

func (r *Users) MarkVerified(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("MarkVerified"); err != nil {
		return err
	}
	rec, ok := r.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range r.rows {
		if otherID != id && other.user.IsUserVerified && other.user.Username == rec.user.Username {
			return repository.ErrDuplicate
		}
	}
	rec.user.IsUserVerified = true
	rec.user.UpdatedAt = time.Now()
	return nil
}

func (r *Users) SetAcceptingMessage(_ context.Context, id string, accept bool) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.begin("SetAcceptingMessage"); err != nil {
		return nil, err
	}
	rec, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.user.IsAcceptingMessage = accept
	rec.user.UpdatedAt = time.Now()
	out := rec.user
	return &out, nil
}

// Messages is an in-memory repository.MessageRepository.
type Messages struct {
	mu    sync.Mutex
	rows  []entity.Message
	clock time.Time
	Err   error
}

func NewMessages() *Messages {
	return &Messages{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (r *Messages) Create(_ context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	// strictly increasing timestamps keep ordering deterministic
	r.clock = r.clock.Add(time.Second)
	m.CreatedAt = r.clock
	r.rows = append(r.rows, *m)
	return nil
}

func (r *Messages) ListByUser(_ context.Context, userID string) ([]entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := []entity.Message{}
	for _, m := range r.rows {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var (
	_ repository.UserRepository    = (*Users)(nil)
	_ repository.MessageRepository = (*Messages)(nil)
)
