// Package repotest provides in-memory repository implementations for tests.
// They honor the same ownership filters and sentinel errors as the Postgres repos.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerly/server/internal/model"
	"github.com/ledgerly/server/internal/repo"
)

// Users is an in-memory repo.UserRepo.
type Users struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.User
	// Err, when set, is returned by every method to simulate an unavailable store.
	Err error
}

// NewUsers returns an empty in-memory user store.
func NewUsers() *Users {
	return &Users{byID: make(map[int64]model.User)}
}

func (s *Users) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	u, ok := s.byID[id]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repo.ErrNotFound
}

func (s *Users) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	users := make([]model.User, 0, len(s.byID))
	for _, u := range s.byID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Users) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	for _, u := range s.byID {
		if u.Email == user.Email || u.GUID == user.GUID {
			return model.User{}, repo.ErrDuplicate
		}
	}
	s.nextID++
	now := time.Now()
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.byID[user.ID] = user
	return user, nil
}

func (s *Users) Update(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return model.User{}, s.Err
	}
	stored, ok := s.byID[user.ID]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	for id, u := range s.byID {
		if id != user.ID && u.Email == user.Email {
			return model.User{}, repo.ErrDuplicate
		}
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.Role = user.Role
	stored.IsVerified = user.IsVerified
	stored.UpdatedAt = time.Now()
	s.byID[user.ID] = stored
	return stored, nil
}

func (s *Users) UpdateCredentials(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	stored, ok := s.byID[user.ID]
	if !ok {
		return repo.ErrNotFound
	}
	stored.PasswordHash = user.PasswordHash
	stored.OTPHash = ""
	stored.OTPExpiresAt = nil
	if user.HasOTP() {
		expiresAt := *user.OTPExpiresAt
		stored.OTPHash = user.OTPHash
		stored.OTPExpiresAt = &expiresAt
	}
	stored.UpdatedAt = time.Now()
	s.byID[user.ID] = stored
	return nil
}

func (s *Users) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// Accounts is an in-memory repo.AccountRepo.
type Accounts struct {
	mu   sync.Mutex
	byID map[uuid.UUID]model.Account
	seq  time.Duration
}

// NewAccounts returns an empty in-memory account store.
func NewAccounts() *Accounts {
	return &Accounts{byID: make(map[uuid.UUID]model.Account)}
}

func (s *Accounts) nameTaken(name string, userID int64, except uuid.UUID) bool {
	for id, a := range s.byID {
		if id != except && a.UserID == userID && strings.EqualFold(a.Name, name) {
			return true
		}
	}
	return false
}

func (s *Accounts) Create(_ context.Context, a model.Account) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(a.Name, a.UserID, uuid.Nil) {
		return model.Account{}, repo.ErrDuplicate
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	// strictly increasing timestamps keep newest-first ordering deterministic
	s.seq++
	a.CreatedAt = time.Now().Add(s.seq)
	a.UpdatedAt = a.CreatedAt
	s.byID[a.ID] = a
	return a, nil
}

func (s *Accounts) ListByUser(_ context.Context, userID int64) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make([]model.Account, 0)
	for _, a := range s.byID {
		if a.UserID == userID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.After(accounts[j].CreatedAt) })
	return accounts, nil
}

func (s *Accounts) FindByID(_ context.Context, id uuid.UUID, userID int64) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok || a.UserID != userID {
		return model.Account{}, repo.ErrNotFound
	}
	return a, nil
}

func (s *Accounts) FindByName(_ context.Context, name string, userID int64) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.byID {
		if a.UserID == userID && strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return model.Account{}, repo.ErrNotFound
}

func (s *Accounts) Update(_ context.Context, a model.Account) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[a.ID]
	if !ok || stored.UserID != a.UserID {
		return model.Account{}, repo.ErrNotFound
	}
	if s.nameTaken(a.Name, a.UserID, a.ID) {
		return model.Account{}, repo.ErrDuplicate
	}
	a.CreatedAt = stored.CreatedAt
	a.UpdatedAt = time.Now()
	s.byID[a.ID] = a
	return a, nil
}

func (s *Accounts) Delete(_ context.Context, id uuid.UUID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok || a.UserID != userID {
		return repo.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// Budgets is an in-memory repo.BudgetRepo.
type Budgets struct {
	mu   sync.Mutex
	byID map[uuid.UUID]model.Budget
	seq  time.Duration
}

// NewBudgets returns an empty in-memory budget store.
func NewBudgets() *Budgets {
	return &Budgets{byID: make(map[uuid.UUID]model.Budget)}
}

func (s *Budgets) nameTaken(name string, userID int64, except uuid.UUID) bool {
	for id, b := range s.byID {
		if id != except && b.UserID == userID && strings.EqualFold(b.Name, name) {
			return true
		}
	}
	return false
}

func (s *Budgets) Create(_ context.Context, b model.Budget) (model.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(b.Name, b.UserID, uuid.Nil) {
		return model.Budget{}, repo.ErrDuplicate
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	s.seq++
	b.CreatedAt = time.Now().Add(s.seq)
	b.UpdatedAt = b.CreatedAt
	s.byID[b.ID] = b
	return b, nil
}

func (s *Budgets) ListByUser(_ context.Context, userID int64) ([]model.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	budgets := make([]model.Budget, 0)
	for _, b := range s.byID {
		if b.UserID == userID {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].CreatedAt.After(budgets[j].CreatedAt) })
	return budgets, nil
}

func (s *Budgets) FindByID(_ context.Context, id uuid.UUID, userID int64) (model.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok || b.UserID != userID {
		return model.Budget{}, repo.ErrNotFound
	}
	return b, nil
}

func (s *Budgets) FindByName(_ context.Context, name string, userID int64) (model.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.byID {
		if b.UserID == userID && strings.EqualFold(b.Name, name) {
			return b, nil
		}
	}
	return model.Budget{}, repo.ErrNotFound
}

func (s *Budgets) Update(_ context.Context, b model.Budget) (model.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[b.ID]
	if !ok || stored.UserID != b.UserID {
		return model.Budget{}, repo.ErrNotFound
	}
	if s.nameTaken(b.Name, b.UserID, b.ID) {
		return model.Budget{}, repo.ErrDuplicate
	}
	b.CreatedAt = stored.CreatedAt
	b.UpdatedAt = time.Now()
	s.byID[b.ID] = b
	return b, nil
}

func (s *Budgets) Delete(_ context.Context, id uuid.UUID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byID[id]
	if !ok || b.UserID != userID {
		return repo.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

var (
	_ repo.UserRepo    = (*Users)(nil)
	_ repo.AccountRepo = (*Accounts)(nil)
	_ repo.BudgetRepo  = (*Budgets)(nil)
)
