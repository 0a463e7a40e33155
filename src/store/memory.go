package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"homeledger-server/src/apperr"
	"homeledger-server/src/core/scope"
	"homeledger-server/src/models"
)

// Memory is an in-process Store used by unit tests and demo mode.
type Memory struct {
	mu           sync.RWMutex
	actors       map[int64]models.Actor
	categories   map[int64]models.Category
	transactions map[int64]models.Transaction
	accounts     map[int64]models.LinkedAccount
	sessions     map[int64]models.BudgetSession
	nextActor    int64
	nextCategory int64
	nextTxn      int64
	nextAccount  int64
	nextSession  int64
}

func NewMemory() *Memory {
	return &Memory{
		actors:       make(map[int64]models.Actor),
		categories:   make(map[int64]models.Category),
		transactions: make(map[int64]models.Transaction),
		accounts:     make(map[int64]models.LinkedAccount),
		sessions:     make(map[int64]models.BudgetSession),
	}
}

// RunInTx runs fn directly: every Memory operation is serialized by the
// mutex, and the store is driven by one request at a time in the contexts
// it backs (tests, demo mode).
func (m *Memory) RunInTx(ctx context.Context, fn func(Store) error) error {
	return fn(m)
}

func (m *Memory) CreateActor(ctx context.Context, a *models.Actor) (*models.Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.actors {
		if existing.Email == a.Email {
			return nil, apperr.InvalidArgument("email already registered: %s", a.Email)
		}
	}
	m.nextActor++
	stored := *a
	stored.ID = m.nextActor
	stored.CreatedAt = time.Now()
	m.actors[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *Memory) GetActorByID(ctx context.Context, id int64) (*models.Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.actors[id]
	if !ok {
		return nil, apperr.NotFound("actor not found: %d", id)
	}
	out := a
	return &out, nil
}

func (m *Memory) GetActorByEmail(ctx context.Context, email string) (*models.Actor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.actors {
		if a.Email == email {
			out := a
			return &out, nil
		}
	}
	return nil, apperr.NotFound("actor not found: %s", email)
}

func (m *Memory) ListCategories(ctx context.Context, kind string) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Category
	for _, c := range m.categories {
		if kind == "" || c.Kind == kind {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, apperr.NotFound("category not found: %d", id)
	}
	out := c
	return &out, nil
}

func (m *Memory) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCategory++
	stored := *c
	stored.ID = m.nextCategory
	m.categories[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *Memory) UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return nil, apperr.NotFound("category not found: %d", c.ID)
	}
	m.categories[c.ID] = *c
	out := *c
	return &out, nil
}

func (m *Memory) DeleteCategory(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return apperr.NotFound("category not found: %d", id)
	}
	delete(m.categories, id)
	return nil
}

func (m *Memory) CountCategories(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.categories), nil
}

func (m *Memory) ListTransactions(ctx context.Context, sc scope.Scope, f TransactionFilter) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Transaction
	for _, t := range m.transactions {
		if !sc.CanAccess(t.ActorID) {
			continue
		}
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		if f.SessionID != nil && (t.SessionID == nil || *t.SessionID != *f.SessionID) {
			continue
		}
		out = append(out, t)
	}
	if f.Empty() {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].TransactionDate.After(out[j].TransactionDate) })
	}
	return out, nil
}

func (m *Memory) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, apperr.NotFound("transaction not found: %d", id)
	}
	out := t
	return &out, nil
}

func (m *Memory) InsertTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTxn++
	stored := *t
	stored.ID = m.nextTxn
	stored.CreatedAt = time.Now()
	m.transactions[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *Memory) UpdateTransaction(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.transactions[t.ID]
	if !ok {
		return nil, apperr.NotFound("transaction not found: %d", t.ID)
	}
	stored := *t
	stored.CreatedAt = existing.CreatedAt
	m.transactions[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *Memory) DeleteTransaction(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return apperr.NotFound("transaction not found: %d", id)
	}
	delete(m.transactions, id)
	return nil
}

func (m *Memory) SumTransactions(ctx context.Context, sc scope.Scope, kind string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, t := range m.transactions {
		if sc.CanAccess(t.ActorID) && t.Kind == kind {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

func (m *Memory) HasExternalTransaction(ctx context.Context, actorID int64, externalID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.transactions {
		if t.ActorID == actorID && t.ExternalID != nil && *t.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) ListAccounts(ctx context.Context, sc scope.Scope, activeOnly bool) ([]models.LinkedAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.LinkedAccount
	for _, a := range m.accounts {
		if !sc.CanAccess(a.ActorID) {
			continue
		}
		if activeOnly && !a.Active {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetAccount(ctx context.Context, id int64) (*models.LinkedAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, apperr.NotFound("account not found: %d", id)
	}
	out := a
	return &out, nil
}

func (m *Memory) CreateAccount(ctx context.Context, a *models.LinkedAccount) (*models.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAccount++
	stored := *a
	stored.ID = m.nextAccount
	stored.CreatedAt = time.Now()
	m.accounts[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *Memory) UpdateAccount(ctx context.Context, a *models.LinkedAccount) (*models.LinkedAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.accounts[a.ID]
	if !ok {
		return nil, apperr.NotFound("account not found: %d", a.ID)
	}
	stored := *a
	stored.CreatedAt = existing.CreatedAt
	m.accounts[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *Memory) DeleteAccount(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return apperr.NotFound("account not found: %d", id)
	}
	delete(m.accounts, id)
	return nil
}

func (m *Memory) ListSessions(ctx context.Context, sc scope.Scope) ([]models.BudgetSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.BudgetSession
	for _, s := range m.sessions {
		if sc.CanAccess(s.ActorID) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAccessedAt.After(out[j].LastAccessedAt) })
	return out, nil
}

func (m *Memory) GetSession(ctx context.Context, id int64) (*models.BudgetSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session not found: %d", id)
	}
	out := s
	return &out, nil
}

func (m *Memory) CreateSession(ctx context.Context, s *models.BudgetSession) (*models.BudgetSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSession++
	stored := *s
	stored.ID = m.nextSession
	stored.CreatedAt = time.Now()
	stored.LastAccessedAt = stored.CreatedAt
	m.sessions[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *Memory) UpdateSession(ctx context.Context, s *models.BudgetSession) (*models.BudgetSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sessions[s.ID]
	if !ok {
		return nil, apperr.NotFound("session not found: %d", s.ID)
	}
	stored := *s
	stored.CreatedAt = existing.CreatedAt
	stored.LastAccessedAt = existing.LastAccessedAt
	m.sessions[stored.ID] = stored
	out := stored
	return &out, nil
}

func (m *Memory) DeleteSession(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return apperr.NotFound("session not found: %d", id)
	}
	delete(m.sessions, id)
	return nil
}

func (m *Memory) TouchSession(ctx context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return apperr.NotFound("session not found: %d", id)
	}
	s.LastAccessedAt = at
	m.sessions[id] = s
	return nil
}
