package repo

import (
	"context"
	"sync"
	"time"
)

type memUser struct {
	id       int
	email    string
	password string
}

// MemoryRepository keeps everything in process. Used when DATABASE_URL is
// empty and in tests.
type MemoryRepository struct {
	mu        sync.Mutex
	users     map[string]memUser
	saved     map[int][]SavedCalculation
	favorites map[int]map[string]Favorite
	nextUser  int
	nextSaved int
	now       func() time.Time
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		users:     make(map[string]memUser),
		saved:     make(map[int][]SavedCalculation),
		favorites: make(map[int]map[string]Favorite),
		now:       time.Now,
	}
}

func (m *MemoryRepository) CreateUser(_ context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[login]; ok {
		return 0, ErrUserTaken
	}
	m.nextUser++
	m.users[login] = memUser{id: m.nextUser, email: email, password: password}
	return m.nextUser, nil
}

func (m *MemoryRepository) GetBylogin(_ context.Context, login string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[login]
	if !ok {
		return 0, "", ErrNotFound
	}
	return u.id, u.password, nil
}

func (m *MemoryRepository) SaveCalculation(_ context.Context, userID int, c SavedCalculation) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSaved++
	c.ID = m.nextSaved
	c.CreatedAt = m.now()
	m.saved[userID] = append(m.saved[userID], c)
	return c.ID, nil
}

// ListSaved returns newest first.
func (m *MemoryRepository) ListSaved(_ context.Context, userID int) ([]SavedCalculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.saved[userID]
	out := make([]SavedCalculation, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (m *MemoryRepository) ToggleFavorite(_ context.Context, userID int, f Favorite) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	favs := m.favorites[userID]
	if favs == nil {
		favs = make(map[string]Favorite)
		m.favorites[userID] = favs
	}
	if _, ok := favs[f.CalculatorID]; ok {
		delete(favs, f.CalculatorID)
		return false, nil
	}
	favs[f.CalculatorID] = f
	return true, nil
}

func (m *MemoryRepository) CheckFavorite(_ context.Context, userID int, calculatorID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.favorites[userID][calculatorID]
	return ok, nil
}
