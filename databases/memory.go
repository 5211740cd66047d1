package databases

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/linesmerrill/casetrack-api/models"
)

// MemoryCaseDatabase keeps cases in process memory. It backs tests and
// the STORE=memory mode.
type MemoryCaseDatabase struct {
	mu      sync.RWMutex
	cases   map[string]*models.Case
	order   []string
	numbers map[string]string
}

// NewMemoryCaseDatabase returns an empty in-memory case store
func NewMemoryCaseDatabase() *MemoryCaseDatabase {
	return &MemoryCaseDatabase{
		cases:   make(map[string]*models.Case),
		numbers: make(map[string]string),
	}
}

// FindOne returns a copy of the case with the given id
func (m *MemoryCaseDatabase) FindOne(_ context.Context, id string) (*models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cases[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := c.Clone()
	return &out, nil
}

// Find returns matching cases, newest first
func (m *MemoryCaseDatabase) Find(_ context.Context, filter CaseFilter) ([]models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Case{}
	for i := len(m.order) - 1; i >= 0; i-- {
		c := m.cases[m.order[i]]
		if filter.VictimID != "" && c.VictimID != filter.VictimID {
			continue
		}
		if filter.OfficerID != "" && c.OfficerID != filter.OfficerID {
			continue
		}
		out = append(out, c.Clone())
	}
	slices.SortStableFunc(out, func(a, b models.Case) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// InsertOne stores a new case. Ids and case numbers must be unique.
func (m *MemoryCaseDatabase) InsertOne(_ context.Context, c models.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cases[c.ID]; ok {
		return models.ErrDuplicate
	}
	if _, ok := m.numbers[c.CaseNumber]; ok {
		return models.ErrDuplicate
	}
	stored := c.Clone()
	m.cases[c.ID] = &stored
	m.numbers[c.CaseNumber] = c.ID
	m.order = append(m.order, c.ID)
	return nil
}

// Apply updates the case fields and appends the timeline entry under one lock
func (m *MemoryCaseDatabase) Apply(_ context.Context, id string, fields models.CaseFields, appended *models.CaseUpdate) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cases[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c.ApplyFields(fields)
	if appended != nil {
		c.Updates = append(c.Updates, *appended)
	}
	out := c.Clone()
	return &out, nil
}

// EnsureIndexes is a no-op for the memory store
func (m *MemoryCaseDatabase) EnsureIndexes(context.Context) error {
	return nil
}

// MemoryNotificationDatabase keeps notifications in process memory
type MemoryNotificationDatabase struct {
	mu            sync.RWMutex
	notifications []models.Notification
}

// NewMemoryNotificationDatabase returns an empty in-memory notification store
func NewMemoryNotificationDatabase() *MemoryNotificationDatabase {
	return &MemoryNotificationDatabase{}
}

// InsertOne stores a notification
func (m *MemoryNotificationDatabase) InsertOne(_ context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.notifications {
		if existing.ID == n.ID {
			return models.ErrDuplicate
		}
	}
	m.notifications = append(m.notifications, n)
	return nil
}

// FindByRecipient returns the recipient's notifications, newest first
func (m *MemoryNotificationDatabase) FindByRecipient(_ context.Context, recipientID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Notification{}
	for i := len(m.notifications) - 1; i >= 0; i-- {
		if m.notifications[i].RecipientID == recipientID {
			out = append(out, m.notifications[i])
		}
	}
	slices.SortStableFunc(out, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// MarkRead clears the unread flag of a notification
func (m *MemoryNotificationDatabase) MarkRead(_ context.Context, id, recipientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.notifications {
		n := &m.notifications[i]
		if n.ID != id {
			continue
		}
		if recipientID != "" && n.RecipientID != recipientID {
			return false, nil
		}
		n.Unread = false
		return true, nil
	}
	return false, nil
}

// CountUnread counts the recipient's unread notifications
func (m *MemoryNotificationDatabase) CountUnread(_ context.Context, recipientID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, n := range m.notifications {
		if n.RecipientID == recipientID && n.Unread {
			count++
		}
	}
	return count, nil
}

// EnsureIndexes is a no-op for the memory store
func (m *MemoryNotificationDatabase) EnsureIndexes(context.Context) error {
	return nil
}

// MemoryUserDatabase keeps users in process memory
type MemoryUserDatabase struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// NewMemoryUserDatabase returns an empty in-memory user store
func NewMemoryUserDatabase() *MemoryUserDatabase {
	return &MemoryUserDatabase{users: make(map[string]models.User)}
}

// FindOne returns the user with the given id
func (m *MemoryUserDatabase) FindOne(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

// FindByEmail returns the user registered with email
func (m *MemoryUserDatabase) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

// InsertOne stores a user. Ids, emails and identity numbers must be unique.
func (m *MemoryUserDatabase) InsertOne(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	for _, existing := range m.users {
		if existing.ID == u.ID || existing.Email == u.Email || existing.IDNumber == u.IDNumber {
			return models.ErrDuplicate
		}
	}
	m.users[u.ID] = u
	return nil
}

// EnsureIndexes is a no-op for the memory store
func (m *MemoryUserDatabase) EnsureIndexes(context.Context) error {
	return nil
}

var (
	_ CaseDatabase         = (*MemoryCaseDatabase)(nil)
	_ NotificationDatabase = (*MemoryNotificationDatabase)(nil)
	_ UserDatabase         = (*MemoryUserDatabase)(nil)
)
