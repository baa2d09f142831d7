package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
)

// MemoryAttendance is an in-memory AttendanceRepository
type MemoryAttendance struct {
	mu      sync.Mutex
	records map[string]entities.MissingDeveloper
	SaveErr error
}

func NewMemoryAttendance() *MemoryAttendance {
	return &MemoryAttendance{records: map[string]entities.MissingDeveloper{}}
}

func (m *MemoryAttendance) FindByName(_ context.Context, name string) (*entities.MissingDeveloper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[entities.AttendanceKey(name)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryAttendance) Save(_ context.Context, record *entities.MissingDeveloper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	record.NameKey = entities.AttendanceKey(record.Name)
	m.records[record.NameKey] = *record
	return nil
}

func (m *MemoryAttendance) ListByTeam(_ context.Context, team string) ([]*entities.MissingDeveloper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.MissingDeveloper
	for _, rec := range m.records {
		if rec.TeamName == team {
			r := rec
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConsecutiveMisses > out[j].ConsecutiveMisses })
	return out, nil
}

// MemoryCalls is an in-memory CallRepository
type MemoryCalls struct {
	mu        sync.Mutex
	calls     map[uuid.UUID]entities.Call
	summaries map[uuid.UUID]entities.CallSummary
}

func NewMemoryCalls() *MemoryCalls {
	return &MemoryCalls{
		calls:     map[uuid.UUID]entities.Call{},
		summaries: map[uuid.UUID]entities.CallSummary{},
	}
}

func (m *MemoryCalls) Create(_ context.Context, call *entities.Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[call.ID] = *call
	return nil
}

func (m *MemoryCalls) Update(_ context.Context, call *entities.Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[call.ID] = *call
	return nil
}

func (m *MemoryCalls) FindByID(_ context.Context, id uuid.UUID) (*entities.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calls[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MemoryCalls) ListByTeam(_ context.Context, team string, limit int) ([]*entities.Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Call
	for _, c := range m.calls {
		if c.Team == team {
			cc := c
			out = append(out, &cc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryCalls) SaveSummary(_ context.Context, summary *entities.CallSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[summary.CallID] = *summary
	return nil
}

func (m *MemoryCalls) FindSummary(_ context.Context, callID uuid.UUID) (*entities.CallSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[callID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// MemoryTeam is an in-memory TeamRepository
type MemoryTeam struct {
	mu       sync.Mutex
	contacts []entities.Contact
	sprints  []entities.Sprint
	items    []entities.WorkItem
	blockers []entities.OpenBlocker
}

func NewMemoryTeam() *MemoryTeam {
	return &MemoryTeam{}
}

func (m *MemoryTeam) ListContacts(_ context.Context, team string) ([]entities.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Contact
	for _, c := range m.contacts {
		if c.TeamName == team {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *MemoryTeam) FindActiveSprint(_ context.Context, team string, at time.Time) (*entities.Sprint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sprints {
		if s.TeamName == team && !at.Before(s.StartDate) && !at.After(s.EndDate) {
			sp := s
			return &sp, nil
		}
	}
	return nil, nil
}

func (m *MemoryTeam) ListWorkItems(_ context.Context, sprintID uuid.UUID) ([]entities.WorkItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.WorkItem
	for _, it := range m.items {
		if it.SprintID == sprintID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *MemoryTeam) ListOpenBlockers(_ context.Context, team string) ([]entities.OpenBlocker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.OpenBlocker
	for _, b := range m.blockers {
		if b.TeamName == team && b.Status == entities.OpenBlockerStatusOpen {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MemoryTeam) SaveContact(_ context.Context, contact *entities.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.contacts {
		if c.TeamName == contact.TeamName && strings.EqualFold(c.Name, contact.Name) {
			contact.ID = c.ID
			m.contacts[i] = *contact
			return nil
		}
	}
	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	m.contacts = append(m.contacts, *contact)
	return nil
}

func (m *MemoryTeam) SaveSprint(_ context.Context, sprint *entities.Sprint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sprints {
		if s.TeamName == sprint.TeamName && s.Name == sprint.Name {
			sprint.ID = s.ID
			m.sprints[i] = *sprint
			return nil
		}
	}
	if sprint.ID == uuid.Nil {
		sprint.ID = uuid.New()
	}
	m.sprints = append(m.sprints, *sprint)
	return nil
}

func (m *MemoryTeam) SaveWorkItem(_ context.Context, item *entities.WorkItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.SprintID == item.SprintID && it.ItemKey == item.ItemKey {
			item.ID = it.ID
			m.items[i] = *item
			return nil
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	m.items = append(m.items, *item)
	return nil
}

func (m *MemoryTeam) SaveOpenBlocker(_ context.Context, blocker *entities.OpenBlocker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.blockers {
		if b.TeamName == blocker.TeamName && b.ItemKey == blocker.ItemKey {
			blocker.ID = b.ID
			m.blockers[i] = *blocker
			return nil
		}
	}
	if blocker.ID == uuid.Nil {
		blocker.ID = uuid.New()
	}
	m.blockers = append(m.blockers, *blocker)
	return nil
}
