package debate

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/krishanu7/debate-backend/internal/apperr"
)

// ErrInviteCodeTaken is returned by CreateDebate on an invite code collision.
var ErrInviteCodeTaken = errors.New("invite code already in use")

// Store persists debates, their arguments and results.
type Store interface {
	CreateDebate(ctx context.Context, d Debate) error
	GetDebate(ctx context.Context, id string) (Debate, error)
	FindByInviteCode(ctx context.Context, code string) (Debate, error)
	ListOpen(ctx context.Context) ([]Debate, error)
	// Join runs admit under a single writer for the debate.
	Join(ctx context.Context, debateID string, p Participant, now time.Time) (Debate, bool, error)

	AppendArgument(ctx context.Context, a Argument) (Argument, error)
	// ListArguments returns arguments ordered by CreatedAt, then Seq.
	ListArguments(ctx context.Context, debateID string) ([]Argument, error)
	CountArgumentsByAuthor(ctx context.Context, userID string) (int, error)

	// Complete stores r and marks its debate completed, failing with a
	// conflict if the debate already is.
	Complete(ctx context.Context, r Result) error
	GetResult(ctx context.Context, debateID string) (Result, error)
}

type MemoryStore struct {
	mu        sync.RWMutex
	debates   map[string]*Debate
	order     []string
	codes     map[string]string
	arguments map[string][]Argument
	results   map[string]Result
	seq       int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		debates:   make(map[string]*Debate),
		codes:     make(map[string]string),
		arguments: make(map[string][]Argument),
		results:   make(map[string]Result),
	}
}

func (m *MemoryStore) CreateDebate(_ context.Context, d Debate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.InviteCode != "" {
		if _, taken := m.codes[d.InviteCode]; taken {
			return ErrInviteCodeTaken
		}
		m.codes[d.InviteCode] = d.ID
	}
	stored := d.clone()
	m.debates[d.ID] = &stored
	m.order = append(m.order, d.ID)
	return nil
}

func (m *MemoryStore) GetDebate(_ context.Context, id string) (Debate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.debates[id]
	if !ok {
		return Debate{}, apperr.NotFoundf("debate not found")
	}
	return d.clone(), nil
}

func (m *MemoryStore) FindByInviteCode(_ context.Context, code string) (Debate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.codes[code]
	if !ok {
		return Debate{}, apperr.NotFoundf("no private debate with that invite code")
	}
	return m.debates[id].clone(), nil
}

func (m *MemoryStore) ListOpen(_ context.Context) ([]Debate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	open := []Debate{}
	for _, id := range m.order {
		d := m.debates[id]
		if d.Visibility == Public && d.Open() {
			open = append(open, d.clone())
		}
	}
	return open, nil
}

func (m *MemoryStore) Join(_ context.Context, debateID string, p Participant, now time.Time) (Debate, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debates[debateID]
	if !ok {
		return Debate{}, false, apperr.NotFoundf("debate not found")
	}
	changed, err := admit(d, p, now)
	if err != nil {
		return Debate{}, false, err
	}
	return d.clone(), changed, nil
}

func (m *MemoryStore) AppendArgument(_ context.Context, a Argument) (Argument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debates[a.DebateID]
	if !ok {
		return Argument{}, apperr.NotFoundf("debate not found")
	}
	if err := acceptsArguments(d.Status); err != nil {
		return Argument{}, err
	}
	m.seq++
	a.Seq = m.seq
	m.arguments[a.DebateID] = append(m.arguments[a.DebateID], a)
	return a, nil
}

func (m *MemoryStore) ListArguments(_ context.Context, debateID string) ([]Argument, error) {
	m.mu.RLock()
	args := slices.Clone(m.arguments[debateID])
	m.mu.RUnlock()
	if args == nil {
		args = []Argument{}
	}
	slices.SortStableFunc(args, compareArguments)
	return args, nil
}

func compareArguments(a, b Argument) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.Seq < b.Seq:
		return -1
	case a.Seq > b.Seq:
		return 1
	}
	return 0
}

func (m *MemoryStore) CountArgumentsByAuthor(_ context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, args := range m.arguments {
		for _, a := range args {
			if a.AuthorID == userID {
				n++
			}
		}
	}
	return n, nil
}

func (m *MemoryStore) Complete(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debates[r.DebateID]
	if !ok {
		return apperr.NotFoundf("debate not found")
	}
	if _, exists := m.results[r.DebateID]; exists || d.Status == StatusCompleted {
		return apperr.Conflictf("debate is already completed")
	}
	m.results[r.DebateID] = r
	d.Status = StatusCompleted
	return nil
}

func (m *MemoryStore) GetResult(_ context.Context, debateID string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[debateID]
	if !ok {
		return Result{}, apperr.NotFoundf("results not available")
	}
	return r, nil
}
