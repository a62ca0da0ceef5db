// Package ledger records which logical notifications were already sent so a
// scan does not repeat them. Entries are dropped wholesale by Clear, never
// expired one by one.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Kinds of ledger keys.
const (
	KindDeadline = "deadline"
	KindOverdue  = "overdue"
)

type Ledger interface {
	Has(ctx context.Context, key string) (bool, error)
	Add(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

// Key builds "{kind}-{taskRef}-{YYYY-MM-DD}-{extra}".
func Key(kind, taskRef string, day time.Time, extra int) string {
	return fmt.Sprintf("%s-%s-%s-%d", kind, taskRef, day.Format("2006-01-02"), extra)
}

// Memory is a process-local ledger. It is lost on restart.
type Memory struct {
	entries *cache.Cache
}

func NewMemory() *Memory {
	return &Memory{entries: cache.New(cache.NoExpiration, 0)}
}

func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	_, ok := m.entries.Get(key)
	return ok, nil
}

func (m *Memory) Add(_ context.Context, key string) error {
	m.entries.Set(key, struct{}{}, cache.NoExpiration)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.entries.Flush()
	return nil
}

func (m *Memory) Len(_ context.Context) (int, error) {
	return m.entries.ItemCount(), nil
}
