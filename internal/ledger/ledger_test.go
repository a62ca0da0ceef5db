package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	day := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "overdue-p1/t1-2026-03-09-7", Key(KindOverdue, "p1/t1", day, 7))
	assert.Equal(t, "deadline-p1/t1-2026-03-09-0", Key(KindDeadline, "p1/t1", day, 0))
}

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemory()

	ok, err := l.Has(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Add(ctx, "a"))
	require.NoError(t, l.Add(ctx, "a"))
	require.NoError(t, l.Add(ctx, "b"))

	ok, _ = l.Has(ctx, "a")
	assert.True(t, ok)
	n, _ := l.Len(ctx)
	assert.Equal(t, 2, n)

	require.NoError(t, l.Clear(ctx))
	ok, _ = l.Has(ctx, "a")
	assert.False(t, ok)
	n, _ = l.Len(ctx)
	assert.Zero(t, n)
}

func TestMemoryLedgersAreIndependent(t *testing.T) {
	ctx := context.Background()
	a, b := NewMemory(), NewMemory()

	require.NoError(t, a.Add(ctx, "k"))
	ok, _ := b.Has(ctx, "k")
	assert.False(t, ok)
}
