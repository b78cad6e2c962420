package memory

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackcalc/core/evaluator"
	"stackcalc/core/persistence"
	"stackcalc/core/rewriter"
)

func newTestStack(t *testing.T, store persistence.Store) *Stack {
	t.Helper()
	eval := evaluator.NewEvaluator()
	return NewStack(context.Background(), store, EvaluatorFunc(func(expr string) evaluator.Result {
		return eval.Evaluate(expr, rewriter.Degrees)
	}))
}

func TestPushEvictsOldest(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t, persistence.NewMemoryStore())

	for i := 1; i <= 7; i++ {
		ok, err := s.Push(ctx, strconv.Itoa(i))
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.Equal(t, MaxSlots, s.Len())
	assert.Equal(t, []float64{2, 3, 4, 5, 6, 7}, s.Values())
	assert.Equal(t, []float64{7, 6, 5, 4, 3, 2}, s.Slots())
}

func TestPushInvalidExpressionIsNoop(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	s := newTestStack(t, store)

	for _, expr := range []string{"", "5/0", "2+alert(1)", "(1+2"} {
		ok, err := s.Push(ctx, expr)
		require.NoError(t, err)
		assert.False(t, ok, expr)
	}
	assert.Equal(t, 0, s.Len())

	_, err := store.Load(ctx, persistence.KeyMemoryStack)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestPushStoresFormattedValue(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t, persistence.NewMemoryStore())

	_, err := s.Push(ctx, "0.1+0.2")
	require.NoError(t, err)

	top, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, 0.3, top)
}

func TestPop(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t, persistence.NewMemoryStore())

	_, ok, err := s.Pop(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _ = s.Push(ctx, "1")
	_, _ = s.Push(ctx, "2*21")

	v, ok, err := s.Pop(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42.0, v)
	assert.Equal(t, []float64{1}, s.Values())
}

func TestAddSubtractTop(t *testing.T) {
	ctx := context.Background()

	t.Run("add on empty", func(t *testing.T) {
		s := newTestStack(t, persistence.NewMemoryStore())
		ok, err := s.AddTop(ctx, "5")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []float64{5}, s.Values())
	})

	t.Run("subtract on empty", func(t *testing.T) {
		s := newTestStack(t, persistence.NewMemoryStore())
		ok, err := s.SubtractTop(ctx, "5")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []float64{-5}, s.Values())
	})

	t.Run("combine with top", func(t *testing.T) {
		s := newTestStack(t, persistence.NewMemoryStore())
		_, _ = s.Push(ctx, "1")
		_, _ = s.Push(ctx, "10")

		_, err := s.AddTop(ctx, "2+3")
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 15}, s.Values())

		_, err = s.SubtractTop(ctx, "20")
		require.NoError(t, err)
		assert.Equal(t, []float64{1, -5}, s.Values())
	})

	t.Run("invalid is noop", func(t *testing.T) {
		s := newTestStack(t, persistence.NewMemoryStore())
		_, _ = s.Push(ctx, "3")

		ok, err := s.AddTop(ctx, "sqrt(-1)")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.SubtractTop(ctx, "1/0")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.Equal(t, []float64{3}, s.Values())
	})

	t.Run("overflow is noop", func(t *testing.T) {
		store := persistence.NewMemoryStore()
		s := newTestStack(t, store)
		_, _ = s.Push(ctx, "1e308")

		ok, err := s.AddTop(ctx, "1e308")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = s.SubtractTop(ctx, "-1e308")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, []float64{1e308}, s.Values())

		// последующие изменения сохраняются как обычно
		ok, err = s.Push(ctx, "5")
		require.NoError(t, err)
		assert.True(t, ok)

		raw, err := store.Load(ctx, persistence.KeyMemoryStack)
		require.NoError(t, err)
		assert.JSONEq(t, `[1e308, 5]`, raw)
	})
}

func TestClearSlotAndRecall(t *testing.T) {
	ctx := context.Background()
	s := newTestStack(t, persistence.NewMemoryStore())
	for _, expr := range []string{"1", "2", "3"} {
		_, _ = s.Push(ctx, expr)
	}

	v, ok := s.Recall(0)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = s.Recall(2)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)

	_, ok = s.Recall(3)
	assert.False(t, ok)
	_, ok = s.Recall(-1)
	assert.False(t, ok)

	// слот 1 сверху - это значение 2
	ok, err := s.ClearSlot(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 3}, s.Values())

	ok, err = s.ClearSlot(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []float64{1, 3}, s.Values())

	require.NoError(t, s.ClearAll(ctx))
	assert.Equal(t, 0, s.Len())
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()

	s := newTestStack(t, store)
	_, _ = s.Push(ctx, "4")
	_, _ = s.Push(ctx, "8")

	raw, err := store.Load(ctx, persistence.KeyMemoryStack)
	require.NoError(t, err)
	assert.JSONEq(t, `[4, 8]`, raw)

	reloaded := newTestStack(t, store)
	assert.Equal(t, []float64{4, 8}, reloaded.Values())

	require.NoError(t, reloaded.ClearAll(ctx))
	raw, err = store.Load(ctx, persistence.KeyMemoryStack)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, raw)
}

func TestCorruptPersistedStackLoadsEmpty(t *testing.T) {
	ctx := context.Background()

	for _, raw := range []string{`not json`, `{"a":1}`, `"text"`, `null`} {
		store := persistence.NewMemoryStore()
		require.NoError(t, store.Save(ctx, persistence.KeyMemoryStack, raw))

		s := newTestStack(t, store)
		assert.Equal(t, 0, s.Len(), raw)
	}
}
