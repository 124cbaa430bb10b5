package funfacts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore wraps a MemoryStore and fails the configured operations.
type failingStore struct {
	*MemoryStore
	failCreate bool
	failSave   bool
	failFind   bool
}

var errDisk = errors.New("disk on fire")

func (f *failingStore) FindOne(ctx context.Context, code string) (*Record, error) {
	if f.failFind {
		return nil, errDisk
	}
	return f.MemoryStore.FindOne(ctx, code)
}

func (f *failingStore) Create(ctx context.Context, code string, facts []string) (*Record, error) {
	if f.failCreate {
		return nil, errDisk
	}
	return f.MemoryStore.Create(ctx, code, facts)
}

func (f *failingStore) Save(ctx context.Context, rec *Record) (*Record, error) {
	if f.failSave {
		return nil, errDisk
	}
	return f.MemoryStore.Save(ctx, rec)
}

func TestAppendReplaceDeleteSequence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMutator(NewMemoryStore())

	rec, err := m.Append(ctx, "KS", []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, rec.Funfacts)

	rec, err = m.Replace(ctx, "KS", 1, "C")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, rec.Funfacts)

	rec, err = m.Delete(ctx, "KS", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, rec.Funfacts)
}

func TestAppendPreservesExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewMutator(store)

	_, err := m.Append(ctx, "NE", []string{"one", "two"})
	require.NoError(t, err)
	_, err = m.Append(ctx, "NE", []string{"three", "two"})
	require.NoError(t, err)

	got, err := store.FindOne(ctx, "NE")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three", "two"}, got.Funfacts)
}

func TestAppendRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewMutator(store)

	_, err := m.Append(ctx, "OK", []string{"first"})
	require.NoError(t, err)

	x := []string{"x1", "x2", "x3"}
	_, err = m.Append(ctx, "OK", x)
	require.NoError(t, err)

	got, err := store.FindOne(ctx, "OK")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got.Funfacts), len(x))
	assert.Equal(t, x, got.Funfacts[len(got.Funfacts)-len(x):])
}

func TestAppendRejectsEmpty(t *testing.T) {
	t.Parallel()
	m := NewMutator(NewMemoryStore())
	_, err := m.Append(context.Background(), "MO", nil)
	assert.ErrorIs(t, err, ErrEmptyFunFacts)
}

func TestIndexOutOfBounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewMutator(store)

	_, err := m.Append(ctx, "CO", []string{"a", "b"})
	require.NoError(t, err)

	for _, idx := range []int{-1, 0, 3, 100} {
		_, err := m.Replace(ctx, "CO", idx, "z")
		assert.ErrorIs(t, err, ErrNoFunFactAtIndex, "replace index %d", idx)

		_, err = m.Delete(ctx, "CO", idx)
		assert.ErrorIs(t, err, ErrNoFunFactAtIndex, "delete index %d", idx)
	}

	got, err := store.FindOne(ctx, "CO")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Funfacts)
}

func TestMissingRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMutator(NewMemoryStore())

	_, err := m.Replace(ctx, "TX", 1, "big")
	assert.ErrorIs(t, err, ErrNoFunFacts)

	_, err = m.Delete(ctx, "TX", 1)
	assert.ErrorIs(t, err, ErrNoFunFacts)
}

func TestEmptyListCountsAsMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMutator(NewMemoryStore())

	_, err := m.Append(ctx, "UT", []string{"only"})
	require.NoError(t, err)
	_, err = m.Delete(ctx, "UT", 1)
	require.NoError(t, err)

	_, err = m.Delete(ctx, "UT", 1)
	assert.ErrorIs(t, err, ErrNoFunFacts)
}

func TestDeleteShiftsLeft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMutator(NewMemoryStore())

	_, err := m.Append(ctx, "WA", []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	rec, err := m.Delete(ctx, "WA", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, rec.Funfacts)

	rec, err = m.Delete(ctx, "WA", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, rec.Funfacts)
}

func TestStorageErrorsPropagate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		t.Parallel()
		m := NewMutator(&failingStore{MemoryStore: NewMemoryStore(), failCreate: true})
		_, err := m.Append(ctx, "AL", []string{"x"})
		assert.ErrorIs(t, err, errDisk)
	})

	t.Run("save", func(t *testing.T) {
		t.Parallel()
		store := &failingStore{MemoryStore: NewMemoryStore()}
		m := NewMutator(store)
		_, err := m.Append(ctx, "AL", []string{"x"})
		require.NoError(t, err)

		store.failSave = true
		_, err = m.Append(ctx, "AL", []string{"y"})
		assert.ErrorIs(t, err, errDisk)
		_, err = m.Replace(ctx, "AL", 1, "y")
		assert.ErrorIs(t, err, errDisk)
		_, err = m.Delete(ctx, "AL", 1)
		assert.ErrorIs(t, err, errDisk)
	})

	t.Run("find", func(t *testing.T) {
		t.Parallel()
		m := NewMutator(&failingStore{MemoryStore: NewMemoryStore(), failFind: true})
		_, err := m.Append(ctx, "AL", []string{"x"})
		assert.ErrorIs(t, err, errDisk)
		_, err = m.Replace(ctx, "AL", 1, "x")
		assert.ErrorIs(t, err, errDisk)
		assert.NotErrorIs(t, err, ErrNoFunFacts)
	})
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewMutator(store)

	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Append(ctx, "IA", []string{fmt.Sprintf("fact %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := store.FindOne(ctx, "IA")
	require.NoError(t, err)
	assert.Len(t, got.Funfacts, writers)
}
