package funfacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/im7mortal/kmutex"
)

// Mutator applies fun fact list operations against a Store. External
// indices are 1-based. Each operation holds a per-state lock across its
// fetch, mutate and save steps.
type Mutator struct {
	store Store
	locks *kmutex.Kmutex
}

// NewMutator creates a Mutator over store.
func NewMutator(store Store) *Mutator {
	return &Mutator{
		store: store,
		locks: kmutex.New(),
	}
}

// Append adds facts to the end of the state's list, creating the record
// when none exists yet.
func (m *Mutator) Append(ctx context.Context, code string, facts []string) (*Record, error) {
	if len(facts) == 0 {
		return nil, ErrEmptyFunFacts
	}

	m.locks.Lock(code)
	defer m.locks.Unlock(code)

	rec, err := m.store.FindOne(ctx, code)
	if errors.Is(err, ErrRecordNotFound) {
		created, err := m.store.Create(ctx, code, facts)
		if err != nil {
			return nil, fmt.Errorf("create fun facts for %s: %w", code, err)
		}
		slog.Debug("fun fact record created", "state", code, "count", len(facts))
		return created, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find fun facts for %s: %w", code, err)
	}

	rec.Funfacts = append(rec.Funfacts, facts...)
	return m.save(ctx, rec)
}

// Replace overwrites the fact at the 1-based index.
func (m *Mutator) Replace(ctx context.Context, code string, index int, fact string) (*Record, error) {
	m.locks.Lock(code)
	defer m.locks.Unlock(code)

	rec, pos, err := m.locate(ctx, code, index)
	if err != nil {
		return nil, err
	}
	rec.Funfacts[pos] = fact
	return m.save(ctx, rec)
}

// Delete removes the fact at the 1-based index, shifting later facts left.
func (m *Mutator) Delete(ctx context.Context, code string, index int) (*Record, error) {
	m.locks.Lock(code)
	defer m.locks.Unlock(code)

	rec, pos, err := m.locate(ctx, code, index)
	if err != nil {
		return nil, err
	}
	rec.Funfacts = append(rec.Funfacts[:pos], rec.Funfacts[pos+1:]...)
	return m.save(ctx, rec)
}

// locate loads the record and converts index to a 0-based position.
func (m *Mutator) locate(ctx context.Context, code string, index int) (*Record, int, error) {
	rec, err := m.store.FindOne(ctx, code)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, 0, ErrNoFunFacts
	}
	if err != nil {
		return nil, 0, fmt.Errorf("find fun facts for %s: %w", code, err)
	}
	if len(rec.Funfacts) == 0 {
		return nil, 0, ErrNoFunFacts
	}

	pos := index - 1
	if pos < 0 || pos >= len(rec.Funfacts) {
		return nil, 0, ErrNoFunFactAtIndex
	}
	return rec, pos, nil
}

func (m *Mutator) save(ctx context.Context, rec *Record) (*Record, error) {
	saved, err := m.store.Save(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("save fun facts for %s: %w", rec.StateCode, err)
	}
	return saved, nil
}
