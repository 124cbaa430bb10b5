// Package funfacts stores user-contributed fun facts per state and applies
// append, replace and delete operations to them.
package funfacts

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrRecordNotFound is returned by a Store when no record exists for a code.
	ErrRecordNotFound = errors.New("fun fact record not found")
	// ErrRecordExists is returned by Create when the code already has a record.
	ErrRecordExists = errors.New("fun fact record already exists")

	// ErrNoFunFacts means the state has no record or an empty list.
	ErrNoFunFacts = errors.New("no fun facts found")
	// ErrNoFunFactAtIndex means a 1-based index is outside the current list.
	ErrNoFunFactAtIndex = errors.New("no fun fact found at that index")
	// ErrEmptyFunFacts means an append carried no entries.
	ErrEmptyFunFacts = errors.New("fun facts must not be empty")
)

// Record is the persisted list of fun facts for one state.
type Record struct {
	StateCode string    `json:"stateCode"`
	Funfacts  []string  `json:"funfacts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Funfacts = append([]string(nil), r.Funfacts...)
	return &c
}

// Store is a collection of records keyed by state code.
type Store interface {
	// FindOne returns the record for code, or ErrRecordNotFound.
	FindOne(ctx context.Context, code string) (*Record, error)
	// FindAll returns every record.
	FindAll(ctx context.Context) ([]Record, error)
	// Create inserts a new record seeded with facts.
	Create(ctx context.Context, code string, facts []string) (*Record, error)
	// Save persists a mutated record and returns the stored copy.
	Save(ctx context.Context, rec *Record) (*Record, error)
}

// Pinger is implemented by stores backed by an external resource that can
// be checked for reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
