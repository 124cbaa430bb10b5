// Package states combines catalog entries with stored fun facts into the
// records served by the API, and answers property and fun fact queries on
// them.
package states

import (
	"errors"

	"github.com/talgya/us-states/internal/catalog"
	"github.com/talgya/us-states/internal/funfacts"
)

// Record is a catalog entry merged with its fun facts. The store's
// stateCode key is never part of it; the public key is Code.
type Record struct {
	catalog.Entry
	Funfacts []string `json:"funfacts,omitempty"`
}

// Merge combines an entry with its fun fact record, which may be nil.
func Merge(entry catalog.Entry, rec *funfacts.Record) Record {
	out := Record{Entry: entry}
	if rec != nil && len(rec.Funfacts) > 0 {
		out.Funfacts = append([]string(nil), rec.Funfacts...)
	}
	return out
}

// MergeAll merges every entry against a snapshot of all fun fact records.
func MergeAll(entries []catalog.Entry, recs []funfacts.Record) []Record {
	byCode := make(map[string]*funfacts.Record, len(recs))
	for i := range recs {
		byCode[recs[i].StateCode] = &recs[i]
	}

	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, Merge(e, byCode[e.Code]))
	}
	return out
}

// Contig selects a contiguity filter for listings.
type Contig int

const (
	ContigAny Contig = iota
	ContigOnly
	NonContigOnly
)

// ErrInvalidContig is returned for a contig value other than "true" or "false".
var ErrInvalidContig = errors.New("contig must be true or false")

// ParseContig reads the contig query parameter. Empty means no filter.
func ParseContig(raw string) (Contig, error) {
	switch raw {
	case "":
		return ContigAny, nil
	case "true":
		return ContigOnly, nil
	case "false":
		return NonContigOnly, nil
	}
	return ContigAny, ErrInvalidContig
}

// Filtered returns the catalog entries selected by f as plain records.
// Filtered listings skip the fun fact merge.
func Filtered(c *catalog.Catalog, f Contig) []Record {
	var entries []catalog.Entry
	switch f {
	case ContigOnly:
		entries = c.ContiguousEntries()
	case NonContigOnly:
		entries = c.NonContiguousEntries()
	default:
		entries = c.Entries()
	}
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		out = append(out, Record{Entry: e})
	}
	return out
}
