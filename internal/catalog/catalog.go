// Package catalog holds the static US state reference data.
// The table is loaded once at startup and shared read-only by all requests.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed states.json
var bundled []byte

// ErrUnknownState is returned when a code has no entry in the catalog.
var ErrUnknownState = errors.New("unknown state code")

// Entry is one state's intrinsic attributes.
type Entry struct {
	State           string `json:"state"`
	Code            string `json:"code"`
	Nickname        string `json:"nickname"`
	CapitalCity     string `json:"capital_city"`
	Population      int64  `json:"population"`
	AdmissionDate   string `json:"admission_date"`
	AdmissionNumber int    `json:"admission_number"`
}

// Catalog is an immutable table of entries indexed by code.
// Safe for concurrent reads.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// Bundled parses the dataset compiled into the binary.
func Bundled() (*Catalog, error) {
	return Parse(bundled)
}

// LoadFile reads a dataset from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read states data: %w", err)
	}
	return Parse(data)
}

// Load returns the catalog at path, or the bundled one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Bundled()
	}
	return LoadFile(path)
}

// Parse builds a catalog from a JSON array of entries.
func Parse(data []byte) (*Catalog, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse states data: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("states data is empty")
	}

	c := &Catalog{
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		code := strings.ToUpper(e.Code)
		if len(code) != 2 {
			return nil, fmt.Errorf("entry %d (%q): code must be 2 letters", i, e.State)
		}
		if e.Population < 0 {
			return nil, fmt.Errorf("entry %s: negative population", code)
		}
		if _, dup := c.index[code]; dup {
			return nil, fmt.Errorf("entry %s: duplicate code", code)
		}
		c.entries[i].Code = code
		c.index[code] = i
	}
	return c, nil
}

// Lookup returns the entry for a code. The code is matched case-insensitively.
func (c *Catalog) Lookup(code string) (Entry, error) {
	i, ok := c.index[strings.ToUpper(code)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownState, code)
	}
	return c.entries[i], nil
}

// Entries returns a copy of all entries in dataset order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Contiguous reports whether the state was admitted before Alaska and Hawaii.
func (e Entry) Contiguous() bool {
	return e.AdmissionNumber < 49
}

// ContiguousEntries returns the 48 states admitted before Alaska and Hawaii.
func (c *Catalog) ContiguousEntries() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Contiguous() {
			out = append(out, e)
		}
	}
	return out
}

// NonContiguousEntries returns Alaska and Hawaii.
func (c *Catalog) NonContiguousEntries() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Code == "AK" || e.Code == "HI" {
			out = append(out, e)
		}
	}
	return out
}
