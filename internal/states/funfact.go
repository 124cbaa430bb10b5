package states

import (
	"github.com/talgya/us-states/internal/entropy"
	"github.com/talgya/us-states/internal/funfacts"
)

// PickFunFact returns one of r's fun facts chosen uniformly by src.
// A nil src uses entropy.Default.
func PickFunFact(r Record, src entropy.Source) (string, error) {
	if len(r.Funfacts) == 0 {
		return "", funfacts.ErrNoFunFacts
	}
	if src == nil {
		src = entropy.Default
	}
	return r.Funfacts[src.IntN(len(r.Funfacts))], nil
}
