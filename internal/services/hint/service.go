package hint

import (
	"fmt"
	"slices"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/random"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// Candidates returns one formatted hint per attribute present on the record,
// always in the same order
func Candidates(record model.FlagRecord) []string {
	h := record.Hints
	var out []string
	if h.Population != "" {
		out = append(out, fmt.Sprintf("Population: %s", h.Population))
	}
	if h.LastLetter != "" {
		out = append(out, fmt.Sprintf("Last letter: %s", h.LastLetter))
	}
	if h.WordCount != nil {
		out = append(out, fmt.Sprintf("Word count: %d", *h.WordCount))
	}
	if h.Capital != "" {
		out = append(out, fmt.Sprintf("Capital: %s", h.Capital))
	}
	if h.WordSize != 0 {
		out = append(out, fmt.Sprintf("Word size: %d", h.WordSize))
	}
	return out
}

// Service rations hints per participant per round
type Service struct {
	random random.Random
}

// New creates a new HintService
func New(random random.Random) *Service {
	return &Service{random: random}
}

// Reveal picks an unrevealed candidate uniformly at random and records it on
// usage. Moving to a later round discards the earlier round's usage; rounds
// before the one already in use are rejected. Callers must serialise access
// to usage.
func (s *Service) Reveal(usage *model.HintUsage, round int, candidates []string) (string, int, error) {
	switch {
	case round < usage.Round:
		return "", 0, model.ErrInvalidRound
	case round > usage.Round:
		usage.Round = round
		usage.Revealed = nil
	}

	if len(usage.Revealed) >= model.MaxHintsPerRound {
		return "", len(usage.Revealed), model.ErrHintsExhausted
	}

	var remaining []string
	for _, c := range candidates {
		if !slices.Contains(usage.Revealed, c) && !slices.Contains(remaining, c) {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		return "", len(usage.Revealed), model.ErrHintsExhausted
	}

	picked := remaining[s.random.Intn(len(remaining))]
	usage.Revealed = append(usage.Revealed, picked)
	return picked, len(usage.Revealed), nil
}
