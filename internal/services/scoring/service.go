package scoring

import "math"

// Config holds the scoring parameters
type Config struct {
	// Penalties[i] is subtracted for the (i+1)th hint used
	Penalties []int
	// BasePoints is the score for an instant guess with no hints
	BasePoints int
	// RoundDuration in seconds; timeLeft is scaled against it
	RoundDuration int
}

// DefaultConfig returns the standard duel scoring
func DefaultConfig() Config {
	return Config{
		Penalties:     []int{150, 300, 750},
		BasePoints:    1500,
		RoundDuration: 25,
	}
}

// Service computes points for a single round guess
type Service struct {
	config Config
}

// New creates a new ScoringService
func New(config Config) *Service {
	if config.RoundDuration <= 0 {
		config.RoundDuration = DefaultConfig().RoundDuration
	}
	return &Service{config: config}
}

// RoundDuration returns the round length the service scales against
func (s *Service) RoundDuration() int {
	return s.config.RoundDuration
}

// Penalty returns the total hint penalty for hintsUsed hints
func (s *Service) Penalty(hintsUsed int) int {
	hintsUsed = clampInt(hintsUsed, 0, len(s.config.Penalties))

	total := 0
	for _, p := range s.config.Penalties[:hintsUsed] {
		total += p
	}
	return total
}

// Points returns floor(base * timeLeft / roundDuration), where base is the
// base points less hint penalties (never negative) and timeLeft is clamped
// into [0, roundDuration]
func (s *Service) Points(hintsUsed int, timeLeft float64) int {
	base := s.config.BasePoints - s.Penalty(hintsUsed)
	if base < 0 {
		base = 0
	}

	duration := float64(s.config.RoundDuration)
	if math.IsNaN(timeLeft) || timeLeft < 0 {
		timeLeft = 0
	}
	if timeLeft > duration {
		timeLeft = duration
	}

	return int(math.Floor(float64(base) * timeLeft / duration))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
