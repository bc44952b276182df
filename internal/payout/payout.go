package payout

import (
	"math"
	"math/rand"

	"gangster-ledger/internal/models"
)

// Source supplies uniform floats in [0, 1).
type Source interface {
	Float64() float64
}

// NewSource returns a source backed by the process-wide generator.
func NewSource() Source {
	return globalSource{}
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

const (
	baseMultiplier  = 0.8
	reputationScale = 500.0
	jitterMin       = 0.9
	jitterSpan      = 0.2
)

// Multiplier is the negotiation bonus earned by reputation. It is not clamped.
func Multiplier(reputation int) float64 {
	return baseMultiplier + float64(reputation)/reputationScale
}

// ComputeLoot scales a contract reward by reputation and a luck factor
// drawn uniformly from [0.9, 1.1].
func ComputeLoot(reward, reputation int, rng Source) int {
	luck := jitterMin + jitterSpan*rng.Float64()
	return int(math.Floor(float64(reward) * Multiplier(reputation) * luck))
}

var reputationGain = map[string]int{
	models.DifficultyEasy:   2,
	models.DifficultyMedium: 5,
	models.DifficultyHard:   10,
}

// ReputationGain is the standing earned by finishing a contract of the given difficulty.
func ReputationGain(difficulty string) int {
	if gain, ok := reputationGain[difficulty]; ok {
		return gain
	}
	return 3
}

// AssessDifficulty labels a contract from the size of its reward.
func AssessDifficulty(reward int) string {
	switch {
	case reward < 10000:
		return models.DifficultyEasy
	case reward < 30000:
		return models.DifficultyMedium
	default:
		return models.DifficultyHard
	}
}
