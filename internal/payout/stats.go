package payout

import "gangster-ledger/internal/models"

const (
	StatusActive    = "Active"
	StatusProbation = "On Probation"
)

// GangsterStats is the derived scorecard shown next to a roster entry.
type GangsterStats struct {
	Name        string `json:"name"`
	SuccessRate int    `json:"success_rate"`
	DangerLevel int    `json:"danger_level"`
	FamilyValue int    `json:"family_value"`
	Status      string `json:"status"`
}

func Stats(g models.Gangster) GangsterStats {
	half := floorDiv(g.Reputation, 2)
	status := StatusProbation
	if g.Reputation > 30 {
		status = StatusActive
	}
	return GangsterStats{
		Name:        g.Name,
		SuccessRate: min(95, 40+half),
		DangerLevel: min(100, half+g.ContractsCompleted*2),
		FamilyValue: g.Reputation*10 + g.ContractsCompleted*50,
		Status:      status,
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
