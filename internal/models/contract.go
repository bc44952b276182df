package models

import (
	"time"
)

// Difficulty labels recognised by the payout rules. Any other string is
// accepted and stored as-is.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Contract is a job the family can hand to one of its members.
// GangsterID is a weak reference: the gangster may since have been removed.
type Contract struct {
	ID             int        `json:"id"`
	Target         string     `json:"target"`
	Reward         int        `json:"reward"`
	Difficulty     string     `json:"difficulty"`
	GangsterID     *int       `json:"gangster_id"`
	Completed      bool       `json:"completed"`
	CompletionDate *time.Time `json:"completion_date"`
}

func NewContract(target string, reward int, difficulty string) Contract {
	return Contract{
		Target:     target,
		Reward:     reward,
		Difficulty: difficulty,
	}
}

// ToMap exports the contract as a plain key/value mapping. Unset references
// and an unset completion date export as nil.
func (c Contract) ToMap() map[string]any {
	var completion any
	if c.CompletionDate != nil {
		completion = FormatTime(*c.CompletionDate)
	}
	return map[string]any{
		"id":              c.ID,
		"target":          c.Target,
		"reward":          c.Reward,
		"difficulty":      c.Difficulty,
		"gangster_id":     intOrNil(c.GangsterID),
		"completed":       c.Completed,
		"completion_date": completion,
	}
}
