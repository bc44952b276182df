package models

import (
	"fmt"
	"time"
)

// Loot is a realized reward. It is never modified once stored.
type Loot struct {
	ID            int       `json:"id"`
	Amount        int       `json:"amount"`
	Source        string    `json:"source"`
	GangsterID    *int      `json:"gangster_id"`
	DateCollected time.Time `json:"date_collected"`
}

func NewLoot(amount int, source string, gangsterID *int, collected time.Time) Loot {
	return Loot{
		Amount:        amount,
		Source:        source,
		GangsterID:    gangsterID,
		DateCollected: collected,
	}
}

// ContractSource is the conventional loot source label for a contract payout.
func ContractSource(target string) string {
	return fmt.Sprintf("Contract: %s", target)
}

// ToMap exports the loot entry as a plain key/value mapping.
func (l Loot) ToMap() map[string]any {
	return map[string]any{
		"id":             l.ID,
		"amount":         l.Amount,
		"source":         l.Source,
		"gangster_id":    intOrNil(l.GangsterID),
		"date_collected": FormatTime(l.DateCollected),
	}
}
