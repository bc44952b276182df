package models

import (
	"time"
)

// DefaultReputation is the standing a new recruit starts with.
const DefaultReputation = 50

// Gangster is a member of the family roster.
type Gangster struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	Weapon             string    `json:"weapon"`
	Reputation         int       `json:"reputation"`
	ContractsCompleted int       `json:"contracts_completed"`
	JoinDate           time.Time `json:"join_date"`
}

// NewGangster builds a recruit with the default reputation.
func NewGangster(name, role, weapon string, joined time.Time) Gangster {
	return Gangster{
		Name:       name,
		Role:       role,
		Weapon:     weapon,
		Reputation: DefaultReputation,
		JoinDate:   joined,
	}
}

// ToMap exports the gangster as a plain key/value mapping.
func (g Gangster) ToMap() map[string]any {
	return map[string]any{
		"id":                  g.ID,
		"name":                g.Name,
		"role":                g.Role,
		"weapon":              g.Weapon,
		"reputation":          g.Reputation,
		"contracts_completed": g.ContractsCompleted,
		"join_date":           FormatTime(g.JoinDate),
	}
}
