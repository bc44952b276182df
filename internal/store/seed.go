package store

import "gangster-ledger/internal/models"

// SeedSampleData loads the starter roster and contract board.
func (s *Store) SeedSampleData() {
	joined := s.now()
	roster := []struct {
		name, role, weapon string
		reputation         int
	}{
		{"Tony 'The Nose' Soprano", "Boss", "Thompson SMG", 95},
		{"Paulie Walnuts", "Enforcer", "Baseball Bat", 75},
		{"Silvio Dante", "Consigliere", "Silenced Pistol", 85},
		{"Christopher Moltisanti", "Soldier", "9mm", 65},
		{"Bobby Baccalieri", "Associate", "Brass Knuckles", 45},
	}
	for _, r := range roster {
		g := models.NewGangster(r.name, r.role, r.weapon, joined)
		g.Reputation = r.reputation
		s.AddGangster(g)
	}

	board := []models.Contract{
		models.NewContract("Rat Informant", 5000, models.DifficultyEasy),
		models.NewContract("Rival Bookie", 15000, models.DifficultyMedium),
		models.NewContract("Disloyal Capo", 50000, models.DifficultyHard),
		models.NewContract("Uncooperative Business Owner", 10000, models.DifficultyEasy),
		models.NewContract("Territory Infringement", 30000, models.DifficultyMedium),
	}
	for _, c := range board {
		s.AddContract(c)
	}
}
