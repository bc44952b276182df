package store

import (
	"sort"
	"sync"
	"time"

	"gangster-ledger/internal/models"
)

// Store keeps the roster, the contract board and the loot ledger in memory.
// Each method runs under a single mutex; no method spans more than one call.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	gangsters map[int]models.Gangster
	contracts map[int]models.Contract
	loot      map[int]models.Loot

	nextGangsterID int
	nextContractID int
	nextLootID     int
}

// New creates an empty store. now stamps completion dates; nil means time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:            now,
		gangsters:      make(map[int]models.Gangster),
		contracts:      make(map[int]models.Contract),
		loot:           make(map[int]models.Loot),
		nextGangsterID: 1,
		nextContractID: 1,
		nextLootID:     1,
	}
}

// Now exposes the store clock so callers stamp records consistently.
func (s *Store) Now() time.Time {
	return s.now()
}

// AddGangster assigns the next gangster ID, stores the record and returns the ID.
func (s *Store) AddGangster(g models.Gangster) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.nextGangsterID
	s.gangsters[g.ID] = g
	s.nextGangsterID++
	return g.ID
}

// GetGangster looks up a gangster by ID.
func (s *Store) GetGangster(id int) (models.Gangster, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.gangsters[id]
	return g, ok
}

// ListGangsters returns the roster in insertion order.
func (s *Store) ListGangsters() []models.Gangster {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Gangster, 0, len(s.gangsters))
	for _, id := range sortedKeys(s.gangsters) {
		out = append(out, s.gangsters[id])
	}
	return out
}

// UpdateGangster replaces the stored record with the same ID. Unknown IDs are ignored.
func (s *Store) UpdateGangster(g models.Gangster) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gangsters[g.ID]; ok {
		s.gangsters[g.ID] = g
	}
}

// DeleteGangster removes a gangster. Contracts and loot pointing at it are left alone.
func (s *Store) DeleteGangster(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.gangsters, id)
}

// AddContract assigns the next contract ID, stores the record and returns the ID.
func (s *Store) AddContract(c models.Contract) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextContractID
	s.contracts[c.ID] = c
	s.nextContractID++
	return c.ID
}

// GetContract looks up a contract by ID.
func (s *Store) GetContract(id int) (models.Contract, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[id]
	return c, ok
}

// ListContracts returns every contract, open or completed, in insertion order.
func (s *Store) ListContracts() []models.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterContracts(func(models.Contract) bool { return true })
}

// ListActiveContracts returns the contracts that have not been completed.
func (s *Store) ListActiveContracts() []models.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterContracts(func(c models.Contract) bool { return !c.Completed })
}

// AssignContract hands an open contract to a gangster and marks it completed.
// It returns false, changing nothing, when either record is missing or the
// contract was already completed.
func (s *Store) AssignContract(contractID, gangsterID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[contractID]
	if !ok || c.Completed {
		return false
	}
	if _, ok := s.gangsters[gangsterID]; !ok {
		return false
	}

	done := s.now()
	c.GangsterID = models.IntPtr(gangsterID)
	c.Completed = true
	c.CompletionDate = &done
	s.contracts[contractID] = c
	return true
}

// DeleteContract removes a contract if present.
func (s *Store) DeleteContract(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.contracts, id)
}

// AddLoot assigns the next loot ID, stores the entry and returns the ID.
func (s *Store) AddLoot(l models.Loot) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = s.nextLootID
	s.loot[l.ID] = l
	s.nextLootID++
	return l.ID
}

// TotalLoot sums every stored loot amount.
func (s *Store) TotalLoot() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, l := range s.loot {
		total += l.Amount
	}
	return total
}

// ListLoot returns the whole ledger in insertion order.
func (s *Store) ListLoot() []models.Loot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterLoot(func(models.Loot) bool { return true })
}

// LootForGangster returns the loot credited to a gangster, including loot
// credited before the gangster was deleted.
func (s *Store) LootForGangster(gangsterID int) []models.Loot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.filterLoot(func(l models.Loot) bool {
		return l.GangsterID != nil && *l.GangsterID == gangsterID
	})
}

// Counts summarizes collection sizes for gauges.
type Counts struct {
	Gangsters       int
	ActiveContracts int
	Contracts       int
	Loot            int
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := 0
	for _, c := range s.contracts {
		if !c.Completed {
			active++
		}
	}
	return Counts{
		Gangsters:       len(s.gangsters),
		ActiveContracts: active,
		Contracts:       len(s.contracts),
		Loot:            len(s.loot),
	}
}

// caller holds s.mu
func (s *Store) filterContracts(keep func(models.Contract) bool) []models.Contract {
	out := make([]models.Contract, 0, len(s.contracts))
	for _, id := range sortedKeys(s.contracts) {
		if c := s.contracts[id]; keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// caller holds s.mu
func (s *Store) filterLoot(keep func(models.Loot) bool) []models.Loot {
	out := make([]models.Loot, 0, len(s.loot))
	for _, id := range sortedKeys(s.loot) {
		if l := s.loot[id]; keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// IDs are handed out in increasing order, so sorting by ID yields insertion order.
func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
