package ledger

import (
	"context"
	"log/slog"

	"gangster-ledger/internal/feed"
	"gangster-ledger/internal/models"
	"gangster-ledger/internal/payout"
	"gangster-ledger/internal/store"
	"gangster-ledger/internal/telemetry"
)

// Publisher records ledger activity somewhere operators can read it.
type Publisher interface {
	Publish(ctx context.Context, kind string, detail map[string]any) (feed.Event, error)
}

// Service runs the family's bookkeeping on top of a Store.
type Service struct {
	store  *store.Store
	rng    payout.Source
	feed   Publisher
	logger *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithSource pins the luck factor used for payouts.
func WithSource(src payout.Source) Option {
	return func(s *Service) { s.rng = src }
}

// WithFeed publishes every change to the given feed.
func WithFeed(p Publisher) Option {
	return func(s *Service) { s.feed = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New constructs the service.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		rng:    payout.NewSource(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.refreshGauges()
	return s
}

// Store returns the underlying repository for read paths.
func (s *Service) Store() *store.Store {
	return s.store
}

// Result describes a completed assignment.
type Result struct {
	Contract   models.Contract
	Gangster   models.Gangster
	Loot       models.Loot
	Reputation int
}

// Recruit adds a gangster to the roster.
func (s *Service) Recruit(ctx context.Context, g models.Gangster) models.Gangster {
	g.ID = s.store.AddGangster(g)
	telemetry.GangstersRecruited.Inc()
	s.refreshGauges()
	s.logger.Info("gangster recruited", "gangster_id", g.ID, "name", g.Name, "role", g.Role)
	s.publish(ctx, feed.KindRecruited, map[string]any{"gangster_id": g.ID, "name": g.Name})
	return g
}

// Dismiss removes a gangster. Contracts and loot keep their references.
func (s *Service) Dismiss(ctx context.Context, id int) {
	s.store.DeleteGangster(id)
	s.refreshGauges()
	s.logger.Info("gangster removed", "gangster_id", id)
	s.publish(ctx, feed.KindRemoved, map[string]any{"gangster_id": id})
}

// Post puts a contract on the board.
func (s *Service) Post(ctx context.Context, c models.Contract) models.Contract {
	c.ID = s.store.AddContract(c)
	telemetry.ContractsPosted.Inc()
	s.refreshGauges()
	s.logger.Info("contract posted", "contract_id", c.ID, "target", c.Target, "reward", c.Reward, "difficulty", c.Difficulty)
	s.publish(ctx, feed.KindPosted, map[string]any{"contract_id": c.ID, "target": c.Target, "reward": c.Reward})
	return c
}

// Scrap deletes a contract from the board.
func (s *Service) Scrap(ctx context.Context, id int) {
	s.store.DeleteContract(id)
	s.refreshGauges()
	s.logger.Info("contract scrapped", "contract_id", id)
	s.publish(ctx, feed.KindScrapped, map[string]any{"contract_id": id})
}

// Assign hands a contract to a gangster, mints the loot and credits the
// reputation gain. The three store calls are not rolled back as a unit: a
// failure after the first leaves the contract completed without payout.
// It returns false, changing nothing, when the store refuses the assignment.
func (s *Service) Assign(ctx context.Context, contractID, gangsterID int) (Result, bool) {
	if !s.store.AssignContract(contractID, gangsterID) {
		telemetry.AssignRejects.Inc()
		s.logger.Debug("assignment refused", "contract_id", contractID, "gangster_id", gangsterID)
		return Result{}, false
	}

	contract, _ := s.store.GetContract(contractID)
	gangster, _ := s.store.GetGangster(gangsterID)

	amount := payout.ComputeLoot(contract.Reward, gangster.Reputation, s.rng)
	loot := models.NewLoot(amount, models.ContractSource(contract.Target), models.IntPtr(gangsterID), s.store.Now())
	loot.ID = s.store.AddLoot(loot)

	gangster.Reputation += payout.ReputationGain(contract.Difficulty)
	s.store.UpdateGangster(gangster)

	telemetry.ContractsAssigned.Inc()
	telemetry.LootCollected.Add(float64(amount))
	s.refreshGauges()
	s.logger.Info("contract assigned",
		"contract_id", contractID,
		"gangster_id", gangsterID,
		"loot", amount,
		"reputation", gangster.Reputation,
	)
	s.publish(ctx, feed.KindAssigned, map[string]any{
		"contract_id": contractID,
		"gangster_id": gangsterID,
		"amount":      amount,
		"reputation":  gangster.Reputation,
	})

	return Result{
		Contract:   contract,
		Gangster:   gangster,
		Loot:       loot,
		Reputation: gangster.Reputation,
	}, true
}

func (s *Service) publish(ctx context.Context, kind string, detail map[string]any) {
	if s.feed == nil {
		return
	}
	if _, err := s.feed.Publish(ctx, kind, detail); err != nil {
		s.logger.Warn("feed publish failed", "kind", kind, "error", err)
	}
}

func (s *Service) refreshGauges() {
	c := s.store.Counts()
	telemetry.RosterGauge.Set(float64(c.Gangsters))
	telemetry.ActiveContracts.Set(float64(c.ActiveContracts))
}
