package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	GangstersRecruited = prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_gangsters_recruited_total", Help: "Gangsters added to the roster"})
	ContractsPosted    = prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_contracts_posted_total", Help: "Contracts added to the board"})
	ContractsAssigned  = prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_contracts_assigned_total", Help: "Contracts assigned and completed"})
	AssignRejects      = prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_assign_rejects_total", Help: "Assignments refused because a precondition failed"})
	LootCollected      = prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_loot_collected_total", Help: "Sum of loot amounts minted"})
	RateLimitRejects   = prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_rate_limit_rejects_total", Help: "Requests rejected by rate limiter"})
	RosterGauge        = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ledger_roster_size", Help: "Gangsters currently on the roster"})
	ActiveContracts    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ledger_active_contracts", Help: "Contracts not yet completed"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			GangstersRecruited,
			ContractsPosted,
			ContractsAssigned,
			AssignRejects,
			LootCollected,
			RateLimitRejects,
			RosterGauge,
			ActiveContracts,
		)
	})
	return promhttp.Handler()
}
