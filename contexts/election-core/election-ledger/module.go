package electionledger

import (
	"log/slog"
	"sync"

	httpadapter "ballotbox/contexts/election-core/election-ledger/adapters/http"
	"ballotbox/contexts/election-core/election-ledger/adapters/memory"
	"ballotbox/contexts/election-core/election-ledger/application/commands"
	"ballotbox/contexts/election-core/election-ledger/application/queries"
	"ballotbox/contexts/election-core/election-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ledger  ports.LedgerRepository
	Outbox  ports.OutboxWriter
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	AdminID string
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	// One mutex serializes every mutating operation; the vote-integrity
	// invariants only hold when guard and mutation never interleave. Queries
	// take its read side so snapshots never straddle a mutation.
	mu := &sync.RWMutex{}
	sessionUseCase := commands.SessionUseCase{
		Ledger:  deps.Ledger,
		Outbox:  deps.Outbox,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		AdminID: deps.AdminID,
		Mu:      mu,
		Logger:  deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Ledger: deps.Ledger,
		Outbox: deps.Outbox,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Mu:     mu,
		Logger: deps.Logger,
	}
	electionQueries := queries.ElectionQueries{
		Ledger: deps.Ledger,
		Mu:     mu,
	}
	return Module{
		Handler: httpadapter.Handler{
			Sessions: sessionUseCase,
			Votes:    voteUseCase,
			Queries:  electionQueries,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(adminID string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:  store,
		Outbox:  store,
		Clock:   store,
		IDGen:   store,
		AdminID: adminID,
		Logger:  logger,
	})
	module.Store = store
	return module
}
