package allocation

import (
	"fmt"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/domain/repositories"
)

// ChainAllocate resolves requests against head and cascades every shortfall
// down the fallback chain. Each location's own entries precede the entries
// contributed by its fallback, and within a location entries follow request
// order. Shortfalls become unsatisfied entries only at the end of the chain.
//
// A fallback is consulted only when the location before it left something
// short. Shortfalls for the same product coming from separate request lines
// are forwarded as separate line items.
func ChainAllocate(repo repositories.LocationRepository, head entities.LocationID, requests []entities.LineItem) (entities.Ledger, error) {
	ledger, _, err := walk(repo, head, requests, 0)
	return ledger, err
}

// walk runs the chain allocation and also reports how many locations were
// consulted. maxDepth <= 0 means unbounded; cycles are still detected.
func walk(repo repositories.LocationRepository, head entities.LocationID, requests []entities.LineItem, maxDepth int) (entities.Ledger, int, error) {
	if err := entities.ValidateRequests(requests); err != nil {
		return entities.Ledger{}, 0, err
	}

	ledger := entities.NewLedger()
	visited := make(map[entities.LocationID]bool)
	pending := requests
	current := head
	depth := 0

	for {
		if visited[current] {
			return entities.Ledger{}, depth, fmt.Errorf("%w: location id %d reached twice", entities.ErrCyclicChain, current)
		}
		if maxDepth > 0 && depth >= maxDepth {
			return entities.Ledger{}, depth, fmt.Errorf("%w: more than %d locations", entities.ErrChainTooDeep, maxDepth)
		}
		visited[current] = true

		loc, err := repo.Location(current)
		if err != nil {
			return entities.Ledger{}, depth, err
		}
		depth++

		local := entities.NewLedger()
		overflow := make([]entities.LineItem, 0)
		for _, item := range pending {
			outcome := Resolve(loc, item)

			if s, ok := outcome.Satisfied(); ok {
				local.Satisfied = append(local.Satisfied, s)
			}
			u, short := outcome.Unsatisfied()
			if !short {
				continue
			}
			if loc.HasFallback() {
				overflow = append(overflow, entities.LineItem{Product: u.Product, Quantity: u.Quantity})
			} else {
				local.Unsatisfied = append(local.Unsatisfied, u)
			}
		}
		ledger.Merge(local)

		if !loc.HasFallback() || len(overflow) == 0 {
			return ledger, depth, nil
		}
		pending = overflow
		current = *loc.Fallback
	}
}
