package allocation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/chainalloc/pkg/infrastructure/testing"
)

func threeWarehouses() *memory.Network {
	return testhelpers.BuildNetwork(
		testhelpers.LocationSpec{Name: "W1", Stock: []entities.InventoryRecord{
			testhelpers.Stock("A", 100), testhelpers.Stock("B", 100), testhelpers.Stock("C", 100),
		}},
		testhelpers.LocationSpec{Name: "W2", Fallback: "W1", Stock: []entities.InventoryRecord{
			testhelpers.Stock("A", 100), testhelpers.Stock("B", 20), testhelpers.Stock("C", 20),
		}},
		testhelpers.LocationSpec{Name: "W3", Fallback: "W2", Stock: []entities.InventoryRecord{
			testhelpers.Stock("A", 200), testhelpers.Stock("B", 80), testhelpers.Stock("C", 60),
		}},
	)
}

func headID(t *testing.T, network *memory.Network, name string) entities.LocationID {
	t.Helper()
	loc, err := network.LocationByName(name)
	require.NoError(t, err)
	return loc.ID
}

func TestResolve(t *testing.T) {
	loc, err := entities.NewLocation(0, "W1", []entities.InventoryRecord{
		testhelpers.Stock("A", 100),
		testhelpers.Stock("Z", 0),
	}, nil)
	require.NoError(t, err)

	tests := []struct {
		name            string
		item            entities.LineItem
		wantKind        entities.OutcomeKind
		wantSatisfied   entities.Quantity // 0 = no entry
		wantUnsatisfied entities.Quantity // 0 = no entry
	}{
		{"sufficient stock", testhelpers.Request("A", 30), entities.OutcomeFull, 30, 0},
		{"exact stock", testhelpers.Request("A", 100), entities.OutcomeFull, 100, 0},
		{"insufficient stock", testhelpers.Request("A", 150), entities.OutcomePartial, 100, 50},
		{"product not carried", testhelpers.Request("X", 999), entities.OutcomeMissing, 0, 999},
		{"zero stock", testhelpers.Request("Z", 5), entities.OutcomePartial, 0, 5},
		{"zero request", testhelpers.Request("A", 0), entities.OutcomeNone, 0, 0},
		{"zero request for missing product", testhelpers.Request("X", 0), entities.OutcomeNone, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			outcome := Resolve(loc, tc.item)
			assert.Equal(t, tc.wantKind, outcome.Kind())

			s, ok := outcome.Satisfied()
			assert.Equal(t, tc.wantSatisfied > 0, ok)
			if ok {
				assert.Equal(t, entities.SatisfiedEntry{Location: "W1", Product: tc.item.Product, Quantity: tc.wantSatisfied}, s)
			}

			u, ok := outcome.Unsatisfied()
			assert.Equal(t, tc.wantUnsatisfied > 0, ok)
			if ok {
				assert.Equal(t, entities.UnsatisfiedEntry{Product: tc.item.Product, Quantity: tc.wantUnsatisfied}, u)
			}
		})
	}

	qty, _ := loc.Stock("A")
	assert.Equal(t, entities.Quantity(100), qty, "resolve must not change stock")
}

func TestChainAllocate_SingleSufficientStock(t *testing.T) {
	network := testhelpers.BuildNetwork(testhelpers.LocationSpec{Name: "W1", Stock: []entities.InventoryRecord{testhelpers.Stock("A", 100)}})

	ledger, err := ChainAllocate(network, headID(t, network, "W1"), []entities.LineItem{testhelpers.Request("A", 30)})
	require.NoError(t, err)

	assert.Equal(t, []entities.SatisfiedEntry{{Location: "W1", Product: "A", Quantity: 30}}, ledger.Satisfied)
	assert.Empty(t, ledger.Unsatisfied)

	w1, _ := network.LocationByName("W1")
	assert.Equal(t, []entities.InventoryRecord{testhelpers.Stock("A", 100)}, w1.Inventory)
}

func TestChainAllocate_PartialAndUnknownWithoutFallback(t *testing.T) {
	network := testhelpers.BuildNetwork(testhelpers.LocationSpec{Name: "W1", Stock: []entities.InventoryRecord{testhelpers.Stock("A", 100)}})

	ledger, err := ChainAllocate(network, headID(t, network, "W1"), []entities.LineItem{
		testhelpers.Request("A", 150),
		testhelpers.Request("X", 999),
	})
	require.NoError(t, err)

	assert.Equal(t, []entities.SatisfiedEntry{{Location: "W1", Product: "A", Quantity: 100}}, ledger.Satisfied)
	assert.Equal(t, []entities.UnsatisfiedEntry{
		{Product: "A", Quantity: 50},
		{Product: "X", Quantity: 999},
	}, ledger.Unsatisfied)
}

func TestChainAllocate_ThreeLevelChain(t *testing.T) {
	network := threeWarehouses()
	before := network.Snapshot()

	ledger, err := ChainAllocate(network, headID(t, network, "W3"), []entities.LineItem{
		testhelpers.Request("A", 50),
		testhelpers.Request("B", 100),
		testhelpers.Request("C", 100),
	})
	require.NoError(t, err)

	assert.Equal(t, []entities.SatisfiedEntry{
		{Location: "W3", Product: "A", Quantity: 50},
		{Location: "W3", Product: "B", Quantity: 80},
		{Location: "W3", Product: "C", Quantity: 60},
		{Location: "W2", Product: "B", Quantity: 20},
		{Location: "W2", Product: "C", Quantity: 20},
		{Location: "W1", Product: "C", Quantity: 20},
	}, ledger.Satisfied)
	assert.Empty(t, ledger.Unsatisfied)
	assert.Equal(t, before, network.Snapshot())
}

func TestChainAllocate_EntriesFollowRequestOrderWithinLocation(t *testing.T) {
	network := threeWarehouses()

	// Stock lists A, B, C; the request asks for C, A, B
	ledger, err := ChainAllocate(network, headID(t, network, "W3"), []entities.LineItem{
		testhelpers.Request("C", 10),
		testhelpers.Request("A", 10),
		testhelpers.Request("B", 500),
	})
	require.NoError(t, err)

	assert.Equal(t, []entities.SatisfiedEntry{
		{Location: "W3", Product: "C", Quantity: 10},
		{Location: "W3", Product: "A", Quantity: 10},
		{Location: "W3", Product: "B", Quantity: 80},
		{Location: "W2", Product: "B", Quantity: 20},
		{Location: "W1", Product: "B", Quantity: 100},
	}, ledger.Satisfied)
	assert.Equal(t, []entities.UnsatisfiedEntry{{Product: "B", Quantity: 300}}, ledger.Unsatisfied)
}

func TestChainAllocate_ShortfallAtEndOfChain(t *testing.T) {
	network := threeWarehouses()

	ledger, err := ChainAllocate(network, headID(t, network, "W3"), []entities.LineItem{
		testhelpers.Request("C", 500),
		testhelpers.Request("Q", 7),
	})
	require.NoError(t, err)

	assert.Equal(t, []entities.SatisfiedEntry{
		{Location: "W3", Product: "C", Quantity: 60},
		{Location: "W2", Product: "C", Quantity: 20},
		{Location: "W1", Product: "C", Quantity: 100},
	}, ledger.Satisfied)
	// Unknown product travels the whole chain as one entry
	assert.Equal(t, []entities.UnsatisfiedEntry{
		{Product: "C", Quantity: 320},
		{Product: "Q", Quantity: 7},
	}, ledger.Unsatisfied)
}

func TestChainAllocate_FallbackConsultedLazily(t *testing.T) {
	fallback := entities.LocationID(1)
	repo := &testhelpers.SliceRepository{Items: []entities.Location{
		{ID: 0, Name: "Near", Inventory: []entities.InventoryRecord{testhelpers.Stock("A", 10)}, Fallback: &fallback},
		{ID: 1, Name: "Far", Inventory: []entities.InventoryRecord{testhelpers.Stock("A", 10)}},
	}}

	ledger, err := ChainAllocate(repo, 0, []entities.LineItem{testhelpers.Request("A", 10)})
	require.NoError(t, err)

	assert.Len(t, ledger.Satisfied, 1)
	assert.Equal(t, []entities.LocationID{0}, repo.Lookups, "fallback must not be consulted without a shortfall")
}

func TestChainAllocate_DuplicateProductLinesStaySeparate(t *testing.T) {
	network := testhelpers.BuildNetwork(
		testhelpers.LocationSpec{Name: "W1", Stock: []entities.InventoryRecord{testhelpers.Stock("A", 100)}},
		testhelpers.LocationSpec{Name: "W2", Fallback: "W1", Stock: []entities.InventoryRecord{testhelpers.Stock("A", 10)}},
	)

	// Stock is never drawn down, so each line sees the full 10 at W2.
	ledger, err := ChainAllocate(network, headID(t, network, "W2"), []entities.LineItem{
		testhelpers.Request("A", 30),
		testhelpers.Request("A", 30),
	})
	require.NoError(t, err)

	assert.Equal(t, []entities.SatisfiedEntry{
		{Location: "W2", Product: "A", Quantity: 10},
		{Location: "W2", Product: "A", Quantity: 10},
		{Location: "W1", Product: "A", Quantity: 20},
		{Location: "W1", Product: "A", Quantity: 20},
	}, ledger.Satisfied)
}

func TestChainAllocate_EmptyRequest(t *testing.T) {
	network := threeWarehouses()

	ledger, err := ChainAllocate(network, headID(t, network, "W3"), nil)
	require.NoError(t, err)
	assert.Empty(t, ledger.Satisfied)
	assert.Empty(t, ledger.Unsatisfied)
}

func TestChainAllocate_RejectsNegativeQuantity(t *testing.T) {
	network := threeWarehouses()

	_, err := ChainAllocate(network, headID(t, network, "W3"), []entities.LineItem{testhelpers.Request("A", -1)})
	assert.ErrorIs(t, err, entities.ErrInvalidQuantity)
}

func TestChainAllocate_DetectsCycleAtCallTime(t *testing.T) {
	toB, toA := entities.LocationID(1), entities.LocationID(0)
	repo := &testhelpers.SliceRepository{Items: []entities.Location{
		{ID: 0, Name: "A", Fallback: &toB},
		{ID: 1, Name: "B", Fallback: &toA},
	}}

	_, err := ChainAllocate(repo, 0, []entities.LineItem{testhelpers.Request("A", 1)})
	assert.ErrorIs(t, err, entities.ErrCyclicChain)
}

func TestChainAllocate_UnknownHead(t *testing.T) {
	network := threeWarehouses()

	_, err := ChainAllocate(network, 99, []entities.LineItem{testhelpers.Request("A", 1)})
	assert.ErrorIs(t, err, entities.ErrUnknownLocation)
}

func TestChainAllocate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		network, head := testhelpers.RandomChain(rng, 1+rng.Intn(5), 4)
		requests := testhelpers.RandomRequests(rng, rng.Intn(8), 4)
		before := network.Snapshot()

		ledger, err := ChainAllocate(network, headID(t, network, head), requests)
		require.NoError(t, err)

		// Conservation
		requested := make(map[entities.ProductName]entities.Quantity)
		for _, item := range requests {
			requested[item.Product] += item.Quantity
		}
		for product, qty := range requested {
			assert.Equal(t, qty, ledger.TotalSatisfied(product)+ledger.TotalUnsatisfied(product), "run %d product %s", run, product)
		}
		for _, e := range ledger.Satisfied {
			_, ok := requested[e.Product]
			assert.True(t, ok, "satisfied product %s was never requested", e.Product)
		}

		// Zero elimination
		for _, e := range ledger.Satisfied {
			assert.Positive(t, int64(e.Quantity))
		}
		for _, e := range ledger.Unsatisfied {
			assert.Positive(t, int64(e.Quantity))
		}

		// Near-to-far ordering
		chain, err := network.Chain(head)
		require.NoError(t, err)
		position := make(map[string]int, len(chain))
		for i, name := range chain {
			position[name] = i
		}
		for i := 1; i < len(ledger.Satisfied); i++ {
			assert.LessOrEqual(t, position[ledger.Satisfied[i-1].Location], position[ledger.Satisfied[i].Location])
		}

		// No mutation
		assert.Equal(t, before, network.Snapshot())
	}
}
