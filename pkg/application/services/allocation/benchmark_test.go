package allocation

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/vsinha/chainalloc/pkg/domain/entities"
	testhelpers "github.com/vsinha/chainalloc/pkg/infrastructure/testing"
)

func BenchmarkChainAllocate(b *testing.B) {
	for _, length := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("chain_%d", length), func(b *testing.B) {
			rng := rand.New(rand.NewSource(7))
			network, head := testhelpers.RandomChain(rng, length, 200)
			requests := testhelpers.RandomRequests(rng, 100, 200)
			loc, err := network.LocationByName(head)
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ChainAllocate(network, loc.ID, requests); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkResolve(b *testing.B) {
	records := make([]entities.InventoryRecord, 0, 1000)
	for i := 0; i < 1000; i++ {
		records = append(records, testhelpers.Stock(fmt.Sprintf("P%d", i), int64(i)))
	}
	loc, err := entities.NewLocation(0, "W1", records, nil)
	if err != nil {
		b.Fatal(err)
	}
	item := testhelpers.Request("P999", 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Resolve(loc, item)
	}
}
