package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"portfolio-analyzer/internal/models"
)

// Property: for any holdings list, saving then loading returns the same
// items, and a second save replaces the first wholesale.
func TestProperty_HoldingsRoundTripAndReplace(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "slots_property.db")

	sqliteStore, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer sqliteStore.Close()

	backends := map[string]Store{
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	itemGen := gen.SliceOfN(len(models.PortfolioFields), gen.AlphaString()).Map(func(values []string) models.PortfolioItem {
		item := make(models.PortfolioItem, len(values))
		for i, f := range models.PortfolioFields {
			item[f] = values[i]
		}
		return item
	})

	for name, s := range backends {
		s := s
		properties.Property(name+": save then load returns the last saved list", prop.ForAll(
			func(first, second []models.PortfolioItem) bool {
				ctx := context.Background()
				if err := SaveHoldings(ctx, s, first); err != nil {
					t.Logf("save failed: %v", err)
					return false
				}
				if err := SaveHoldings(ctx, s, second); err != nil {
					t.Logf("save failed: %v", err)
					return false
				}
				loaded, err := LoadHoldings(ctx, s)
				if err != nil {
					t.Logf("load failed: %v", err)
					return false
				}
				if len(second) == 0 {
					return len(loaded) == 0
				}
				return reflect.DeepEqual(loaded, second)
			},
			gen.SliceOf(itemGen),
			gen.SliceOf(itemGen),
		))
	}

	properties.TestingRun(t)
}
