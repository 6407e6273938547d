package presenter

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"portfolio-analyzer/internal/models"
)

func costsGen() gopter.Gen {
	return gen.IntRange(1, 40).FlatMap(func(v interface{}) gopter.Gen {
		return gen.SliceOfN(v.(int), gen.IntRange(1, 1_000_000))
	}, reflect.TypeOf([]int{}))
}

func itemsFromCosts(costs []int) []models.PortfolioItem {
	sectors := []string{"Technology", "Healthcare", "Energy"}
	items := make([]models.PortfolioItem, len(costs))
	for i, c := range costs {
		items[i] = item("T"+strconv.Itoa(i), sectors[i%len(sectors)], "10", "12", strconv.Itoa(c))
	}
	return items
}

func TestProperty_AllocationsSumToHundred(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("allocations sum to 100 within rounding", prop.ForAll(
		func(costs []int) bool {
			ov := BuildOverview(itemsFromCosts(costs))
			sum := decimal.Zero
			for _, h := range ov.Holdings {
				if h.Allocation.Indeterminate {
					return false
				}
				sum = sum.Add(h.Allocation.Value)
			}
			tolerance := decimal.NewFromFloat(0.005).Mul(decimal.NewFromInt(int64(len(costs))))
			return sum.Sub(hundred).Abs().LessThanOrEqual(tolerance)
		},
		costsGen(),
	))

	properties.Property("sector costs add up to the total", prop.ForAll(
		func(costs []int) bool {
			ov := BuildOverview(itemsFromCosts(costs))
			sum := decimal.Zero
			for _, s := range ov.Sectors {
				sum = sum.Add(s.Cost)
			}
			return sum.Equal(ov.TotalCost) && len(ov.Sectors) == min(len(costs), 3)
		},
		costsGen(),
	))

	properties.TestingRun(t)
}
