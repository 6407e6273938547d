package presenter

import (
	"io"

	"github.com/gocarina/gocsv"
)

// holdingRow is the CSV shape of an exported holding.
type holdingRow struct {
	Ticker        string `csv:"Ticker"`
	AssetName     string `csv:"Asset Name"`
	Sector        string `csv:"Sector"`
	Currency      string `csv:"Currency"`
	Quantity      string `csv:"Quantity"`
	PurchasePrice string `csv:"Purchase Price"`
	CurrentPrice  string `csv:"Current Price"`
	TotalCost     string `csv:"Total Cost"`
	Allocation    string `csv:"Allocation (%)"`
	Performance   string `csv:"Performance (%)"`
}

func percentCell(p Percent) string {
	if p.Indeterminate {
		return ""
	}
	return p.Value.StringFixed(2)
}

// ExportHoldings writes the holdings view as CSV. Indeterminate
// percentages and non-numeric costs are written as empty cells.
func ExportHoldings(ov *Overview, w io.Writer) error {
	rows := make([]*holdingRow, 0, len(ov.Holdings))
	for _, h := range ov.Holdings {
		cost := ""
		if h.CostValid {
			cost = h.TotalCost.StringFixed(2)
		}
		rows = append(rows, &holdingRow{
			Ticker:        h.Ticker,
			AssetName:     h.AssetName,
			Sector:        h.Sector,
			Currency:      h.Currency,
			Quantity:      h.Quantity,
			PurchasePrice: h.PurchasePrice,
			CurrentPrice:  h.CurrentPrice,
			TotalCost:     cost,
			Allocation:    percentCell(h.Allocation),
			Performance:   percentCell(h.Performance),
		})
	}
	return gocsv.Marshal(&rows, w)
}
