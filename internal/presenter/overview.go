// Package presenter turns stored holdings and analysis results into the
// views shown to the user: allocation, performance, sector shares, analysis
// cards, a sector chart and a CSV export.
package presenter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/models"
	"portfolio-analyzer/internal/store"
	"portfolio-analyzer/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// Percent is a derived percentage. Indeterminate is set when the value
// could not be computed (zero divisor or a non-numeric input); Value is
// then zero.
type Percent struct {
	Value         decimal.Decimal
	Indeterminate bool
}

func indeterminate() Percent { return Percent{Value: decimal.Zero, Indeterminate: true} }

// String renders the percentage to two places, or "n/a".
func (p Percent) String() string {
	if p.Indeterminate {
		return "n/a"
	}
	return utils.FormatDecimalPercent(p.Value, false)
}

// Signed renders like String but prefixes gains with "+".
func (p Percent) Signed() string {
	if p.Indeterminate {
		return "n/a"
	}
	return utils.FormatDecimalPercent(p.Value, true)
}

// Float returns the value as a float64.
func (p Percent) Float() float64 {
	f, _ := p.Value.Float64()
	return f
}

// HoldingView is one holding with its derived allocation and performance.
type HoldingView struct {
	Ticker        string
	AssetName     string
	Sector        string
	Currency      string
	Quantity      string
	PurchasePrice string
	CurrentPrice  string
	PurchaseDate  string
	DividendYield string
	TotalCost     decimal.Decimal
	CostValid     bool
	Allocation    Percent
	Performance   Percent
}

// SectorShare is the share of total cost held in one sector.
type SectorShare struct {
	Sector string
	Cost   decimal.Decimal
	Share  Percent
}

// Overview is the derived holdings view.
type Overview struct {
	Holdings  []HoldingView
	Sectors   []SectorShare
	TotalCost decimal.Decimal
	// Currency is the common currency of all holdings, or "" when mixed.
	Currency string
	Warnings []string
}

// Report bundles everything read from the store.
type Report struct {
	Overview *Overview
	Result   *models.AnalysisResult
	// AnalyzedAt is when the analysis slot was last written.
	AnalyzedAt time.Time
}

// Load reads both slots and builds the overview. An empty holdings slot
// yields an empty overview; an empty analysis slot returns ErrNoAnalysis
// alongside the overview.
func Load(ctx context.Context, s store.Store) (*Report, error) {
	items, err := store.LoadHoldings(ctx, s)
	if err != nil {
		return nil, err
	}
	report := &Report{Overview: BuildOverview(items)}

	result, err := store.LoadAnalysis(ctx, s)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNoAnalysis) {
			return report, err
		}
		return nil, err
	}
	report.Result = result
	report.AnalyzedAt = s.UpdatedAt(ctx, store.SlotAnalysis)
	return report, nil
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ratio returns num/den*100 rounded to two places.
func ratio(num, den decimal.Decimal) Percent {
	if den.IsZero() {
		return indeterminate()
	}
	return Percent{Value: num.Div(den).Mul(hundred).Round(2)}
}

// BuildOverview derives allocation, performance and sector shares from the
// holdings. Values are recomputed on every call.
func BuildOverview(items []models.PortfolioItem) *Overview {
	ov := &Overview{
		Holdings:  make([]HoldingView, 0, len(items)),
		TotalCost: decimal.Zero,
	}

	currencies := make(map[string]bool)
	for i, item := range items {
		h := HoldingView{
			Ticker:        item.Ticker(),
			AssetName:     item.AssetName(),
			Sector:        item.Sector(),
			Currency:      item.Currency(),
			Quantity:      item.Value(models.FieldQuantity),
			PurchasePrice: item.Value(models.FieldPurchasePrice),
			CurrentPrice:  item.Value(models.FieldCurrentPrice),
			PurchaseDate:  item.Value(models.FieldPurchaseDate),
			DividendYield: item.Value(models.FieldDividendYield),
		}

		h.TotalCost, h.CostValid = parseDecimal(item.Value(models.FieldTotalCost))
		if h.CostValid {
			ov.TotalCost = ov.TotalCost.Add(h.TotalCost)
		} else {
			ov.Warnings = append(ov.Warnings, fmt.Sprintf("row %d (%s): total cost %q is not a number and is excluded from totals",
				i+2, h.Ticker, item.Value(models.FieldTotalCost)))
		}

		purchase, okP := parseDecimal(h.PurchasePrice)
		current, okC := parseDecimal(h.CurrentPrice)
		if okP && okC {
			h.Performance = ratio(current.Sub(purchase), purchase)
		} else {
			h.Performance = indeterminate()
		}

		if h.Currency != "" {
			currencies[strings.ToUpper(h.Currency)] = true
		}
		ov.Holdings = append(ov.Holdings, h)
	}

	for i := range ov.Holdings {
		h := &ov.Holdings[i]
		if !h.CostValid {
			h.Allocation = indeterminate()
			continue
		}
		h.Allocation = ratio(h.TotalCost, ov.TotalCost)
	}

	ov.Sectors = sectorShares(ov.Holdings, ov.TotalCost)

	switch len(currencies) {
	case 0:
	case 1:
		for c := range currencies {
			ov.Currency = c
		}
	default:
		ov.Warnings = append(ov.Warnings, "holdings span several currencies; totals are not converted")
	}
	return ov
}

// sectorShares aggregates cost per sector in first-appearance order.
func sectorShares(holdings []HoldingView, total decimal.Decimal) []SectorShare {
	index := make(map[string]int)
	var shares []SectorShare
	for _, h := range holdings {
		if !h.CostValid {
			continue
		}
		i, ok := index[h.Sector]
		if !ok {
			i = len(shares)
			index[h.Sector] = i
			shares = append(shares, SectorShare{Sector: h.Sector, Cost: decimal.Zero})
		}
		shares[i].Cost = shares[i].Cost.Add(h.TotalCost)
	}
	for i := range shares {
		shares[i].Share = ratio(shares[i].Cost, total)
	}
	return shares
}
