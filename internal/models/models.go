// Package models provides domain models for the portfolio upload pipeline.
package models

import (
	"fmt"
	"sort"
	"strings"
)

// Grid is a rectangular-ish table of string cells. Row 0 is the header.
type Grid [][]string

// Head returns at most the first n rows of the grid.
func (g Grid) Head(n int) Grid {
	if n < 0 {
		n = 0
	}
	if n > len(g) {
		n = len(g)
	}
	return g[:n]
}

// Header returns row 0, or nil for an empty grid.
func (g Grid) Header() []string {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// Rows returns the data rows (everything after the header).
func (g Grid) Rows() [][]string {
	if len(g) < 2 {
		return nil
	}
	return g[1:]
}

// Record maps header names to raw cell values.
type Record map[string]string

// Get returns the value for field and whether it is present.
func (r Record) Get(field string) (string, bool) {
	v, ok := r[field]
	return v, ok
}

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Portfolio CSV column names.
const (
	FieldTicker        = "Ticker"
	FieldAssetName     = "Asset Name"
	FieldQuantity      = "Quantity"
	FieldPurchasePrice = "Purchase Price"
	FieldCurrentPrice  = "Current Price"
	FieldPurchaseDate  = "Purchase Date"
	FieldSector        = "Sector"
	FieldCurrency      = "Currency"
	FieldDividendYield = "Dividend Yield"
	FieldTotalCost     = "Total Cost"
)

// PortfolioFields is the exact header set a holdings file must carry.
var PortfolioFields = []string{
	FieldTicker,
	FieldAssetName,
	FieldQuantity,
	FieldPurchasePrice,
	FieldCurrentPrice,
	FieldPurchaseDate,
	FieldSector,
	FieldCurrency,
	FieldDividendYield,
	FieldTotalCost,
}

// PortfolioItem is one holding row. Values stay as strings; numeric fields
// are parsed by the presenter when needed.
type PortfolioItem Record

// NewPortfolioItem builds an item from a record, copying its values.
func NewPortfolioItem(r Record) PortfolioItem {
	item := make(PortfolioItem, len(r))
	for k, v := range r {
		item[k] = v
	}
	return item
}

// Get returns the value for field and whether it is present.
func (p PortfolioItem) Get(field string) (string, bool) {
	return Record(p).Get(field)
}

// Value returns the value for field, or "" if absent.
func (p PortfolioItem) Value(field string) string {
	return p[field]
}

func (p PortfolioItem) Ticker() string    { return p[FieldTicker] }
func (p PortfolioItem) AssetName() string { return p[FieldAssetName] }
func (p PortfolioItem) Sector() string    { return p[FieldSector] }
func (p PortfolioItem) Currency() string  { return p[FieldCurrency] }

// Strategy is the investment strategy sent with a submission.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyBalanced     Strategy = "balanced"
	StrategyAggressive   Strategy = "aggressive"
)

// Strategies lists the accepted strategy values.
var Strategies = []Strategy{StrategyConservative, StrategyBalanced, StrategyAggressive}

// ParseStrategy parses a strategy name case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	v := Strategy(strings.ToLower(strings.TrimSpace(s)))
	if v.Valid() {
		return v, nil
	}
	return "", fmt.Errorf("unknown investment strategy %q (want conservative, balanced or aggressive)", s)
}

// Valid reports whether s is one of the accepted strategies.
func (s Strategy) Valid() bool {
	for _, v := range Strategies {
		if s == v {
			return true
		}
	}
	return false
}

// SubmitOptions are the user choices sent alongside the uploaded file.
type SubmitOptions struct {
	SecurityMode      bool
	Strategy          Strategy
	ReferenceInvestor string
}

// Performer identifies a holding singled out by the analysis.
type Performer struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// AnalysisResult is the payload returned by the analysis service.
type AnalysisResult struct {
	OverallScore              float64   `json:"overall_score"`
	OverallAnalysis           string    `json:"overall_analysis"`
	TotalReturn               float64   `json:"total_return"`
	BenchmarkOutperformance   *float64  `json:"benchmark_outperformance"`
	TopPerformer              Performer `json:"top_performer"`
	Underperformer            Performer `json:"underperformer"`
	Volatility                string    `json:"volatility"`
	VolatilityExplanation     string    `json:"volatility_explanation"`
	PortfolioBeta             *float64  `json:"portfolio_beta,omitempty"`
	Anomaly                   string    `json:"anomaly"`
	AnomalyExplanation        string    `json:"anomaly_explanation"`
	PortfolioSuggestion       string    `json:"portfolio_suggestion"`
	PotentialImprovementScore float64   `json:"potential_improvement_score"`
	SharpeRatio               float64   `json:"sharp_ratio"`
	SharpeRatioExplanation    string    `json:"sharp_ratio_explanation"`
	SortinoRatio              float64   `json:"sortino_ratio"`
	SortinoRatioExplanation   string    `json:"sortino_ratio_explanation"`
	MaxDrawdown               float64   `json:"max_drawdown"`
	MaxDrawdownExplanation    string    `json:"max_drawdown_explanation"`
	PerformanceOverview       string    `json:"performance_overview"`
	PortfolioCAGR             float64   `json:"portfolio_cagr"`
	PortfolioCAGRExplanation  string    `json:"portfolio_cagr_explanation"`
}

// RequiredAnalysisFields are the JSON keys that must be present in every
// analysis response.
var RequiredAnalysisFields = []string{
	"overall_score",
	"overall_analysis",
	"total_return",
	"top_performer",
	"underperformer",
	"volatility",
	"volatility_explanation",
	"anomaly",
	"anomaly_explanation",
	"portfolio_suggestion",
	"potential_improvement_score",
	"sharp_ratio",
	"sharp_ratio_explanation",
	"sortino_ratio",
	"sortino_ratio_explanation",
	"max_drawdown",
	"max_drawdown_explanation",
	"performance_overview",
	"portfolio_cagr",
	"portfolio_cagr_explanation",
}

