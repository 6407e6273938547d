package presenter

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/models"
	"portfolio-analyzer/internal/store"
)

func item(ticker, sector, purchase, current, cost string) models.PortfolioItem {
	return models.PortfolioItem{
		models.FieldTicker:        ticker,
		models.FieldAssetName:     ticker + " Inc",
		models.FieldQuantity:      "10",
		models.FieldPurchasePrice: purchase,
		models.FieldCurrentPrice:  current,
		models.FieldPurchaseDate:  "2023-01-15",
		models.FieldSector:        sector,
		models.FieldCurrency:      "USD",
		models.FieldDividendYield: "0.5",
		models.FieldTotalCost:     cost,
	}
}

func TestBuildOverview_SingleSectorIsWholePortfolio(t *testing.T) {
	ov := BuildOverview([]models.PortfolioItem{
		item("AAPL", "Technology", "150", "175", "1500"),
		item("MSFT", "Technology", "300", "330", "3000"),
	})

	require.Len(t, ov.Sectors, 1)
	assert.Equal(t, "Technology", ov.Sectors[0].Sector)
	assert.Equal(t, "100.00%", ov.Sectors[0].Share.String())
	assert.Equal(t, "4500", ov.TotalCost.String())
	assert.Equal(t, "USD", ov.Currency)
	assert.Empty(t, ov.Warnings)
}

func TestBuildOverview_AllocationAndSectorSplit(t *testing.T) {
	ov := BuildOverview([]models.PortfolioItem{
		item("JNJ", "Healthcare", "160", "150", "1000"),
		item("AAPL", "Technology", "100", "110", "3000"),
	})

	require.Len(t, ov.Holdings, 2)
	assert.Equal(t, "25.00%", ov.Holdings[0].Allocation.String())
	assert.Equal(t, "75.00%", ov.Holdings[1].Allocation.String())

	assert.Equal(t, "-6.25%", ov.Holdings[0].Performance.Signed())
	assert.Equal(t, "+10.00%", ov.Holdings[1].Performance.Signed())

	// First-appearance order.
	require.Len(t, ov.Sectors, 2)
	assert.Equal(t, "Healthcare", ov.Sectors[0].Sector)
	assert.Equal(t, "25.00%", ov.Sectors[0].Share.String())
	assert.Equal(t, "Technology", ov.Sectors[1].Sector)
	assert.Equal(t, "75.00%", ov.Sectors[1].Share.String())
}

func TestBuildOverview_RoundsToTwoPlaces(t *testing.T) {
	ov := BuildOverview([]models.PortfolioItem{
		item("A", "X", "3", "4", "1"),
		item("B", "Y", "3", "4", "1"),
		item("C", "Z", "3", "4", "1"),
	})
	assert.True(t, ov.Holdings[0].Allocation.Value.Equal(decimal.RequireFromString("33.33")))
	assert.Equal(t, "33.33%", ov.Holdings[0].Performance.String())
}

func TestBuildOverview_IndeterminateValues(t *testing.T) {
	ov := BuildOverview([]models.PortfolioItem{
		item("ZERO", "Tech", "0", "10", "100"),
		item("TEXT", "Tech", "abc", "10", "n/a"),
	})

	assert.True(t, ov.Holdings[0].Performance.Indeterminate)
	assert.Equal(t, "n/a", ov.Holdings[0].Performance.String())
	assert.Equal(t, "100.00%", ov.Holdings[0].Allocation.String())

	assert.True(t, ov.Holdings[1].Performance.Indeterminate)
	assert.True(t, ov.Holdings[1].Allocation.Indeterminate)
	assert.False(t, ov.Holdings[1].CostValid)
	assert.True(t, ov.Holdings[1].Allocation.Value.IsZero())

	assert.Equal(t, "100", ov.TotalCost.String())
	require.Len(t, ov.Warnings, 1)
	assert.Contains(t, ov.Warnings[0], "row 3 (TEXT)")
}

func TestBuildOverview_ZeroTotalCost(t *testing.T) {
	ov := BuildOverview([]models.PortfolioItem{item("A", "Tech", "1", "1", "0")})
	assert.True(t, ov.Holdings[0].Allocation.Indeterminate)
	assert.True(t, ov.Sectors[0].Share.Indeterminate)
}

func TestBuildOverview_Empty(t *testing.T) {
	ov := BuildOverview(nil)
	assert.Empty(t, ov.Holdings)
	assert.Empty(t, ov.Sectors)
	assert.True(t, ov.TotalCost.IsZero())
	assert.Empty(t, ov.Currency)
}

func TestBuildOverview_MixedCurrencies(t *testing.T) {
	eur := item("SAP", "Tech", "100", "120", "500")
	eur[models.FieldCurrency] = "EUR"
	ov := BuildOverview([]models.PortfolioItem{item("AAPL", "Tech", "1", "2", "500"), eur})
	assert.Empty(t, ov.Currency)
	assert.Len(t, ov.Warnings, 1)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(decimal.RequireFromString("1234.5"), "usd"))
	assert.Equal(t, "1,234.50 XYZ", FormatMoney(decimal.RequireFromString("1234.5"), "XYZ"))
	assert.Equal(t, "1,234.50", FormatMoney(decimal.RequireFromString("1234.5"), ""))
}

func sampleResult() *models.AnalysisResult {
	beta := 1.08
	out := 3.2
	return &models.AnalysisResult{
		OverallScore:              78,
		OverallAnalysis:           "Solid diversification.",
		TotalReturn:               18.4,
		BenchmarkOutperformance:   &out,
		TopPerformer:              models.Performer{Ticker: "NVDA", Name: "NVIDIA Corporation"},
		Underperformer:            models.Performer{Ticker: "INTC", Name: "Intel Corporation"},
		Volatility:                "Moderate",
		Anomaly:                   "None",
		PotentialImprovementScore: 12,
		SharpeRatio:               1.35,
		SortinoRatio:              1.8,
		MaxDrawdown:               -14.2,
		PortfolioCAGR:             11.7,
		PortfolioBeta:             &beta,
	}
}

func cardTitles(s Section) []string {
	titles := make([]string, len(s.Cards))
	for i, c := range s.Cards {
		titles[i] = c.Title
	}
	return titles
}

func TestBuildCards(t *testing.T) {
	sections := BuildCards(sampleResult())
	require.Len(t, sections, 3)

	overall, ok := FindSection(sections, SectionOverall)
	require.True(t, ok)
	assert.Equal(t, "78%", overall.Cards[0].Value)
	assert.Equal(t, "+12%", overall.Cards[1].Value)

	perf, _ := FindSection(sections, SectionPerformance)
	assert.Equal(t, []string{"Performance Overview", "Total Return", "Sharpe Ratio (1 Year)", "Top Performer", "Underperformer", "CAGR"}, cardTitles(perf))
	assert.Equal(t, "+18.40%", perf.Cards[1].Value)
	assert.Equal(t, "Your portfolio has outperformed the benchmark by 3.20%", perf.Cards[1].Description)
	assert.Equal(t, "1.35", perf.Cards[2].Value)
	assert.Equal(t, "NVDA", perf.Cards[3].Value)
	assert.Contains(t, perf.Cards[4].Description, "Intel Corporation")

	risk, _ := FindSection(sections, SectionRisk)
	assert.Equal(t, []string{"Volatility", "Anomaly", "Sortino Ratio (1 Year)", "Max Drawdown (1 Year)", "Portfolio Beta"}, cardTitles(risk))
	assert.Equal(t, "-14.20%", risk.Cards[3].Value)
	assert.Equal(t, "1.08", risk.Cards[4].Value)

	_, ok = FindSection(sections, "bogus")
	assert.False(t, ok)
}

func TestBuildCards_OptionalFieldsAbsent(t *testing.T) {
	r := sampleResult()
	r.PortfolioBeta = nil
	r.BenchmarkOutperformance = nil

	sections := BuildCards(r)
	risk, _ := FindSection(sections, SectionRisk)
	assert.Len(t, risk.Cards, 4)
	perf, _ := FindSection(sections, SectionPerformance)
	assert.Empty(t, perf.Cards[1].Description)
}

func TestRenderSectorChart(t *testing.T) {
	ov := BuildOverview([]models.PortfolioItem{
		item("JNJ", "Healthcare", "160", "150", "1000"),
		item("AAPL", "Technology", "100", "110", "3000"),
	})
	var buf bytes.Buffer
	require.NoError(t, RenderSectorChart(ov, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	assert.ErrorIs(t, RenderSectorChart(BuildOverview(nil), &bytes.Buffer{}), ErrNothingToChart)
}

func TestExportHoldings(t *testing.T) {
	ov := BuildOverview([]models.PortfolioItem{
		item("JNJ", "Healthcare", "160", "150", "1000"),
		item("BAD", "Technology", "0", "110", "oops"),
	})
	var buf bytes.Buffer
	require.NoError(t, ExportHoldings(ov, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Ticker,Asset Name,Sector,Currency,Quantity,Purchase Price,Current Price,Total Cost,Allocation (%),Performance (%)", lines[0])
	assert.Equal(t, "JNJ,JNJ Inc,Healthcare,USD,10,160,150,1000.00,100.00,-6.25", lines[1])
	assert.Equal(t, "BAD,BAD Inc,Technology,USD,10,0,110,,,", lines[2])
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	report, err := Load(ctx, s)
	assert.ErrorIs(t, err, apperrors.ErrNoAnalysis)
	require.NotNil(t, report)
	assert.Empty(t, report.Overview.Holdings)
	assert.Nil(t, report.Result)

	require.NoError(t, store.SaveHoldings(ctx, s, []models.PortfolioItem{item("AAPL", "Tech", "1", "2", "10")}))
	require.NoError(t, store.SaveAnalysis(ctx, s, sampleResult()))

	report, err = Load(ctx, s)
	require.NoError(t, err)
	assert.Len(t, report.Overview.Holdings, 1)
	assert.Equal(t, "NVDA", report.Result.TopPerformer.Ticker)
	assert.False(t, report.AnalyzedAt.IsZero())
}
