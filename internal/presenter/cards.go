package presenter

import (
	"fmt"
	"math"

	"portfolio-analyzer/internal/models"
	"portfolio-analyzer/pkg/utils"
)

// Section keys, matching the report --section flag.
const (
	SectionOverall     = "overall"
	SectionPerformance = "performance"
	SectionRisk        = "risk"
)

// SectionKeys lists the sections in display order.
var SectionKeys = []string{SectionOverall, SectionPerformance, SectionRisk}

// Tone hints how a card value should be coloured.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

// Card is a single labelled figure of the analysis.
type Card struct {
	Title       string `json:"title"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Tone        Tone   `json:"-"`
}

// Section groups cards under one tab of the report.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

func toneOf(v float64) Tone {
	switch {
	case v > 0:
		return TonePositive
	case v < 0:
		return ToneNegative
	}
	return ToneNeutral
}

// BuildCards lays out an analysis result as the overall, performance and
// risk sections.
func BuildCards(r *models.AnalysisResult) []Section {
	return []Section{
		overallSection(r),
		performanceSection(r),
		riskSection(r),
	}
}

// FindSection returns the section with the given key.
func FindSection(sections []Section, key string) (Section, bool) {
	for _, s := range sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

func overallSection(r *models.AnalysisResult) Section {
	return Section{
		Key:   SectionOverall,
		Title: "Overall",
		Cards: []Card{
			{
				Title:       "Overall Portfolio Score",
				Value:       utils.FormatScore(r.OverallScore),
				Description: r.OverallAnalysis,
			},
			{
				Title:       "Portfolio Suggestion",
				Value:       "+" + utils.FormatScore(r.PotentialImprovementScore),
				Description: r.PortfolioSuggestion,
				Tone:        TonePositive,
			},
		},
	}
}

func performanceSection(r *models.AnalysisResult) Section {
	return Section{
		Key:   SectionPerformance,
		Title: "Performance",
		Cards: []Card{
			{
				Title:       "Performance Overview",
				Description: r.PerformanceOverview,
			},
			{
				Title:       "Total Return",
				Value:       utils.FormatPercent(r.TotalReturn),
				Description: benchmarkText(r.BenchmarkOutperformance),
				Tone:        toneOf(r.TotalReturn),
			},
			{
				Title:       "Sharpe Ratio (1 Year)",
				Value:       utils.FormatRatio(r.SharpeRatio),
				Description: r.SharpeRatioExplanation,
			},
			{
				Title:       "Top Performer",
				Value:       r.TopPerformer.Ticker,
				Description: fmt.Sprintf("%s has the highest return in your portfolio.", r.TopPerformer.Name),
				Tone:        TonePositive,
			},
			{
				Title:       "Underperformer",
				Value:       r.Underperformer.Ticker,
				Description: fmt.Sprintf("%s is currently underperforming. Consider reviewing.", r.Underperformer.Name),
				Tone:        ToneNegative,
			},
			{
				Title:       "CAGR",
				Value:       utils.FormatPercent(r.PortfolioCAGR),
				Description: r.PortfolioCAGRExplanation,
				Tone:        toneOf(r.PortfolioCAGR),
			},
		},
	}
}

func riskSection(r *models.AnalysisResult) Section {
	cards := []Card{
		{Title: "Volatility", Value: r.Volatility, Description: r.VolatilityExplanation},
		{Title: "Anomaly", Value: r.Anomaly, Description: r.AnomalyExplanation},
		{
			Title:       "Sortino Ratio (1 Year)",
			Value:       utils.FormatRatio(r.SortinoRatio),
			Description: r.SortinoRatioExplanation,
		},
		{
			Title:       "Max Drawdown (1 Year)",
			Value:       utils.FormatPercent(-math.Abs(r.MaxDrawdown)),
			Description: r.MaxDrawdownExplanation,
			Tone:        ToneNegative,
		},
	}
	if r.PortfolioBeta != nil {
		cards = append(cards, Card{
			Title:       "Portfolio Beta",
			Value:       utils.FormatRatio(*r.PortfolioBeta),
			Description: "Sensitivity of the portfolio to moves in the benchmark.",
		})
	}
	return Section{Key: SectionRisk, Title: "Risk", Cards: cards}
}

func benchmarkText(outperformance *float64) string {
	if outperformance == nil {
		return ""
	}
	v := *outperformance
	if v < 0 {
		return fmt.Sprintf("Your portfolio has underperformed the benchmark by %.2f%%", -v)
	}
	return fmt.Sprintf("Your portfolio has outperformed the benchmark by %.2f%%", v)
}
