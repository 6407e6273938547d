package ingest

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/models"
)

// RaggedPolicy decides what happens to data rows whose width differs from
// the header.
type RaggedPolicy string

const (
	// RaggedReject fails the whole mapping when any row is ragged.
	RaggedReject RaggedPolicy = "reject"
	// RaggedPad fills missing trailing cells with "" and drops surplus cells.
	RaggedPad RaggedPolicy = "pad"
)

// ParseRaggedPolicy parses a policy name. Empty means reject.
func ParseRaggedPolicy(s string) (RaggedPolicy, error) {
	switch RaggedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RaggedReject:
		return RaggedReject, nil
	case RaggedPad:
		return RaggedPad, nil
	}
	return "", fmt.Errorf("unknown ragged row policy %q (want reject or pad)", s)
}

// Mapper converts a grid into records keyed by the header row.
type Mapper struct {
	Policy RaggedPolicy
	Logger zerolog.Logger
}

// NewMapper creates a mapper with the given policy.
func NewMapper(policy RaggedPolicy, logger zerolog.Logger) *Mapper {
	return &Mapper{Policy: policy, Logger: logger}
}

// Map treats row 0 as field names and returns one record per data row, in
// row order. Source row numbers in errors and log entries are 1-based and
// count the header as row 1.
func (m *Mapper) Map(grid models.Grid) ([]models.Record, error) {
	if len(grid) == 0 {
		return nil, &apperrors.MappingError{Message: "missing header row"}
	}
	header := grid.Header()
	rows := grid.Rows()

	if m.Policy != RaggedPad {
		var ragged []int
		for i, row := range rows {
			if len(row) != len(header) {
				ragged = append(ragged, i+2)
			}
		}
		if len(ragged) > 0 {
			return nil, &apperrors.MappingError{
				Message: fmt.Sprintf("%d row(s) do not match the %d header columns", len(ragged), len(header)),
				Rows:    ragged,
			}
		}
	}

	records := make([]models.Record, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(header) {
			m.Logger.Warn().
				Int("row", i+2).
				Int("cells", len(row)).
				Int("columns", len(header)).
				Msg("Ragged row padded to header width")
		}
		rec := make(models.Record, len(header))
		for j, field := range header {
			if j < len(row) {
				rec[field] = row[j]
			} else {
				rec[field] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// ValidateHeader checks header against the expected field set. Order does
// not matter; missing, unexpected and duplicate names are all reported.
func ValidateHeader(header []string, expected []string) error {
	want := make(map[string]bool, len(expected))
	for _, f := range expected {
		want[f] = true
	}

	seen := make(map[string]bool, len(header))
	var unexpected, duplicate []string
	for _, h := range header {
		if seen[h] {
			duplicate = append(duplicate, h)
			continue
		}
		seen[h] = true
		if !want[h] {
			unexpected = append(unexpected, h)
		}
	}

	var missing []string
	for _, f := range expected {
		if !seen[f] {
			missing = append(missing, f)
		}
	}

	if len(missing) == 0 && len(unexpected) == 0 && len(duplicate) == 0 {
		return nil
	}
	return &apperrors.MappingError{
		Message:    "header does not match the portfolio layout",
		Missing:    missing,
		Unexpected: unexpected,
		Duplicate:  duplicate,
	}
}

// ToPortfolio converts mapped records into portfolio items.
func ToPortfolio(records []models.Record) []models.PortfolioItem {
	items := make([]models.PortfolioItem, len(records))
	for i, r := range records {
		items[i] = models.NewPortfolioItem(r)
	}
	return items
}

// MapPortfolio validates the header against the portfolio layout and maps
// the grid into portfolio items.
func (m *Mapper) MapPortfolio(grid models.Grid) ([]models.PortfolioItem, error) {
	if len(grid) == 0 {
		return nil, &apperrors.MappingError{Message: "missing header row"}
	}
	if err := ValidateHeader(grid.Header(), models.PortfolioFields); err != nil {
		return nil, err
	}
	records, err := m.Map(grid)
	if err != nil {
		return nil, err
	}
	return ToPortfolio(records), nil
}
