// Package ingest turns uploaded holdings text into a grid of cells and then
// into keyed records.
package ingest

import (
	"strings"

	"portfolio-analyzer/internal/models"
)

// DefaultDelimiter separates cells in an uploaded file.
const DefaultDelimiter = ","

// Parser splits delimited text into a grid. It does not understand quoting:
// a delimiter inside a quoted field still splits the field.
type Parser struct {
	Delimiter string
}

// NewParser returns a parser using the comma delimiter.
func NewParser() *Parser {
	return &Parser{Delimiter: DefaultDelimiter}
}

// Parse splits text into lines, drops whitespace-only lines, then splits
// each line on the delimiter and trims every cell. Ragged rows are returned
// as-is; Parse never fails.
func (p *Parser) Parse(text string) models.Grid {
	delim := p.delimiter()
	grid := models.Grid{}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, delim)
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
		}
		grid = append(grid, cells)
	}
	return grid
}

// Join serialises a grid back to text, one row per line.
func (p *Parser) Join(grid models.Grid) string {
	delim := p.delimiter()
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = strings.Join(row, delim)
	}
	return strings.Join(lines, "\n")
}

func (p *Parser) delimiter() string {
	if p == nil || p.Delimiter == "" {
		return DefaultDelimiter
	}
	return p.Delimiter
}

// Parse parses text with the default comma delimiter.
func Parse(text string) models.Grid {
	return NewParser().Parse(text)
}

// Join joins a grid with the default comma delimiter.
func Join(grid models.Grid) string {
	return NewParser().Join(grid)
}
