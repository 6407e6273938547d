// Package store provides the two whole-value slots that hold the last
// upload and the last analysis result.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/models"
)

// Slot names a persisted value.
type Slot string

const (
	// SlotHoldings holds the mapped portfolio items as a JSON array.
	SlotHoldings Slot = "parsedData"
	// SlotAnalysis holds the last analysis result as a JSON object.
	SlotAnalysis Slot = "analysisResult"
)

// Slots lists every slot the application writes.
var Slots = []Slot{SlotHoldings, SlotAnalysis}

// Store reads and writes slot values. Put replaces the entire value; there
// is no merge. Get returns apperrors.ErrSlotEmpty for a slot never written
// or cleared.
type Store interface {
	Put(ctx context.Context, slot Slot, value []byte) error
	Get(ctx context.Context, slot Slot) ([]byte, error)
	Clear(ctx context.Context, slot Slot) error
	// UpdatedAt returns when slot was last written, or the zero time when
	// it is empty.
	UpdatedAt(ctx context.Context, slot Slot) time.Time
	Close() error
}

// SaveHoldings persists items to the holdings slot.
func SaveHoldings(ctx context.Context, s Store, items []models.PortfolioItem) error {
	if items == nil {
		items = []models.PortfolioItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode holdings: %w", err)
	}
	return s.Put(ctx, SlotHoldings, data)
}

// LoadHoldings reads the holdings slot. An empty slot yields an empty list.
func LoadHoldings(ctx context.Context, s Store) ([]models.PortfolioItem, error) {
	data, err := s.Get(ctx, SlotHoldings)
	if apperrors.Is(err, apperrors.ErrSlotEmpty) {
		return []models.PortfolioItem{}, nil
	}
	if err != nil {
		return nil, err
	}
	var items []models.PortfolioItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode holdings: %w", err)
	}
	return items, nil
}

// SaveAnalysis persists result to the analysis slot.
func SaveAnalysis(ctx context.Context, s Store, result *models.AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}
	return s.Put(ctx, SlotAnalysis, data)
}

// LoadAnalysis reads the analysis slot. An empty slot yields
// apperrors.ErrNoAnalysis.
func LoadAnalysis(ctx context.Context, s Store) (*models.AnalysisResult, error) {
	data, err := s.Get(ctx, SlotAnalysis)
	if apperrors.Is(err, apperrors.ErrSlotEmpty) {
		return nil, apperrors.ErrNoAnalysis
	}
	if err != nil {
		return nil, err
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	return &result, nil
}

// ClearAll empties every slot.
func ClearAll(ctx context.Context, s Store) error {
	for _, slot := range Slots {
		if err := s.Clear(ctx, slot); err != nil {
			return err
		}
	}
	return nil
}
