package analyzer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/models"
)

// DecodeResult parses and validates an analysis response body. Anything that
// is not a JSON object carrying every required field with a sensible value
// is a DeserializationError.
func DecodeResult(body []byte) (*models.AnalysisResult, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, apperrors.NewDeserializationError("empty response body", nil, nil)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewDeserializationError("response is not a JSON object", nil, err)
	}

	var missing []string
	for _, field := range models.RequiredAnalysisFields {
		v, ok := raw[field]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewDeserializationError("missing required fields", missing, nil)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		var fields []string
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			fields = []string{typeErr.Field}
		}
		return nil, apperrors.NewDeserializationError("field has the wrong type", fields, err)
	}

	if invalid := Validate(&result); len(invalid) > 0 {
		return nil, apperrors.NewDeserializationError("fields out of range", invalid, nil)
	}
	return &result, nil
}

// Validate returns the names of fields whose values break the result's
// invariants.
func Validate(r *models.AnalysisResult) []string {
	var invalid []string
	if r.OverallScore < 0 || r.OverallScore > 100 {
		invalid = append(invalid, "overall_score")
	}
	if r.PotentialImprovementScore < 0 || r.PotentialImprovementScore > 100 {
		invalid = append(invalid, "potential_improvement_score")
	}
	if strings.TrimSpace(r.TopPerformer.Ticker) == "" {
		invalid = append(invalid, "top_performer.ticker")
	}
	if strings.TrimSpace(r.Underperformer.Ticker) == "" {
		invalid = append(invalid, "underperformer.ticker")
	}
	return invalid
}

