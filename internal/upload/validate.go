package upload

import (
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/models"
)

// MaxReferenceInvestorLen caps the free-text reference investor, in runes.
const MaxReferenceInvestorLen = 100

// normalizeOptions fills the default strategy and trims the reference
// investor, rejecting values the service should never see.
func (o *Orchestrator) normalizeOptions(opts models.SubmitOptions) (models.SubmitOptions, error) {
	if opts.Strategy == "" {
		opts.Strategy = o.opts.DefaultStrategy
	}
	if !opts.Strategy.Valid() {
		return opts, apperrors.NewValidationError(apperrors.FieldStrategy, opts.Strategy, "must be conservative, balanced or aggressive")
	}

	name := strings.TrimSpace(opts.ReferenceInvestor)
	if err := ValidateReferenceInvestor(name); err != nil {
		return opts, err
	}
	opts.ReferenceInvestor = name
	return opts, nil
}

// ValidateReferenceInvestor checks the optional reference investor name.
// Empty is allowed.
func ValidateReferenceInvestor(name string) error {
	if utf8.RuneCountInString(name) > MaxReferenceInvestorLen {
		return apperrors.NewValidationError(apperrors.FieldReferenceInvestor, name, "too long (max 100 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return apperrors.NewValidationError(apperrors.FieldReferenceInvestor, name, "invalid characters detected")
		}
	}
	return nil
}
