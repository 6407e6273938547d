// Package errors provides the error taxonomy for the upload pipeline.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors
var (
	ErrNoFileSelected     = errors.New("no file selected")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrNoAnalysis         = errors.New("no analysis result stored")
	ErrSlotEmpty          = errors.New("slot is empty")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrDatabaseError      = errors.New("database error")
)

// Category codes reported by CategoryOf.
const (
	CategoryValidation      = "validation"
	CategoryParse           = "parse"
	CategoryMapping         = "mapping"
	CategorySubmission      = "submission"
	CategoryDeserialization = "deserialization"
	CategoryState           = "state"
	CategoryUnknown         = "unknown"
)

// Static user-facing messages, one per category.
const (
	MsgInvalidFile      = "Please select a valid CSV file."
	MsgUnreadableFile   = "The selected file could not be read."
	MsgInvalidHoldings  = "The file does not match the expected portfolio layout."
	MsgAnalysisFailed   = "An error occurred while analyzing the portfolio."
	MsgNoFileSelected   = "Select a CSV file before submitting."
	MsgSubmissionActive = "An analysis is already running."
	MsgFileTooLarge     = "The selected file exceeds the maximum upload size."
	MsgInvalidStrategy  = "Choose a conservative, balanced or aggressive investment strategy."
	MsgInvalidInvestor  = "The reference investor must be plain text of at most 100 characters."
)

// ValidationError fields that carry their own user message.
const (
	FieldContentType       = "content_type"
	FieldFileSize          = "size"
	FieldStrategy          = "investment_strategy"
	FieldReferenceInvestor = "reference_investor"
)

// ValidationError represents a rejected input: wrong file type, oversize
// file, or an invalid submission option.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ParseError represents file content that could not be read as text.
type ParseError struct {
	Source  string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error [%s]: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("parse error [%s]: %s", e.Source, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(source, message string, err error) *ParseError {
	return &ParseError{
		Source:  source,
		Message: message,
		Err:     err,
	}
}

// MappingError reports a grid that cannot be turned into portfolio records.
// Rows holds 1-based source row numbers of ragged rows.
type MappingError struct {
	Message    string
	Rows       []int
	Missing    []string
	Unexpected []string
	Duplicate  []string
}

func (e *MappingError) Error() string {
	var b strings.Builder
	b.WriteString("mapping error: ")
	b.WriteString(e.Message)
	if len(e.Rows) > 0 {
		fmt.Fprintf(&b, " (rows %v)", e.Rows)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " missing=%q", e.Missing)
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&b, " unexpected=%q", e.Unexpected)
	}
	if len(e.Duplicate) > 0 {
		fmt.Fprintf(&b, " duplicate=%q", e.Duplicate)
	}
	return b.String()
}

// SubmissionKind distinguishes why a submission failed.
type SubmissionKind string

const (
	KindNetwork    SubmissionKind = "network"
	KindTimeout    SubmissionKind = "timeout"
	KindHTTPStatus SubmissionKind = "http_status"
	KindCanceled   SubmissionKind = "canceled"
)

// SubmissionError represents a failed call to the analysis service.
type SubmissionError struct {
	Kind       SubmissionKind
	StatusCode int
	Endpoint   string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf("submission error [%s] %s: status %d", e.Kind, e.Endpoint, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("submission error [%s] %s: %v", e.Kind, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("submission error [%s] %s", e.Kind, e.Endpoint)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NewSubmissionError creates a new SubmissionError.
func NewSubmissionError(kind SubmissionKind, endpoint string, statusCode int, err error) *SubmissionError {
	return &SubmissionError{
		Kind:       kind,
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Err:        err,
	}
}

// DeserializationError represents a response body that is not valid JSON
// or does not satisfy the analysis result schema.
type DeserializationError struct {
	Message string
	Fields  []string
	Err     error
}

func (e *DeserializationError) Error() string {
	msg := "deserialization error: " + e.Message
	if len(e.Fields) > 0 {
		msg += fmt.Sprintf(" (fields %s)", strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// NewDeserializationError creates a new DeserializationError.
func NewDeserializationError(message string, fields []string, err error) *DeserializationError {
	return &DeserializationError{
		Message: message,
		Fields:  fields,
		Err:     err,
	}
}

// CategoryOf returns a stable category code for err. Submission errors
// carry their kind, e.g. "submission.timeout".
func CategoryOf(err error) string {
	if err == nil {
		return ""
	}
	var (
		validationErr *ValidationError
		parseErr      *ParseError
		mappingErr    *MappingError
		submissionErr *SubmissionError
		deserErr      *DeserializationError
	)
	switch {
	case errors.As(err, &validationErr):
		return CategoryValidation
	case errors.As(err, &parseErr):
		return CategoryParse
	case errors.As(err, &mappingErr):
		return CategoryMapping
	case errors.As(err, &submissionErr):
		return CategorySubmission + "." + string(submissionErr.Kind)
	case errors.As(err, &deserErr):
		return CategoryDeserialization
	case errors.Is(err, ErrNoFileSelected), errors.Is(err, ErrSubmissionInFlight):
		return CategoryState
	}
	return CategoryUnknown
}

// UserMessage returns the static message shown to the user for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNoFileSelected) {
		return MsgNoFileSelected
	}
	if errors.Is(err, ErrSubmissionInFlight) {
		return MsgSubmissionActive
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Field {
		case FieldFileSize:
			return MsgFileTooLarge
		case FieldStrategy:
			return MsgInvalidStrategy
		case FieldReferenceInvestor:
			return MsgInvalidInvestor
		default:
			return MsgInvalidFile
		}
	}
	switch cat := CategoryOf(err); {
	case cat == CategoryParse:
		return MsgUnreadableFile
	case cat == CategoryMapping:
		return MsgInvalidHoldings
	default:
		return MsgAnalysisFailed
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
