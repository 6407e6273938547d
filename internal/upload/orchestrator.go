// Package upload drives a holdings file from selection through preview to
// submission and persistence of the analysis result.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"portfolio-analyzer/internal/analyzer"
	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/ingest"
	"portfolio-analyzer/internal/logging"
	"portfolio-analyzer/internal/models"
	"portfolio-analyzer/internal/store"
)

// State is a step of the upload lifecycle.
type State string

const (
	StateIdle           State = "Idle"
	StateFileSelected   State = "FileSelected"
	StateValidating     State = "Validating"
	StateReadingPreview State = "ReadingPreview"
	StateSubmitting     State = "Submitting"
	StateSucceeded      State = "Succeeded"
	StateFailed         State = "Failed"
)

// Analyzer submits an upload for remote analysis.
type Analyzer interface {
	Analyze(ctx context.Context, sub analyzer.Submission) (*models.AnalysisResult, error)
}

// Options tune the orchestrator.
type Options struct {
	PreviewRows     int
	MaxFileSize     int64
	RaggedPolicy    ingest.RaggedPolicy
	DefaultStrategy models.Strategy
}

// DefaultOptions returns the options used by the CLI when config is silent.
func DefaultOptions() Options {
	return Options{
		PreviewRows:     6,
		MaxFileSize:     10 << 20,
		RaggedPolicy:    ingest.RaggedReject,
		DefaultStrategy: models.StrategyBalanced,
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Orchestrator owns the state of one upload session. A single producer is
// assumed; concurrent calls are serialised and a second Submit while one is
// in flight fails with ErrSubmissionInFlight.
type Orchestrator struct {
	mu         sync.Mutex
	state      State
	file       *File
	uploadID   string
	content    []byte
	grid       models.Grid
	preview    models.Grid
	result     *models.AnalysisResult
	err        error
	cancelRead context.CancelFunc
	generation uint64

	store    store.Store
	analyzer Analyzer
	parser   *ingest.Parser
	mapper   *ingest.Mapper
	opts     Options
	logger   zerolog.Logger

	// OnSucceeded is called after a result has been persisted. The CLI uses
	// it to move on to the report view.
	OnSucceeded func(*models.AnalysisResult)
}

// NewOrchestrator creates an idle orchestrator.
func NewOrchestrator(s store.Store, a Analyzer, opts Options, logger zerolog.Logger) *Orchestrator {
	defaults := DefaultOptions()
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = defaults.PreviewRows
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaults.MaxFileSize
	}
	if opts.RaggedPolicy == "" {
		opts.RaggedPolicy = defaults.RaggedPolicy
	}
	if !opts.DefaultStrategy.Valid() {
		opts.DefaultStrategy = defaults.DefaultStrategy
	}
	return &Orchestrator{
		state:    StateIdle,
		store:    s,
		analyzer: a,
		parser:   ingest.NewParser(),
		mapper:   ingest.NewMapper(opts.RaggedPolicy, logger),
		opts:     opts,
		logger:   logger,
	}
}

// Select starts a new upload. Any previous preview, result or error is
// discarded and an in-flight read from an earlier selection is cancelled.
// A file that does not declare itself as CSV leaves the orchestrator Idle
// with a ValidationError and no preview.
func (o *Orchestrator) Select(ctx context.Context, f File) error {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return apperrors.ErrSubmissionInFlight
	}
	if o.cancelRead != nil {
		o.cancelRead()
		o.cancelRead = nil
	}
	o.generation++
	o.resetLocked()

	o.transitionLocked(StateValidating)
	if err := o.validateFile(f); err != nil {
		o.err = err
		o.transitionLocked(StateIdle)
		logging.LogFailure(o.logger, apperrors.CategoryOf(err), err)
		o.mu.Unlock()
		return err
	}

	o.file = &f
	o.uploadID = uuid.NewString()
	o.transitionLocked(StateFileSelected)

	readCtx, cancel := context.WithCancel(ctx)
	o.cancelRead = cancel
	gen := o.generation
	o.transitionLocked(StateReadingPreview)
	log := o.sessionLogger()
	o.mu.Unlock()

	content, err := o.read(readCtx, f)
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		// A newer selection replaced this one; drop what we read.
		return context.Canceled
	}
	o.cancelRead = nil
	if err != nil {
		o.err = err
		o.transitionLocked(StateFailed)
		logging.LogFailure(log, apperrors.CategoryOf(err), err)
		return err
	}

	o.content = content
	o.grid = o.parser.Parse(string(bytes.TrimPrefix(content, utf8BOM)))
	o.preview = o.grid.Head(o.opts.PreviewRows)
	log.Debug().Int("rows", len(o.grid)).Msg("File parsed")
	return nil
}

// Submit maps the selected file into holdings, persists them, sends the
// original file for analysis and persists the result. It is valid once a
// preview is ready, and again after a failed submission while the file is
// still held. Nothing is retried automatically.
func (o *Orchestrator) Submit(ctx context.Context, opts models.SubmitOptions) (*models.AnalysisResult, error) {
	o.mu.Lock()
	if o.state == StateSubmitting {
		o.mu.Unlock()
		return nil, apperrors.ErrSubmissionInFlight
	}
	if (o.state != StateReadingPreview && o.state != StateFailed) || o.grid == nil {
		o.mu.Unlock()
		return nil, apperrors.ErrNoFileSelected
	}
	opts, err := o.normalizeOptions(opts)
	if err != nil {
		o.err = err
		o.mu.Unlock()
		return nil, err
	}

	o.err = nil
	o.transitionLocked(StateSubmitting)
	grid := o.grid
	content := o.content
	fileName := o.file.Name
	log := o.sessionLogger()
	o.mu.Unlock()

	items, err := o.mapper.MapPortfolio(grid)
	if err != nil {
		return nil, o.fail(log, err)
	}
	if err := store.SaveHoldings(ctx, o.store, items); err != nil {
		return nil, o.fail(log, apperrors.Wrap(err, "saving holdings"))
	}
	log.Info().Int("holdings", len(items)).Msg("Holdings saved, submitting for analysis")

	result, err := o.analyzer.Analyze(ctx, analyzer.Submission{
		FileName: fileName,
		Content:  content,
		Options:  opts,
	})
	if err != nil {
		return nil, o.fail(log, err)
	}
	if err := store.SaveAnalysis(ctx, o.store, result); err != nil {
		return nil, o.fail(log, apperrors.Wrap(err, "saving analysis result"))
	}

	o.mu.Lock()
	o.result = result
	o.transitionLocked(StateSucceeded)
	hook := o.OnSucceeded
	o.mu.Unlock()

	log.Info().Float64("overall_score", result.OverallScore).Msg("Analysis stored")
	if hook != nil {
		hook(result)
	}
	return result, nil
}

// Reset returns to Idle, discarding the current selection.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelRead != nil {
		o.cancelRead()
		o.cancelRead = nil
	}
	o.generation++
	o.resetLocked()
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Preview returns the first rows of the selected file, header included.
func (o *Orchestrator) Preview() models.Grid {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.preview
}

// Grid returns the full parsed grid of the selected file.
func (o *Orchestrator) Grid() models.Grid {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.grid
}

// File returns the selected file, or nil.
func (o *Orchestrator) File() *File {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.file
}

// Result returns the last successful analysis of this session, or nil.
func (o *Orchestrator) Result() *models.AnalysisResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Err returns the error surfaced to the user, or nil.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// UploadID identifies the current selection in logs.
func (o *Orchestrator) UploadID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.uploadID
}

func (o *Orchestrator) fail(log zerolog.Logger, err error) error {
	o.mu.Lock()
	o.err = err
	o.transitionLocked(StateFailed)
	o.mu.Unlock()
	logging.LogFailure(log, apperrors.CategoryOf(err), err)
	return err
}

func (o *Orchestrator) resetLocked() {
	o.transitionLocked(StateIdle)
	o.file = nil
	o.uploadID = ""
	o.content = nil
	o.grid = nil
	o.preview = nil
	o.result = nil
	o.err = nil
}

func (o *Orchestrator) transitionLocked(to State) {
	if o.state == to {
		return
	}
	logging.LogTransition(o.logger, string(o.state), string(to))
	o.state = to
}

func (o *Orchestrator) sessionLogger() zerolog.Logger {
	name := ""
	if o.file != nil {
		name = o.file.Name
	}
	return logging.WithUpload(o.logger, o.uploadID, name)
}

func (o *Orchestrator) validateFile(f File) error {
	if !isCSV(f.ContentType) {
		return apperrors.NewValidationError(apperrors.FieldContentType, f.ContentType, "file must be a CSV document")
	}
	if f.Size > o.opts.MaxFileSize {
		return apperrors.NewValidationError(apperrors.FieldFileSize, f.Size, fmt.Sprintf("file exceeds %d bytes", o.opts.MaxFileSize))
	}
	if f.Open == nil {
		return apperrors.NewValidationError("file", f.Name, "file cannot be opened")
	}
	return nil
}

func (o *Orchestrator) read(ctx context.Context, f File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, apperrors.NewParseError(f.Name, "error reading file", err)
	}
	defer rc.Close()

	limit := o.opts.MaxFileSize
	data, err := io.ReadAll(io.LimitReader(&ctxReader{ctx: ctx, r: rc}, limit+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.NewParseError(f.Name, "error reading file", err)
	}
	if int64(len(data)) > limit {
		return nil, apperrors.NewValidationError(apperrors.FieldFileSize, len(data), fmt.Sprintf("file exceeds %d bytes", limit))
	}
	if !utf8.Valid(data) {
		return nil, apperrors.NewParseError(f.Name, "file is not valid UTF-8 text", nil)
	}
	return data, nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
