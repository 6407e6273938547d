// Package analyzer provides a client for the remote portfolio analysis
// service.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/logging"
	"portfolio-analyzer/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultPath    = "/analyze-portfolio"
	DefaultTimeout = 30 * time.Second
)

// Multipart form field names expected by the service.
const (
	FieldFile              = "file"
	FieldSecurityMode      = "securityMode"
	FieldStrategy          = "investmentStrategy"
	FieldReferenceInvestor = "referenceInvestor"
)

// Submission is one upload sent for analysis.
type Submission struct {
	FileName string
	Content  []byte
	Options  models.SubmitOptions
}

// Client posts holdings files to the analysis service.
type Client struct {
	http   *resty.Client
	path   string
	logger zerolog.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.http.SetBaseURL(baseURL)
	}
}

// WithPath sets the analysis endpoint path
func WithPath(path string) ClientOption {
	return func(c *Client) {
		c.path = path
	}
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new analysis client. No retries are configured: a
// failed submission is reported to the caller as-is.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:   resty.New(),
		path:   DefaultPath,
		logger: zerolog.Nop(),
	}
	c.http.SetBaseURL(DefaultBaseURL)
	c.http.SetTimeout(DefaultTimeout)
	c.http.SetHeader("Accept", "application/json")

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the full analysis URL.
func (c *Client) Endpoint() string {
	return c.http.BaseURL + c.path
}

// Analyze sends the submission as a single multipart request and returns the
// validated analysis result.
func (c *Client) Analyze(ctx context.Context, sub Submission) (*models.AnalysisResult, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField(FieldFile, sub.FileName, "text/csv", bytes.NewReader(sub.Content)).
		SetMultipartFormData(map[string]string{
			FieldSecurityMode:      strconv.FormatBool(sub.Options.SecurityMode),
			FieldStrategy:          string(sub.Options.Strategy),
			FieldReferenceInvestor: sub.Options.ReferenceInvestor,
		}).
		Post(c.path)

	if err != nil {
		subErr := apperrors.NewSubmissionError(classify(err), c.Endpoint(), 0, err)
		logging.LogAPICall(c.logger, "POST", c.path, 0, time.Since(start), subErr)
		return nil, subErr
	}

	status := resp.StatusCode()
	if !resp.IsSuccess() {
		subErr := apperrors.NewSubmissionError(apperrors.KindHTTPStatus, c.Endpoint(), status, nil)
		logging.LogAPICall(c.logger, "POST", c.path, status, time.Since(start), subErr)
		return nil, subErr
	}

	result, err := DecodeResult(resp.Body())
	logging.LogAPICall(c.logger, "POST", c.path, status, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func classify(err error) apperrors.SubmissionKind {
	if errors.Is(err, context.Canceled) {
		return apperrors.KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.KindTimeout
	}
	return apperrors.KindNetwork
}
