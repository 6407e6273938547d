package analyzer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "portfolio-analyzer/internal/errors"
	"portfolio-analyzer/internal/models"
)

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/analysis.json")
	require.NoError(t, err)
	return data
}

func testSubmission() Submission {
	return Submission{
		FileName: "holdings.csv",
		Content:  []byte("Ticker,Total Cost\nAAPL,1000\n"),
		Options: models.SubmitOptions{
			SecurityMode: true,
			Strategy:     models.StrategyAggressive,
		},
	}
}

func TestClient_Analyze_SendsMultipartForm(t *testing.T) {
	body := fixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, DefaultPath, r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "true", r.FormValue(FieldSecurityMode))
		assert.Equal(t, "aggressive", r.FormValue(FieldStrategy))
		_, present := r.MultipartForm.Value[FieldReferenceInvestor]
		assert.True(t, present, "reference investor is always sent")
		assert.Equal(t, "", r.FormValue(FieldReferenceInvestor))

		f, hdr, err := r.FormFile(FieldFile)
		require.NoError(t, err)
		defer f.Close()
		content, _ := io.ReadAll(f)
		assert.Equal(t, "holdings.csv", hdr.Filename)
		assert.Equal(t, "Ticker,Total Cost\nAAPL,1000\n", string(content))

		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	result, err := client.Analyze(context.Background(), testSubmission())
	require.NoError(t, err)

	assert.Equal(t, 78.0, result.OverallScore)
	assert.Equal(t, "NVDA", result.TopPerformer.Ticker)
	assert.Equal(t, 1.35, result.SharpeRatio)
	require.NotNil(t, result.PortfolioBeta)
	assert.Equal(t, 1.08, *result.PortfolioBeta)
}

func TestClient_Analyze_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).Analyze(context.Background(), testSubmission())

	var subErr *apperrors.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, apperrors.KindHTTPStatus, subErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, subErr.StatusCode)
	assert.Equal(t, "submission.http_status", apperrors.CategoryOf(err))
}

func TestClient_Analyze_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"overall_score": 80,`))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).Analyze(context.Background(), testSubmission())
	assert.Equal(t, apperrors.CategoryDeserialization, apperrors.CategoryOf(err))
}

func TestClient_Analyze_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := client.Analyze(context.Background(), testSubmission())

	var subErr *apperrors.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, apperrors.KindTimeout, subErr.Kind)
}

func TestClient_Analyze_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(WithBaseURL(srv.URL)).Analyze(ctx, testSubmission())

	var subErr *apperrors.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, apperrors.KindCanceled, subErr.Kind)
}

func TestClient_Analyze_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(WithBaseURL(url)).Analyze(context.Background(), testSubmission())

	var subErr *apperrors.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, apperrors.KindNetwork, subErr.Kind)
	assert.Equal(t, url+DefaultPath, subErr.Endpoint)
}
