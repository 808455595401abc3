package submit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationops/nowplayd/internal/config"
	"github.com/stationops/nowplayd/internal/metadata"
)

type capturedRequest struct {
	method     string
	rawQuery   string
	query      url.Values
	authHeader string
	apiKey     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.rawQuery = r.URL.RawQuery
		captured.query = r.URL.Query()
		captured.authHeader = r.Header.Get("Authorization")
		captured.apiKey = r.Header.Get("X-API-KEY")
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func basicConfig(endpoint string) *config.Config {
	return &config.Config{
		APIEndpoint: endpoint,
		RPUID:       8100901,
		AuthMode:    config.AuthBasic,
		APIUsername: "station",
		APIKey:      "secret",
		Timezone:    time.UTC,
	}
}

func TestSubmitSuccess(t *testing.T) {
	server, captured := newCaptureServer(t, http.StatusOK)
	s := New(basicConfig(server.URL))

	outcome := s.Submit(context.Background(), metadata.Record{Artist: "Queen", Title: "Bohemian Rhapsody"})

	assert.Equal(t, StatusOK, outcome.Status)
	assert.Equal(t, http.StatusOK, outcome.HTTPStatus)
	assert.NoError(t, outcome.Err)
	assert.NotEmpty(t, outcome.SubmissionID)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "8100901", captured.query.Get("rpuid"))
	assert.Equal(t, "Queen", captured.query.Get("artist"))
	assert.Equal(t, "Bohemian Rhapsody", captured.query.Get("title"))
}

func TestSubmitBasicAuthHeader(t *testing.T) {
	server, captured := newCaptureServer(t, http.StatusOK)
	s := New(basicConfig(server.URL))

	s.Submit(context.Background(), metadata.Record{Artist: "A", Title: "B"})

	// base64("station:secret")
	assert.Equal(t, "Basic c3RhdGlvbjpzZWNyZXQ=", captured.authHeader)
	assert.Empty(t, captured.apiKey)
}

func TestSubmitAPIKeyHeader(t *testing.T) {
	server, captured := newCaptureServer(t, http.StatusOK)
	cfg := &config.Config{
		APIEndpoint: server.URL,
		RPUID:       42,
		AuthMode:    config.AuthAPIKey,
		APIToken:    "tok-123",
		Timezone:    time.UTC,
	}
	s := New(cfg)

	s.Submit(context.Background(), metadata.Record{Artist: "A", Title: "B"})

	assert.Equal(t, "tok-123", captured.apiKey)
	assert.Empty(t, captured.authHeader)
}

func TestSubmitPercentEncodingRoundTrips(t *testing.T) {
	server, captured := newCaptureServer(t, http.StatusOK)
	s := New(basicConfig(server.URL))

	record := metadata.Record{Artist: "Pink Floyd", Title: "Time/Space"}
	s.Submit(context.Background(), record)

	// Reserved characters must be escaped in the raw query...
	assert.Contains(t, captured.rawQuery, "title=Time%2FSpace")
	assert.Contains(t, captured.rawQuery, "artist=Pink+Floyd")

	// ...and decode back to the originals exactly
	decoded, err := url.ParseQuery(captured.rawQuery)
	require.NoError(t, err)
	assert.Equal(t, "Pink Floyd", decoded.Get("artist"))
	assert.Equal(t, "Time/Space", decoded.Get("title"))
}

func TestSubmitInjectionCannotAddParameters(t *testing.T) {
	server, captured := newCaptureServer(t, http.StatusOK)
	s := New(basicConfig(server.URL))

	s.Submit(context.Background(), metadata.Record{Artist: "AC&DC=true#x", Title: "T+T"})

	assert.Equal(t, "AC&DC=true#x", captured.query.Get("artist"))
	assert.Equal(t, "T+T", captured.query.Get("title"))
	assert.Len(t, captured.query, 4)
}

func TestSubmitStartTimeIsCurrentRFC3339(t *testing.T) {
	server, captured := newCaptureServer(t, http.StatusOK)
	s := New(basicConfig(server.URL))

	before := time.Now()
	outcome := s.Submit(context.Background(), metadata.Record{Artist: "A", Title: "B"})

	parsed, err := time.Parse(time.RFC3339, captured.query.Get("startTime"))
	require.NoError(t, err)
	assert.WithinDuration(t, before, parsed, time.Second)
	assert.Equal(t, captured.query.Get("startTime"), outcome.StartTime)
}

func TestSubmitStartTimeCarriesConfiguredZoneOffset(t *testing.T) {
	server, captured := newCaptureServer(t, http.StatusOK)
	cfg := basicConfig(server.URL)
	var err error
	cfg.Timezone, err = time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	s := New(cfg)

	s.Submit(context.Background(), metadata.Record{Artist: "A", Title: "B"})

	assert.True(t, strings.HasSuffix(captured.query.Get("startTime"), "+09:00"),
		"startTime %q should carry the +09:00 offset", captured.query.Get("startTime"))
}

func TestSubmitRemoteRejection(t *testing.T) {
	server, _ := newCaptureServer(t, http.StatusInternalServerError)
	s := New(basicConfig(server.URL))

	outcome := s.Submit(context.Background(), metadata.Record{Artist: "A", Title: "B"})

	assert.Equal(t, StatusRejected, outcome.Status)
	assert.Equal(t, http.StatusInternalServerError, outcome.HTTPStatus)
	assert.ErrorContains(t, outcome.Err, "500")
}

func TestSubmitTransportError(t *testing.T) {
	server, _ := newCaptureServer(t, http.StatusOK)
	endpoint := server.URL
	server.Close()

	s := New(basicConfig(endpoint))
	outcome := s.Submit(context.Background(), metadata.Record{Artist: "A", Title: "B"})

	assert.Equal(t, StatusTransportError, outcome.Status)
	assert.Zero(t, outcome.HTTPStatus)
	assert.Error(t, outcome.Err)
}

func TestSubmitEmptyFieldsStillPosted(t *testing.T) {
	server, captured := newCaptureServer(t, http.StatusOK)
	s := New(basicConfig(server.URL))

	outcome := s.Submit(context.Background(), metadata.Record{})

	assert.Equal(t, StatusOK, outcome.Status)
	assert.Equal(t, "", captured.query.Get("artist"))
	assert.Equal(t, "", captured.query.Get("title"))
}
