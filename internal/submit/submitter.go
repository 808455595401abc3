package submit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/stationops/nowplayd/internal/config"
	"github.com/stationops/nowplayd/internal/metadata"
	"github.com/stationops/nowplayd/pkg/auth"
)

// Status classifies the result of one submission attempt.
type Status string

const (
	// StatusOK means the remote accepted the update (2xx).
	StatusOK Status = "ok"
	// StatusRejected means a response arrived with a non-2xx status.
	StatusRejected Status = "rejected"
	// StatusTransportError means no response arrived (DNS, connect, timeout).
	StatusTransportError Status = "transport_error"
)

// Outcome reports one submission attempt. It is always returned, never an
// error: expected failure modes are data for the caller to log, not reasons
// to unwind the monitoring loop.
type Outcome struct {
	SubmissionID string    `json:"submission_id"`
	Status       Status    `json:"status"`
	HTTPStatus   int       `json:"http_status,omitempty"`
	StartTime    string    `json:"start_time"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Err          error     `json:"-"`
}

// Submitter posts now-playing updates to the RadioPlayer ingest endpoint.
type Submitter struct {
	endpoint   string
	rpuid      int
	authMode   config.AuthMode
	authHeader string
	apiToken   string
	timezone   *time.Location
	client     *http.Client

	now func() time.Time
}

// New builds a submitter from the process configuration. The credential
// variant is fixed here for the process lifetime.
func New(cfg *config.Config) *Submitter {
	s := &Submitter{
		endpoint: cfg.APIEndpoint,
		rpuid:    cfg.RPUID,
		authMode: cfg.AuthMode,
		apiToken: cfg.APIToken,
		timezone: cfg.Timezone,
		client:   &http.Client{Timeout: 30 * time.Second},
		now:      time.Now,
	}
	if cfg.AuthMode == config.AuthBasic {
		s.authHeader = auth.BasicAuthHeader(cfg.APIUsername, cfg.APIKey)
	}
	return s
}

// Submit performs one now-playing POST for the given record. The startTime
// query parameter is the current instant in the configured timezone,
// RFC 3339 with UTC offset.
func (s *Submitter) Submit(ctx context.Context, record metadata.Record) Outcome {
	submittedAt := s.now()
	outcome := Outcome{
		SubmissionID: uuid.NewString(),
		StartTime:    submittedAt.In(s.timezone).Format(time.RFC3339),
		SubmittedAt:  submittedAt,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.buildURL(record, outcome.StartTime), nil)
	if err != nil {
		outcome.Status = StatusTransportError
		outcome.Err = fmt.Errorf("failed to create request: %w", err)
		return outcome
	}

	switch s.authMode {
	case config.AuthBasic:
		req.Header.Set("Authorization", s.authHeader)
	case config.AuthAPIKey:
		req.Header.Set(auth.APIKeyHeader, s.apiToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		outcome.Status = StatusTransportError
		outcome.Err = fmt.Errorf("request failed: %w", err)
		return outcome
	}
	defer resp.Body.Close()

	outcome.HTTPStatus = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome.Status = StatusRejected
		outcome.Err = fmt.Errorf("remote returned status %d", resp.StatusCode)
		return outcome
	}

	outcome.Status = StatusOK
	return outcome
}

// buildURL carries the full payload in the query string; title and artist
// are percent-encoded so reserved characters cannot break the query or
// inject extra parameters.
func (s *Submitter) buildURL(record metadata.Record, startTime string) string {
	return s.endpoint + "?" +
		"rpuid=" + strconv.Itoa(s.rpuid) +
		"&startTime=" + url.QueryEscape(startTime) +
		"&title=" + url.QueryEscape(record.Title) +
		"&artist=" + url.QueryEscape(record.Artist)
}
