package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/krishanu7/debate-backend/internal/apperr"
)

// maxAttempts is one call plus one retry.
const maxAttempts = 2

type Timeouts struct {
	Analyze  time.Duration
	Finalize time.Duration
	Health   time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{Analyze: 15 * time.Second, Finalize: 45 * time.Second, Health: 5 * time.Second}
}

// Client talks to the external ML scoring API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeouts   Timeouts
	retryDelay time.Duration
}

func NewClient(baseURL string, timeouts Timeouts) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeouts:   timeouts,
		retryDelay: 500 * time.Millisecond,
	}
}

// Analyze returns the sentiment of a single argument.
func (c *Client) Analyze(ctx context.Context, text string) (float64, error) {
	var resp analyzeResponse
	if err := c.postJSON(ctx, "/analyze", c.timeouts.Analyze, analyzeRequest{Text: text}, &resp); err != nil {
		return 0, apperr.Wrap(apperr.Collaborator, "scoring: analyze failed", err)
	}
	if resp.Sentiment == nil {
		return 0, nil
	}
	return *resp.Sentiment, nil
}

// Finalize scores a whole debate. Side "A" of the response is the author of
// the first argument, side "B" the next distinct author.
func (c *Client) Finalize(ctx context.Context, samples []Sample) (Verdict, error) {
	order := sidesOf(samples)
	labels := make(map[string]string, len(order))
	for _, sd := range order {
		labels[sd.authorID] = sd.label
	}
	req := finalizeRequest{Arguments: make([]finalizeArgument, 0, len(samples))}
	for _, s := range samples {
		req.Arguments = append(req.Arguments, finalizeArgument{
			UserID:       s.AuthorID,
			Username:     labels[s.AuthorID],
			ArgumentText: s.Text,
		})
	}
	var resp finalizeResponse
	if err := c.postJSON(ctx, "/finalize", c.timeouts.Finalize, req, &resp); err != nil {
		return Verdict{}, apperr.Wrap(apperr.Collaborator, "scoring: finalize failed", err)
	}

	winner, winnerID := resolveWinner(order, resp.Winner)
	return Verdict{
		LogicScore:          resp.Totals["A"],
		PersuasivenessScore: resp.Scores["A"].Sentiment,
		EngagementScore:     resp.Scores["A"].Clarity,
		Winner:              winner,
		WinnerID:            winnerID,
		Source:              SourceML,
	}, nil
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Health)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Wrap(apperr.Collaborator, "scoring: health check failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return apperr.Wrap(apperr.Collaborator, "scoring: health check failed",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}

func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

func (c *Client) postJSON(ctx context.Context, path string, timeout time.Duration, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}
		lastErr = c.postOnce(ctx, path, timeout, body, out)
		if lastErr == nil {
			return nil
		}
		var se *statusError
		if errors.As(lastErr, &se) && !isRetryable(se.code) {
			return lastErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return lastErr
}

func (c *Client) postOnce(ctx context.Context, path string, timeout time.Duration, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{code: resp.StatusCode, body: string(respBody)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// side is one distinct author. The ML API groups arguments by username, so
// authors sharing a username are sent under a numbered label.
type side struct {
	authorID string
	username string
	label    string
}

func sidesOf(samples []Sample) []side {
	var order []side
	seen := make(map[string]bool)
	names := make(map[string]int)
	for _, s := range samples {
		if seen[s.AuthorID] {
			continue
		}
		seen[s.AuthorID] = true
		names[s.Username]++
		label := s.Username
		if n := names[s.Username]; n > 1 {
			label = fmt.Sprintf("%s (%d)", s.Username, n)
		}
		order = append(order, side{authorID: s.AuthorID, username: s.Username, label: label})
	}
	return order
}

// resolveWinner maps the ML winner label onto a participant. "A" and "B" are
// the first and second distinct authors, a label sent on the wire names its
// author, anything else is a draw.
func resolveWinner(order []side, label string) (string, string) {
	switch {
	case label == "A" && len(order) > 0:
		return order[0].username, order[0].authorID
	case label == "B" && len(order) > 1:
		return order[1].username, order[1].authorID
	}
	for _, sd := range order {
		if sd.label == label {
			return sd.username, sd.authorID
		}
	}
	return Draw, ""
}
