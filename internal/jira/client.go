// Package jira is a small client for the Jira Cloud REST v3 endpoints the
// app consumes.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API is the surface consumed by the rest of the app. Implemented by
// *Client; fakes implement it in tests.
type API interface {
	Configured() bool
	FetchFilters(ctx context.Context) ([]Filter, error)
	FetchFilterJQL(ctx context.Context, filterID string) (string, error)
	FetchIssues(ctx context.Context, jql string, maxResults int) ([]Issue, error)
	FetchIssue(ctx context.Context, key string) (Issue, error)
	PostWorklog(ctx context.Context, sub Submission) (string, error)
	TransitionToInProgress(ctx context.Context, key string) error
	TestAuthentication(ctx context.Context) bool
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// ErrNotConfigured is returned before any request when credentials are
// missing.
var ErrNotConfigured = errors.New("jira client is not configured")

// ErrNotFound marks a 404 from the issue endpoint.
var ErrNotFound = errors.New("issue not found")

// StatusError reports an HTTP error status from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jira api returned status %d", e.Code)
}

const requestTimeout = 20 * time.Second

// Client talks to a Jira Cloud instance with basic auth.
type Client struct {
	baseURL  string
	email    string
	apiToken string
	http     *http.Client
}

// NewClient builds a client for the given instance. Empty credentials are
// allowed; requests fail with ErrNotConfigured until they are set.
func NewClient(baseURL, email, apiToken string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		email:    email,
		apiToken: apiToken,
		http: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Configured reports whether all connection settings are present.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.email != "" && c.apiToken != ""
}

// FetchFilters lists the user's favourite filters.
func (c *Client) FetchFilters(ctx context.Context) ([]Filter, error) {
	var filters []Filter
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/filter/favourite", nil, &filters); err != nil {
		return nil, err
	}
	return filters, nil
}

// FetchFilterJQL returns the JQL query behind a filter.
func (c *Client) FetchFilterJQL(ctx context.Context, filterID string) (string, error) {
	var payload struct {
		JQL string `json:"jql"`
	}
	path := "/rest/api/3/filter/" + url.PathEscape(filterID)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return "", err
	}
	return payload.JQL, nil
}

type searchResponse struct {
	Issues []struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
		} `json:"fields"`
	} `json:"issues"`
}

// FetchIssues runs a JQL search and returns key/summary pairs.
func (c *Client) FetchIssues(ctx context.Context, jql string, maxResults int) ([]Issue, error) {
	if maxResults <= 0 {
		maxResults = 50
	}
	body := map[string]any{
		"jql":        jql,
		"maxResults": maxResults,
		"fields":     []string{"summary"},
	}
	var payload searchResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/search", body, &payload); err != nil {
		return nil, err
	}
	issues := make([]Issue, 0, len(payload.Issues))
	for _, item := range payload.Issues {
		issues = append(issues, Issue{Key: item.Key, Summary: item.Fields.Summary})
	}
	return issues, nil
}

// FetchIssue loads a single issue. A 404 maps to ErrNotFound.
func (c *Client) FetchIssue(ctx context.Context, key string) (Issue, error) {
	var payload struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
		} `json:"fields"`
	}
	path := "/rest/api/3/issue/" + url.PathEscape(key)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return Issue{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Issue{}, err
	}
	return Issue{Key: payload.Key, Summary: payload.Fields.Summary}, nil
}

// PostWorklog submits a worklog and returns the new worklog id.
func (c *Client) PostWorklog(ctx context.Context, sub Submission) (string, error) {
	adjust := sub.AdjustEstimate
	if adjust == "" {
		adjust = AdjustAuto
	}
	body := map[string]any{
		"timeSpentSeconds": sub.Seconds,
		"started":          timestamp(sub.Started),
		"adjustEstimate":   adjust,
	}
	if comment := commentBody(sub.Comment); comment != nil {
		body["comment"] = comment
	}
	if adjust == AdjustNew && sub.RemainingEstimate != nil {
		body["remainingEstimateSeconds"] = *sub.RemainingEstimate
	}

	var payload struct {
		ID string `json:"id"`
	}
	path := "/rest/api/3/issue/" + url.PathEscape(sub.IssueKey) + "/worklog"
	if err := c.do(ctx, http.MethodPost, path, body, &payload); err != nil {
		return "", err
	}
	return payload.ID, nil
}

// TransitionToInProgress moves an issue to In Progress if such a transition
// exists. Missing transitions are not an error.
func (c *Client) TransitionToInProgress(ctx context.Context, key string) error {
	var payload struct {
		Transitions []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"transitions"`
	}
	path := "/rest/api/3/issue/" + url.PathEscape(key) + "/transitions"
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return err
	}

	transitionID := ""
	for _, tr := range payload.Transitions {
		if strings.Contains(strings.ToLower(tr.Name), "in progress") {
			transitionID = tr.ID
			break
		}
	}
	if transitionID == "" {
		slog.Info("no in-progress transition available", "issue", key)
		return nil
	}

	body := map[string]any{"transition": map[string]string{"id": transitionID}}
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// TestAuthentication checks the credentials against /myself.
func (c *Client) TestAuthentication(ctx context.Context) bool {
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/myself", nil, nil); err != nil {
		slog.Warn("authentication test failed", "error", err)
		return false
	}
	return true
}

func (c *Client) do(ctx context.Context, method, path string, body any, dest any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("jira api call failed", "method", method, "path", path, "status", resp.StatusCode)
		return &StatusError{Code: resp.StatusCode, Body: string(detail)}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
