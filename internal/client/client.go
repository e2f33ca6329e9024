// Copyright (c) 2026 Pressroom Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package client is the workflow client SDK: a typed bearer-token REST
// client over the Pressroom API, plus the review-queue projection and the
// dashboard action layer the admin surfaces are built on. Permission
// checks run client-side through internal/workflow before any request is
// issued; the server remains the authority.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pressroom-io/pressroom/internal/workflow"
)

// ErrAuthExpired reports a 401 from the server. Stored tokens were cleared
// before it was returned; the caller should route to login.
var ErrAuthExpired = errors.New("authentication expired")

// APIError is a non-401 error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to the Pressroom REST API. Zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
	state   *State

	// onAuthExpired runs once per 401, after tokens are cleared.
	onAuthExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAuthExpiredFunc sets the hook invoked when the server answers 401.
func WithAuthExpiredFunc(fn func()) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

// New builds a client for the API rooted at baseURL (including the /api/v1
// prefix). state holds the durable token pair.
func New(baseURL string, state *State, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		state:   state,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope matches the server's success wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *Meta           `json:"meta"`
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// do issues one request and decodes the data envelope into out. A 401
// clears stored tokens, fires the auth-expired hook and returns
// ErrAuthExpired; every dashboard gets that behavior for free.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (*Meta, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if pair, ok := c.state.Tokens(); ok {
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_ = c.state.ClearTokens()
		if c.onAuthExpired != nil {
			c.onAuthExpired()
		}
		return nil, ErrAuthExpired
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return nil, apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding response envelope: %w", err)
	}
	if env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decoding response data: %w", err)
		}
	}
	return env.Meta, nil
}

// Login authenticates and stores the issued token pair.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var pair TokenPair
	_, err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &pair)
	if err != nil {
		return err
	}
	return c.state.SetTokens(pair)
}

// Refresh exchanges the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) error {
	pair, ok := c.state.Tokens()
	if !ok {
		return ErrAuthExpired
	}
	var next TokenPair
	_, err := c.do(ctx, http.MethodPost, "/auth/refresh", map[string]string{
		"refresh_token": pair.RefreshToken,
	}, &next)
	if err != nil {
		return err
	}
	return c.state.SetTokens(next)
}

// Logout revokes the session server-side and drops stored tokens.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil && !errors.Is(err, ErrAuthExpired) {
		return err
	}
	return c.state.ClearTokens()
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (Account, error) {
	var account Account
	_, err := c.do(ctx, http.MethodGet, "/auth/me", nil, &account)
	return account, err
}

// ListOptions narrow a List call.
type ListOptions struct {
	Status  workflow.Status
	Page    int
	PerPage int
}

// List fetches one page of entities of the given kind. The server decides
// the caller-visible subset.
func (c *Client) List(ctx context.Context, kind workflow.Kind, opts ListOptions) ([]Entity, Meta, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	path := "/" + string(kind)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var items []Entity
	meta, err := c.do(ctx, http.MethodGet, path, nil, &items)
	if err != nil {
		return nil, Meta{}, err
	}
	if meta == nil {
		meta = &Meta{Total: int64(len(items)), Page: 1, PerPage: len(items), Pages: 1}
	}
	return items, *meta, nil
}

// ListAll walks every page of a List call and returns the full collection.
func (c *Client) ListAll(ctx context.Context, kind workflow.Kind, status workflow.Status) ([]Entity, error) {
	var all []Entity
	for page := 1; ; page++ {
		items, meta, err := c.List(ctx, kind, ListOptions{Status: status, Page: page, PerPage: 100})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if page >= meta.Pages || len(items) == 0 {
			break
		}
	}
	return all, nil
}

// Get fetches a single entity.
func (c *Client) Get(ctx context.Context, kind workflow.Kind, id int64) (Entity, error) {
	var e Entity
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%d", kind, id), nil, &e)
	return e, err
}

// ReviewQueue fetches the server-built review queue for a kind. When the
// dedicated endpoint is absent (404) the queue is derived by filtering the
// full list; derived is true then and such a queue must not be used for
// authoritative counts.
func (c *Client) ReviewQueue(ctx context.Context, kind workflow.Kind) (items []QueueItem, derived bool, err error) {
	_, err = c.do(ctx, http.MethodGet, "/"+string(kind)+"/review-queue", nil, &items)
	if err == nil {
		return items, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}

	entities, err := c.ListAll(ctx, kind, workflow.StatusInReview)
	if err != nil {
		return nil, false, err
	}
	items = make([]QueueItem, 0, len(entities))
	for _, e := range entities {
		items = append(items, QueueItem{
			Kind:        kind,
			ID:          e.ID,
			PublicID:    e.PublicID,
			Title:       e.Label(),
			SubmittedBy: e.SubmittedBy,
			SubmittedAt: e.SubmittedAt,
		})
	}
	return items, true, nil
}

// transitionRoutes maps each action to its method and path suffix.
var transitionRoutes = map[workflow.Action]struct {
	method string
	suffix string
}{
	workflow.ActionSubmit:    {http.MethodPost, "submit"},
	workflow.ActionApprove:   {http.MethodPost, "approve"},
	workflow.ActionReject:    {http.MethodPost, "reject"},
	workflow.ActionArchive:   {http.MethodPost, "archive"},
	workflow.ActionPublish:   {http.MethodPatch, "publish"},
	workflow.ActionUnpublish: {http.MethodPatch, "unpublish"},
}

// Transition invokes a workflow action on one entity. comment rides along
// on reject only; empty is passed through as-is.
func (c *Client) Transition(ctx context.Context, kind workflow.Kind, id int64, action workflow.Action, comment string) (TransitionResult, error) {
	route, ok := transitionRoutes[action]
	if !ok {
		return TransitionResult{}, fmt.Errorf("no transition route for action %q", action)
	}

	var body any
	if action == workflow.ActionReject {
		body = map[string]string{"comment": comment}
	}

	var result TransitionResult
	path := fmt.Sprintf("/%s/%d/%s", kind, id, route.suffix)
	_, err := c.do(ctx, route.method, path, body, &result)
	return result, err
}

// Delete removes an entity. Destructive and permanent; callers confirm
// with the operator before reaching this.
func (c *Client) Delete(ctx context.Context, kind workflow.Kind, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/%s/%d", kind, id), nil, nil)
	return err
}

// CategoryNames fetches the id→name map used for queue search.
func (c *Client) CategoryNames(ctx context.Context) (map[int64]string, error) {
	cats, err := c.ListAll(ctx, workflow.KindCategory, "")
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(cats))
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}
	return names, nil
}
