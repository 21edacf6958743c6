package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/kmed-health/kmed-backend/internal/roles"
)

// State models the login flow: Idle → Authenticating → Success | Failure.
type State int32

const (
	StateIdle State = iota
	StateAuthenticating
	StateSuccess
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "idle"
	}
}

var (
	ErrLoginInProgress    = errors.New("a login attempt is already in flight")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrBackendUnavailable = errors.New("login backend unavailable")
	// ErrMockRejected carries the demo-account hint the original form
	// alerted with.
	ErrMockRejected = errors.New("mock login rejected: use a role name as username and the demo password")
)

const mockPassword = "password"

// mockUserID is the fixed id every synthesized demo session uses.
const mockUserID = "USR001"

// DemoAccounts returns the fixed mock-login table: one account per role,
// username equal to the role name.
func DemoAccounts() []User {
	accounts := make([]User, 0, len(roles.All()))
	for _, r := range roles.All() {
		accounts = append(accounts, User{
			ID:       mockUserID,
			Username: string(r),
			Email:    string(r) + "@kmed.com",
			Role:     string(r),
		})
	}
	return accounts
}

// Options configures a LoginClient. Zero-value durations get defaults.
type Options struct {
	BackendURL      string
	SessionPath     string
	MockEnabled     bool
	Timeout         time.Duration
	TransitionDelay time.Duration // post-success pause before the dashboard transition
	MockLatency     time.Duration // simulated latency of the fallback path
}

// LoginClient drives the credential login flow against the backend, with
// an optional offline-demo fallback. A client is safe for one login at a
// time; a concurrent attempt is refused rather than cancelled.
type LoginClient struct {
	httpClient      *http.Client
	backendURL      string
	store           *SessionStore
	mockEnabled     bool
	transitionDelay time.Duration
	mockLatency     time.Duration
	state           atomic.Int32
}

func NewLoginClient(opts Options) *LoginClient {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.TransitionDelay == 0 {
		opts.TransitionDelay = 1500 * time.Millisecond
	}
	if opts.MockLatency == 0 {
		opts.MockLatency = 800 * time.Millisecond
	}
	return &LoginClient{
		httpClient:      &http.Client{Timeout: opts.Timeout},
		backendURL:      opts.BackendURL,
		store:           NewSessionStore(opts.SessionPath),
		mockEnabled:     opts.MockEnabled,
		transitionDelay: opts.TransitionDelay,
		mockLatency:     opts.MockLatency,
	}
}

// State returns the current flow state.
func (c *LoginClient) State() State {
	return State(c.state.Load())
}

// Store exposes the session store for the view layer.
func (c *LoginClient) Store() *SessionStore {
	return c.store
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

// Login posts the credentials to the backend and returns the persisted
// session. Transport failures and 5xx responses fall back to the mock
// table when the client was built with MockEnabled; a 401/403 always
// surfaces as ErrInvalidCredentials. Only one attempt may be in flight.
func (c *LoginClient) Login(ctx context.Context, username, password string) (*Session, error) {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateAuthenticating)) &&
		!c.state.CompareAndSwap(int32(StateSuccess), int32(StateAuthenticating)) &&
		!c.state.CompareAndSwap(int32(StateFailure), int32(StateAuthenticating)) {
		return nil, ErrLoginInProgress
	}

	sess, err := c.login(ctx, username, password)
	if err != nil {
		c.state.Store(int32(StateFailure))
		return nil, err
	}
	c.state.Store(int32(StateSuccess))
	return sess, nil
}

func (c *LoginClient) login(ctx context.Context, username, password string) (*Session, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.backendURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("login backend unreachable", "error", err)
		return c.fallback(ctx, username, password, fmt.Errorf("%w: %v", ErrBackendUnavailable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var out loginResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to decode login response: %w", err)
		}
		return c.finish(ctx, &Session{
			User:        out.User,
			AccessToken: out.AccessToken,
			CreatedAt:   time.Now(),
		})
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// A rejected credential is never an excuse to fall back.
		return nil, ErrInvalidCredentials
	case resp.StatusCode >= 500:
		slog.Warn("login backend error", "status", resp.StatusCode)
		return c.fallback(ctx, username, password, fmt.Errorf("%w: status %d", ErrBackendUnavailable, resp.StatusCode))
	default:
		return nil, fmt.Errorf("login failed: unexpected status %d", resp.StatusCode)
	}
}

// fallback runs the mock login when enabled, otherwise surfaces cause.
func (c *LoginClient) fallback(ctx context.Context, username, password string, cause error) (*Session, error) {
	if !c.mockEnabled {
		return nil, cause
	}

	if err := sleep(ctx, c.mockLatency); err != nil {
		return nil, err
	}

	if password != mockPassword || !roles.Valid(username) {
		return nil, ErrMockRejected
	}

	slog.Warn("mock login used", "username", username)
	return c.finish(ctx, &Session{
		User: User{
			ID:       mockUserID,
			Username: username,
			Email:    username + "@kmed.com",
			Role:     username,
		},
		Mock:      true,
		CreatedAt: time.Now(),
	})
}

func (c *LoginClient) finish(ctx context.Context, sess *Session) (*Session, error) {
	if err := c.store.Save(sess); err != nil {
		return nil, err
	}
	if err := sleep(ctx, c.transitionDelay); err != nil {
		return nil, err
	}
	return sess, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
