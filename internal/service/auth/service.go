// Package auth owns the admin session: the login flag and bearer token,
// login/logout against the upstream API, and the token check that gates
// admin routes. The session is an injected dependency, not ambient state;
// the upstream client pulls the token from it and reports 401s back into it.
package auth

import (
	"context"
	"log"
	"sync"
	"time"

	"storefront-gateway/internal/domain"
	"storefront-gateway/internal/storage"
)

type api interface {
	Post(ctx context.Context, path string, body, out any) error
}

// Credentials is what a successful login yields; the HTTP layer mirrors it
// into the session cookie.
type Credentials struct {
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	api    api
	store  storage.Store
	logger *log.Logger

	// resetKeys is the explicit list of durable keys wiped on logout. A
	// session change clears exactly these, not the whole store.
	resetKeys []string

	mu       sync.RWMutex
	loggedIn bool
	token    string
	expires  time.Time
}

func New(api api, store storage.Store, resetKeys []string, logger *log.Logger) *Service {
	return &Service{api: api, store: store, resetKeys: resetKeys, logger: logger}
}

// Token returns the current session token; it satisfies the upstream
// client's token source.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsLoggedIn reports whether the session has passed a login or check.
func (s *Service) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

type signinResponse struct {
	Token string `json:"token"`
	// Expired is a unix timestamp in milliseconds.
	Expired int64 `json:"expired"`
}

// Login exchanges credentials for a token and marks the session logged in.
func (s *Service) Login(ctx context.Context, username, password string) (Credentials, error) {
	body := map[string]string{"username": username, "password": password}
	var resp signinResponse
	if err := s.api.Post(ctx, "/admin/signin", body, &resp); err != nil {
		return Credentials{}, domain.E(domain.KindAuth, domain.ErrMessage(err, "login failed"))
	}

	expires := time.UnixMilli(resp.Expired)
	s.mu.Lock()
	s.loggedIn = true
	s.token = resp.Token
	s.expires = expires
	s.mu.Unlock()

	return Credentials{Token: resp.Token, ExpiresAt: expires}, nil
}

// Logout clears the in-memory session and removes the configured durable
// keys. The flag and token are cleared together; cookie clearing is the HTTP
// layer's side of the same reset.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.loggedIn = false
	s.token = ""
	s.expires = time.Time{}
	s.mu.Unlock()

	if len(s.resetKeys) == 0 {
		return nil
	}
	if err := s.store.Delete(ctx, s.resetKeys...); err != nil {
		s.logger.Printf("logout: clear durable keys: %v", err)
		return err
	}
	return nil
}

// Check validates a token taken from the session cookie. An empty token, an
// unreachable upstream, or a negative answer all log the session out and
// report unauthenticated.
func (s *Service) Check(ctx context.Context, token string) bool {
	if token == "" {
		_ = s.Logout(ctx)
		return false
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.api.Post(ctx, "/api/user/check", nil, nil); err != nil {
		_ = s.Logout(ctx)
		return false
	}

	s.mu.Lock()
	s.loggedIn = true
	s.mu.Unlock()
	return true
}

// HandleUnauthorized is the upstream 401 hook: any unauthorized response,
// whatever request produced it, resets the session.
func (s *Service) HandleUnauthorized() {
	if err := s.Logout(context.Background()); err != nil {
		s.logger.Printf("logout after 401: %v", err)
	}
}
