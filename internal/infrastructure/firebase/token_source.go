package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

const (
	defaultIdentityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	defaultSecureTokenURL     = "https://securetoken.googleapis.com/v1"
)

type TokenSourceConfig struct {
	APIKey       string
	RefreshToken string
	CustomToken  string

	// Endpoint overrides for the auth emulator or tests.
	IdentityToolkitURL string
	SecureTokenURL     string
	HTTPClient         *http.Client
}

// idTokenSource exchanges a custom token or refresh token for Firebase ID tokens.
// The ID token is handed out as the oauth2 AccessToken so it can feed oauth2.Transport.
type idTokenSource struct {
	apiKey             string
	identityToolkitURL string
	secureTokenURL     string
	httpClient         *http.Client

	mu           sync.Mutex
	refreshToken string
	customToken  string
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
}

type authErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewTokenSource returns a caching token source; the exchange only runs when the cached ID token expires.
func NewTokenSource(cfg TokenSourceConfig) (oauth2.TokenSource, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("firebase api key is required")
	}
	if cfg.RefreshToken == "" && cfg.CustomToken == "" {
		return nil, fmt.Errorf("either a refresh token or a custom token is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	src := &idTokenSource{
		apiKey:             cfg.APIKey,
		identityToolkitURL: orDefault(cfg.IdentityToolkitURL, defaultIdentityToolkitURL),
		secureTokenURL:     orDefault(cfg.SecureTokenURL, defaultSecureTokenURL),
		httpClient:         httpClient,
		refreshToken:       cfg.RefreshToken,
		customToken:        cfg.CustomToken,
	}

	return oauth2.ReuseTokenSource(nil, src), nil
}

func (s *idTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()

	if s.refreshToken == "" {
		return s.signInWithCustomToken(ctx)
	}
	return s.refresh(ctx)
}

func (s *idTokenSource) signInWithCustomToken(ctx context.Context) (*oauth2.Token, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"token":             s.customToken,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sign-in request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/accounts:signInWithCustomToken?key=%s", s.identityToolkitURL, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out signInResponse
	if err := s.do(req, &out); err != nil {
		return nil, err
	}

	s.refreshToken = out.RefreshToken
	s.customToken = ""
	return newToken(out.IDToken, out.ExpiresIn), nil
}

func (s *idTokenSource) refresh(ctx context.Context) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.refreshToken)

	endpoint := fmt.Sprintf("%s/token?key=%s", s.secureTokenURL, url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out refreshResponse
	if err := s.do(req, &out); err != nil {
		return nil, err
	}

	if out.RefreshToken != "" {
		s.refreshToken = out.RefreshToken
	}
	return newToken(out.IDToken, out.ExpiresIn), nil
}

func (s *idTokenSource) do(req *http.Request, out interface{}) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call auth endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var authErr authErrorResponse
		if json.Unmarshal(body, &authErr) == nil && authErr.Error.Message != "" {
			return fmt.Errorf("auth endpoint error: %s", authErr.Error.Message)
		}
		return fmt.Errorf("auth endpoint error: HTTP %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse auth response: %w", err)
	}
	return nil
}

func newToken(idToken, expiresIn string) *oauth2.Token {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil || seconds <= 0 {
		seconds = 3600
	}
	return &oauth2.Token{
		AccessToken: idToken,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Duration(seconds) * time.Second),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return strings.TrimRight(value, "/")
}
