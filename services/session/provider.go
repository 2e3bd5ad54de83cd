package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskmate/utils"
)

// ErrNoCurrentUser is returned by IDToken when no user is signed in.
var ErrNoCurrentUser = errors.New("no current user")

// User identifies the signed-in account.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// TokenListener receives the new ID token whenever it changes. An empty
// token means the user signed out.
type TokenListener func(token string)

// IdentityProvider is the external authentication collaborator. The client
// never implements authentication itself; it orchestrates calls against this
// interface and reacts to token changes.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*User, error)
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignOut(ctx context.Context) error
	CurrentUser() *User
	IDToken(ctx context.Context, forceRefresh bool) (string, error)
	OnIDTokenChanged(fn TokenListener)
}

// refreshSkew is how close to expiry a cached token is still handed out.
const refreshSkew = 5 * time.Minute

// FirebaseProvider implements IdentityProvider against the Firebase Auth
// REST endpoints (identitytoolkit for sign-in/sign-up, securetoken for
// refresh). Token expiry is tracked from the provider's expiresIn response,
// never by decoding the token itself.
type FirebaseProvider struct {
	apiKey   string
	authURL  string
	tokenURL string
	http     *http.Client

	mu           sync.Mutex
	user         *User
	idToken      string
	refreshToken string
	expiresAt    time.Time
	listeners    []TokenListener
}

func NewFirebaseProvider(apiKey, authURL, tokenURL string) *FirebaseProvider {
	return &FirebaseProvider{
		apiKey:   apiKey,
		authURL:  strings.TrimRight(authURL, "/"),
		tokenURL: strings.TrimRight(tokenURL, "/"),
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type firebaseAuthResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	ExpiresIn    string `json:"expiresIn"`
}

type firebaseErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*User, error) {
	return p.authenticate(ctx, "accounts:signInWithPassword", email, password)
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (*User, error) {
	return p.authenticate(ctx, "accounts:signUp", email, password)
}

func (p *FirebaseProvider) authenticate(ctx context.Context, endpoint, email, password string) (*User, error) {
	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode auth request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/%s?key=%s", p.authURL, endpoint, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var fbErr firebaseErrorResponse
		if json.Unmarshal(data, &fbErr) == nil && fbErr.Error.Message != "" {
			return nil, fmt.Errorf("authentication rejected: %s", fbErr.Error.Message)
		}
		return nil, fmt.Errorf("authentication rejected with status %d", resp.StatusCode)
	}

	var auth firebaseAuthResponse
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}

	user := &User{UID: auth.LocalID, Email: auth.Email}
	p.setSession(user, auth.IDToken, auth.RefreshToken, auth.ExpiresIn)
	return user, nil
}

func (p *FirebaseProvider) SignOut(_ context.Context) error {
	p.mu.Lock()
	p.user = nil
	p.idToken = ""
	p.refreshToken = ""
	p.expiresAt = time.Time{}
	listeners := append([]TokenListener(nil), p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn("")
	}
	return nil
}

func (p *FirebaseProvider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return nil
	}
	u := *p.user
	return &u
}

// IDToken returns the current ID token, refreshing it against the
// securetoken endpoint when forced or when the cached token is near expiry.
func (p *FirebaseProvider) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	p.mu.Lock()
	if p.user == nil {
		p.mu.Unlock()
		return "", ErrNoCurrentUser
	}
	if !forceRefresh && p.idToken != "" && time.Until(p.expiresAt) > refreshSkew {
		token := p.idToken
		p.mu.Unlock()
		return token, nil
	}
	refreshToken := p.refreshToken
	p.mu.Unlock()

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	reqURL := fmt.Sprintf("%s/token?key=%s", p.tokenURL, url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		utils.GetLogger().Warn("Token refresh rejected", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("token refresh rejected with status %d", resp.StatusCode)
	}

	var refreshed struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		UserID       string `json:"user_id"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &refreshed); err != nil {
		return "", fmt.Errorf("failed to decode refresh response: %w", err)
	}

	p.mu.Lock()
	user := p.user
	p.mu.Unlock()
	if user == nil {
		// Signed out while the refresh was in flight.
		return "", ErrNoCurrentUser
	}

	p.setSession(user, refreshed.IDToken, refreshed.RefreshToken, refreshed.ExpiresIn)
	return refreshed.IDToken, nil
}

func (p *FirebaseProvider) OnIDTokenChanged(fn TokenListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *FirebaseProvider) setSession(user *User, idToken, refreshToken, expiresIn string) {
	ttl, err := strconv.Atoi(expiresIn)
	if err != nil || ttl <= 0 {
		ttl = 3600
	}

	p.mu.Lock()
	p.user = user
	p.idToken = idToken
	if refreshToken != "" {
		p.refreshToken = refreshToken
	}
	p.expiresAt = time.Now().Add(time.Duration(ttl) * time.Second)
	listeners := append([]TokenListener(nil), p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(idToken)
	}
}
