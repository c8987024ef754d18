// Package auth gates the admin routes behind Google OAuth. Sessions are
// held in memory; a restart signs everyone out, which is acceptable for an
// internal dashboard with a handful of users.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/nartaq/forms-service/internal/config"
	"github.com/nartaq/forms-service/internal/pkg/logger"
)

// googleUser is the profile returned by Google's userinfo endpoint.
type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	HD            string `json:"hd"`
}

// Session is an authenticated admin session.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager runs the OAuth flow and keeps the session table.
type Manager struct {
	cfg          config.AuthConfig
	oauth2Config *oauth2.Config
	sessions     map[string]*Session
	mu           sync.RWMutex
	userInfoURL  string
}

// NewManager creates the auth manager. baseURL is the externally reachable
// origin used to build the OAuth redirect.
func NewManager(cfg config.AuthConfig, baseURL string) *Manager {
	return &Manager{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  baseURL + "/auth/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		sessions:    make(map[string]*Session),
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
	}
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HandleLogin starts the Google OAuth flow.
func (m *Manager) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomToken()
	if err != nil {
		http.Error(w, "Failed to generate state", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// hd narrows the Google account picker to the allowed workspace domain;
	// the callback still verifies it server-side.
	url := m.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline) + "&hd=" + m.cfg.AllowedDomain
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// HandleCallback completes the OAuth flow and opens a session.
func (m *Manager) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		logger.Warn("oauth state mismatch")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		logger.Warn("oauth provider error", "error", errMsg)
		http.Redirect(w, r, "/?error="+errMsg, http.StatusTemporaryRedirect)
		return
	}

	token, err := m.oauth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.Error("oauth code exchange failed", "error", err.Error())
		http.Redirect(w, r, "/?error=exchange_failed", http.StatusTemporaryRedirect)
		return
	}

	user, err := m.fetchUser(r.Context(), token.AccessToken)
	if err != nil {
		logger.Error("oauth userinfo fetch failed", "error", err.Error())
		http.Redirect(w, r, "/?error=userinfo_failed", http.StatusTemporaryRedirect)
		return
	}

	if !m.domainAllowed(user.Email) {
		logger.Warn("oauth login rejected", "email", user.Email, "allowed_domain", m.cfg.AllowedDomain)
		http.Redirect(w, r, "/?error=domain_not_allowed", http.StatusTemporaryRedirect)
		return
	}

	sessionID, err := randomToken()
	if err != nil {
		http.Redirect(w, r, "/?error=session_failed", http.StatusTemporaryRedirect)
		return
	}

	now := time.Now()
	m.mu.Lock()
	m.sessions[sessionID] = &Session{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Picture:   user.Picture,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(m.cfg.CookieMaxAge) * time.Second),
	}
	m.mu.Unlock()

	logger.Info("admin logged in", "email", user.Email)

	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   m.cfg.CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// HandleLogout drops the session and clears the cookie.
func (m *Manager) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(m.cfg.CookieName); err == nil {
		m.mu.Lock()
		delete(m.sessions, cookie.Value)
		m.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: m.cfg.CookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// GetSession returns the live session for the request, or nil.
func (m *Manager) GetSession(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[cookie.Value]
	m.mu.RUnlock()
	if !exists {
		return nil
	}

	if time.Now().After(session.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, cookie.Value)
		m.mu.Unlock()
		return nil
	}
	return session
}

// RequireAdmin rejects unauthenticated requests with the standard envelope.
// With auth disabled in config the middleware passes everything through,
// which is the local-development mode.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		if m.GetSession(r) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"error":   "Unauthorized",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartSessionCleanup evicts expired sessions every 5 minutes until ctx is
// cancelled.
func (m *Manager) StartSessionCleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now()
				m.mu.Lock()
				for id, session := range m.sessions {
					if now.After(session.ExpiresAt) {
						delete(m.sessions, id)
					}
				}
				m.mu.Unlock()
			}
		}
	}()
}

func (m *Manager) domainAllowed(email string) bool {
	parts := strings.Split(email, "@")
	return len(parts) == 2 && parts[1] == m.cfg.AllowedDomain
}

func (m *Manager) fetchUser(ctx context.Context, accessToken string) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read userinfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error: %s", string(body))
	}

	var user googleUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("parse user info: %w", err)
	}
	return &user, nil
}
