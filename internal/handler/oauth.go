package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/shibinnakam/cochin-backoffice/internal/service"
)

const oauthStateCookie = "oauth_state"

// googleUserInfo is the subset of the userinfo response the login flow needs.
type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// OAuthHandler runs the Google login round trip: redirect out with a state
// cookie, exchange the code on callback, and hand the asserted identity to
// the auth service for resolution.
type OAuthHandler struct {
	auth        *service.AuthService
	config      *oauth2.Config
	userInfoURL string
	clientURL   string
	logger      *slog.Logger
}

// NewOAuthHandler creates a new Google OAuth handler.
func NewOAuthHandler(auth *service.AuthService, config *oauth2.Config, clientURL string, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		auth:        auth,
		config:      config,
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		clientURL:   clientURL,
		logger:      logger,
	}
}

// Start handles GET /api/v1/auth/google.
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		h.failLogin(w, r, "could not start login")
		return
	}
	state := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.config.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /api/v1/auth/google/callback. On success the browser
// is redirected to the client with a bearer token; every failure redirects
// back to the login page with an error code instead of rendering JSON.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		h.failLogin(w, r, "state mismatch")
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		h.failLogin(w, r, "login was cancelled")
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "oauth code exchange failed",
			slog.String("error", err.Error()),
		)
		h.failLogin(w, r, "could not complete login")
		return
	}

	info, err := h.fetchUserInfo(r, token)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "oauth userinfo fetch failed",
			slog.String("error", err.Error()),
		)
		h.failLogin(w, r, "could not complete login")
		return
	}

	result, err := h.auth.LoginGoogle(r.Context(), info.ID, info.Email, info.Name)
	if err != nil {
		h.logger.WarnContext(r.Context(), "google login rejected",
			slog.String("email", info.Email),
			slog.String("error", err.Error()),
		)
		h.failLogin(w, r, "account cannot log in")
		return
	}

	dest := fmt.Sprintf("%s/auth/callback?token=%s&redirect=%s",
		h.clientURL, url.QueryEscape(result.Token), url.QueryEscape(result.Redirect))
	http.Redirect(w, r, dest, http.StatusFound)
}

func (h *OAuthHandler) fetchUserInfo(r *http.Request, token *oauth2.Token) (*googleUserInfo, error) {
	client := h.config.Client(r.Context(), token)
	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("userinfo missing id or email")
	}

	return &info, nil
}

func (h *OAuthHandler) failLogin(w http.ResponseWriter, r *http.Request, reason string) {
	dest := fmt.Sprintf("%s/login?error=%s", h.clientURL, url.QueryEscape(reason))
	http.Redirect(w, r, dest, http.StatusFound)
}
