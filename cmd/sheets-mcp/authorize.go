package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/sheets-mcp/internal/common"
)

const (
	googleAuthURL   = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL  = "https://oauth2.googleapis.com/token"
	callbackPort    = 8484
	authorizeScopes = "https://www.googleapis.com/auth/spreadsheets https://www.googleapis.com/auth/drive"
)

// callbackResult carries the OAuth callback parameters.
type callbackResult struct {
	code  string
	state string
	err   error
}

// runAuthorize runs the one-time OAuth authorization code flow: opens the
// user's browser for consent, waits for the local callback, exchanges the
// code for tokens, and saves the refresh token for later server runs.
func runAuthorize(cfg GoogleConfig, logger *common.Logger) error {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return fmt.Errorf("authorization requires google.client_id and google.client_secret")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Generate state for CSRF protection.
	state := uuid.New().String()
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d/callback", callbackPort)

	q := url.Values{
		"client_id":     {cfg.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {authorizeScopes},
		"state":         {state},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	authURL := googleAuthURL + "?" + q.Encode()

	// Start local callback server.
	codeCh := make(chan callbackResult, 1)
	srv := startCallbackServer(callbackPort, codeCh)
	defer srv.Close()

	logger.Info().Str("url", authURL).Msg("opening browser for authorization")
	if err := openBrowser(authURL); err != nil {
		logger.Warn().Str("error", err.Error()).Msg("failed to open browser automatically")
		fmt.Fprintf(os.Stderr, "\nOpen this URL in your browser:\n%s\n\n", authURL)
	}

	// Wait for callback or timeout.
	var result callbackResult
	select {
	case result = <-codeCh:
		if result.err != nil {
			return fmt.Errorf("callback: %w", result.err)
		}
		if result.state != state {
			return fmt.Errorf("callback state mismatch")
		}
	case <-ctx.Done():
		return fmt.Errorf("authorization timed out")
	}

	refreshToken, err := exchangeCode(ctx, cfg, result.code, redirectURI)
	if err != nil {
		return fmt.Errorf("token exchange: %w", err)
	}

	store := NewFileTokenStore(cfg.TokenFile)
	if err := store.Save(&StoredToken{RefreshToken: refreshToken, Obtained: time.Now()}); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	logger.Info().Str("path", cfg.TokenFile).Msg("OAuth authorization complete, refresh token saved")
	fmt.Fprintf(os.Stderr, "Authorization complete. Refresh token saved to %s\n", cfg.TokenFile)
	return nil
}

// exchangeCode trades the authorization code for tokens and returns the
// refresh token.
func exchangeCode(ctx context.Context, cfg GoogleConfig, code, redirectURI string) (string, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
		"redirect_uri":  {redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", err
	}
	if tok.RefreshToken == "" {
		return "", fmt.Errorf("token response contained no refresh token (revoke prior grants and retry)")
	}
	return tok.RefreshToken, nil
}

// startCallbackServer starts an HTTP server on the given port to receive
// the OAuth authorization callback. It sends the result on ch and returns
// a "you can close this tab" page to the browser.
func startCallbackServer(port int, ch chan<- callbackResult) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if errCode := q.Get("error"); errCode != "" {
			desc := q.Get("error_description")
			ch <- callbackResult{err: fmt.Errorf("%s: %s", errCode, desc)}
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprintf(w, `<html><body><h1>Authorization Failed</h1><p>%s</p>`+
				`<p>You can close this tab.</p></body></html>`, desc)
			return
		}

		ch <- callbackResult{code: q.Get("code"), state: q.Get("state")}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>Authorization Successful</h1>`+
			`<p>You can close this tab and return to the terminal.</p></body></html>`)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go srv.ListenAndServe() //nolint:errcheck // server runs until Close()
	return srv
}

// openBrowser opens the given URL in the user's default browser.
// Inside WSL it shells out to cmd.exe so the Windows browser opens.
// Inside Docker containers it returns an error (no browser available).
func openBrowser(url string) error {
	if isDocker() {
		return fmt.Errorf("running inside Docker container, no browser available")
	}

	switch runtime.GOOS {
	case "linux":
		if isWSL() {
			return exec.Command("cmd.exe", "/c", "start", url).Start()
		}
		return exec.Command("xdg-open", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("cmd", "/c", "start", url).Start()
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// isDocker reports whether the process is running inside a Docker container.
func isDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// isWSL reports whether the process is running inside Windows Subsystem for Linux.
func isWSL() bool {
	if os.Getenv("WSL_DISTRO_NAME") != "" {
		return true
	}
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	lower := strings.ToLower(string(data))
	return strings.Contains(lower, "microsoft") || strings.Contains(lower, "wsl")
}
