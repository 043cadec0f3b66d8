package sheets

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	scopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	scopeDrive        = "https://www.googleapis.com/auth/drive"

	defaultTokenURL = "https://oauth2.googleapis.com/token"

	// Refresh access tokens a little before they actually expire.
	tokenExpirySlack = 60 * time.Second
)

// AuthMode attaches Google credentials to an outgoing API request.
// Exactly one mode is active per gateway process.
type AuthMode interface {
	authenticate(req *http.Request) error
}

// APIKey authenticates with a static API key passed as a query parameter.
// Only public, read-oriented endpoints accept this mode.
type APIKey struct {
	Key string
}

func (a APIKey) authenticate(req *http.Request) error {
	q := req.URL.Query()
	q.Set("key", a.Key)
	req.URL.RawQuery = q.Encode()
	return nil
}

// tokenResponse is the OAuth token endpoint response shared by the
// service-account and refresh-token grants.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ServiceAccount authenticates with a signed JWT-bearer assertion built
// from service account credentials.
type ServiceAccount struct {
	ClientEmail string
	PrivateKey  *rsa.PrivateKey
	TokenURL    string

	HTTPClient *http.Client

	mu          sync.Mutex
	accessToken string
	expiry      time.Time
}

// serviceAccountFile is the credentials JSON written by the Google Cloud
// console when a service account key is created.
type serviceAccountFile struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadServiceAccount reads and parses a service account key file.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading service account file: %w", err)
	}

	var sa serviceAccountFile
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("parsing service account file: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, fmt.Errorf("service account file %s missing client_email or private_key", path)
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parsing service account private key: %w", err)
	}

	tokenURL := sa.TokenURI
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	return &ServiceAccount{
		ClientEmail: sa.ClientEmail,
		PrivateKey:  key,
		TokenURL:    tokenURL,
	}, nil
}

func (s *ServiceAccount) authenticate(req *http.Request) error {
	token, err := s.token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (s *ServiceAccount) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.expiry.Add(-tokenExpirySlack)) {
		return s.accessToken, nil
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.ClientEmail,
		"scope": scopeSpreadsheets + " " + scopeDrive,
		"aud":   s.TokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("signing token assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}

	tok, err := requestToken(ctx, s.httpClient(), s.TokenURL, form)
	if err != nil {
		return "", err
	}

	s.accessToken = tok.AccessToken
	s.expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return s.accessToken, nil
}

func (s *ServiceAccount) httpClient() *http.Client {
	if s.HTTPClient != nil {
		return s.HTTPClient
	}
	return http.DefaultClient
}

// OAuth authenticates with a user-granted refresh token, exchanging it for
// short-lived access tokens as needed.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string

	HTTPClient *http.Client

	mu          sync.Mutex
	accessToken string
	expiry      time.Time
}

func (o *OAuth) authenticate(req *http.Request) error {
	token, err := o.token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (o *OAuth) token(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.accessToken != "" && time.Now().Before(o.expiry.Add(-tokenExpirySlack)) {
		return o.accessToken, nil
	}

	tokenURL := o.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {o.ClientID},
		"client_secret": {o.ClientSecret},
		"refresh_token": {o.RefreshToken},
	}

	tok, err := requestToken(ctx, o.httpClient(), tokenURL, form)
	if err != nil {
		return "", err
	}

	o.accessToken = tok.AccessToken
	o.expiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return o.accessToken, nil
}

func (o *OAuth) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return http.DefaultClient
}

func requestToken(ctx context.Context, client *http.Client, tokenURL string, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting access token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}
	return &tok, nil
}
