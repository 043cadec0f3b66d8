package sheets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKey_Authenticate(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "https://example.com/v4/spreadsheets/abc?fields=user", nil)
	require.NoError(t, err)

	auth := APIKey{Key: "secret-key"}
	require.NoError(t, auth.authenticate(req))

	assert.Equal(t, "secret-key", req.URL.Query().Get("key"))
	assert.Equal(t, "user", req.URL.Query().Get("fields"), "existing query params must survive")
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestOAuth_TokenRefreshAndCaching(t *testing.T) {
	var tokenRequests atomic.Int64
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenRequests.Add(1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		assert.Equal(t, "client-secret", r.Form.Get("client_secret"))
		assert.Equal(t, "1//refresh", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "ya29.access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	auth := &OAuth{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "1//refresh",
		TokenURL:     tokenServer.URL,
	}

	for i := 0; i < 3; i++ {
		req, err := http.NewRequest(http.MethodGet, "https://example.com/v4/spreadsheets/abc", nil)
		require.NoError(t, err)
		require.NoError(t, auth.authenticate(req))
		assert.Equal(t, "Bearer ya29.access", req.Header.Get("Authorization"))
	}

	assert.Equal(t, int64(1), tokenRequests.Load(), "unexpired access token must be reused")
}

func TestOAuth_TokenEndpointFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer tokenServer.Close()

	auth := &OAuth{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "revoked",
		TokenURL:     tokenServer.URL,
	}

	req, err := http.NewRequest(http.MethodGet, "https://example.com/v4/spreadsheets/abc", nil)
	require.NoError(t, err)

	err = auth.authenticate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func writeServiceAccountFile(t *testing.T, tokenURL string) string {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	path := filepath.Join(t.TempDir(), "sa.json")
	data, err := json.Marshal(map[string]string{
		"type":         "service_account",
		"client_email": "robot@project.iam.gserviceaccount.com",
		"private_key":  string(keyPEM),
		"token_uri":    tokenURL,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestLoadServiceAccount(t *testing.T) {
	path := writeServiceAccountFile(t, "https://example.com/token")

	sa, err := LoadServiceAccount(path)
	require.NoError(t, err)
	assert.Equal(t, "robot@project.iam.gserviceaccount.com", sa.ClientEmail)
	assert.Equal(t, "https://example.com/token", sa.TokenURL)
	assert.NotNil(t, sa.PrivateKey)
}

func TestLoadServiceAccount_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account"}`), 0600))

	_, err := LoadServiceAccount(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_email")
}

func TestServiceAccount_JWTBearerGrant(t *testing.T) {
	var tokenRequests atomic.Int64
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenRequests.Add(1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.Form.Get("grant_type"))
		assert.NotEmpty(t, r.Form.Get("assertion"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "ya29.sa-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	path := writeServiceAccountFile(t, tokenServer.URL)
	sa, err := LoadServiceAccount(path)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodGet, "https://example.com/v4/spreadsheets/abc", nil)
		require.NoError(t, err)
		require.NoError(t, sa.authenticate(req))
		assert.Equal(t, "Bearer ya29.sa-access", req.Header.Get("Authorization"))
	}

	assert.Equal(t, int64(1), tokenRequests.Load(), "unexpired access token must be reused")
}
