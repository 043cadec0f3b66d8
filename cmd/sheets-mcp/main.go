package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bobmcallan/sheets-mcp/internal/common"
	"github.com/bobmcallan/sheets-mcp/internal/sheets"
)

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port string `toml:"port"`
}

// GoogleConfig holds the Google API credentials. Exactly one auth mode is
// resolved from these at startup: service account file, OAuth triple, or
// API key, in that priority order.
type GoogleConfig struct {
	APIKey          string `toml:"api_key"`
	CredentialsFile string `toml:"credentials_file"`
	ClientID        string `toml:"client_id"`
	ClientSecret    string `toml:"client_secret"`
	RefreshToken    string `toml:"refresh_token"`
	TokenFile       string `toml:"token_file"`
}

// Config holds all sheets-mcp configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Google  GoogleConfig         `toml:"google"`
	Logging common.LoggingConfig `toml:"logging"`
}

// newDefaultConfig returns a Config with sensible defaults.
func newDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name: "Sheets-MCP",
			Port: "4280",
		},
		Google: GoogleConfig{
			TokenFile: defaultTokenPath(),
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/sheets-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// loadConfig loads configuration from a TOML file with defaults and env overrides.
func loadConfig(path string) Config {
	cfg := newDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Fatalf("Failed to read config file %s: %v", path, err)
			}
			// File not found — use defaults
		} else {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				log.Fatalf("Failed to parse config file %s: %v", path, err)
			}
		}
	}

	// Apply environment overrides
	if k := os.Getenv("GOOGLE_API_KEY"); k != "" {
		cfg.Google.APIKey = k
	}
	if f := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); f != "" {
		cfg.Google.CredentialsFile = f
	}
	if id := os.Getenv("GOOGLE_OAUTH_CLIENT_ID"); id != "" {
		cfg.Google.ClientID = id
	}
	if secret := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"); secret != "" {
		cfg.Google.ClientSecret = secret
	}
	if token := os.Getenv("GOOGLE_OAUTH_REFRESH_TOKEN"); token != "" {
		cfg.Google.RefreshToken = token
	}
	if tf := os.Getenv("SHEETS_MCP_TOKEN_FILE"); tf != "" {
		cfg.Google.TokenFile = tf
	}
	if port := os.Getenv("SHEETS_MCP_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if level := os.Getenv("SHEETS_MCP_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg
}

// resolveAuthMode picks the auth mode from config: service account file
// first, then OAuth refresh token (explicit or from the token store), then
// API key. Missing credentials are fatal — the gateway cannot serve without
// a working client.
func resolveAuthMode(cfg GoogleConfig) (sheets.AuthMode, error) {
	if cfg.CredentialsFile != "" {
		sa, err := sheets.LoadServiceAccount(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return sa, nil
	}

	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		refreshToken := cfg.RefreshToken
		if refreshToken == "" && cfg.TokenFile != "" {
			store := NewFileTokenStore(cfg.TokenFile)
			if stored, err := store.Load(); err == nil && stored != nil {
				refreshToken = stored.RefreshToken
			}
		}
		if refreshToken != "" {
			return &sheets.OAuth{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				RefreshToken: refreshToken,
			}, nil
		}
	}

	if cfg.APIKey != "" {
		return sheets.APIKey{Key: cfg.APIKey}, nil
	}

	return nil, fmt.Errorf("no Google credentials configured: set google.credentials_file, the OAuth client triple, or google.api_key (run with -authorize to obtain an OAuth grant)")
}

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport (for Claude Desktop)")
	configFile := flag.String("config", "sheets-mcp.toml", "Path to config file")
	authorize := flag.Bool("authorize", false, "Run the one-time OAuth authorization flow and save the refresh token")
	flag.Parse()

	cfg := loadConfig(*configFile)

	// Load version
	common.LoadVersionFromFile()

	// Setup logging
	logger := common.NewLoggerFromConfig(cfg.Logging)

	if *authorize {
		if err := runAuthorize(cfg.Google, logger); err != nil {
			fmt.Fprintf(os.Stderr, "authorization failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	auth, err := resolveAuthMode(cfg.Google)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}

	svc := sheets.NewService(sheets.ClientConfig{}, auth, logger)
	gateway := NewGateway(svc, logger)

	// Create MCP server with tool definitions
	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register all MCP tools
	gateway.Register(mcpServer)

	if *stdio {
		// Stdio transport — reads stdin, writes stdout
		if err := server.ServeStdio(mcpServer); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	port := cfg.Server.Port

	// Streamable HTTP transport — listens on configured port
	httpServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	log.Printf("Starting MCP Streamable HTTP on :%s", port)
	fmt.Fprintf(os.Stderr, "Starting MCP Streamable HTTP on :%s\n", port)

	if err := httpServer.Start(":" + port); err != nil {
		fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
		os.Exit(1)
	}
}
