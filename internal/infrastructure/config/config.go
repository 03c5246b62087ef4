package config

import (
	"fmt"
	"os"
)

// Config holds all configuration for the checkout decision service.
type Config struct {
	GRPCPort        string
	HTTPPort        string
	Environment     string
	LogLevel        string
	LogFormat       string
	ConfigDir       string
	CardCatalogPath string
	OTLPEndpoint    string
	GRPCReflection  bool

	// Optional gRPC TLS; both files must be set.
	GRPCTLSCertFile string
	GRPCTLSKeyFile  string

	// Optional API client authentication. A public key file selects RS256,
	// a secret HS256; neither disables authentication.
	AuthJWTSecret        string
	AuthJWTPublicKeyFile string
	AuthJWTIssuer        string
}

// Load reads configuration from environment variables with sensible defaults.
// An empty ConfigDir or CardCatalogPath means the embedded defaults are used.
func Load() *Config {
	return &Config{
		GRPCPort:        getEnv("GRPC_PORT", "8090"),
		HTTPPort:        getEnv("HTTP_PORT", "9090"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		ConfigDir:       getEnv("CONFIG_DIR", ""),
		CardCatalogPath: getEnv("CARD_CATALOG_PATH", ""),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		GRPCReflection:  getEnv("GRPC_REFLECTION", "false") == "true",
		GRPCTLSCertFile: getEnv("GRPC_TLS_CERT_FILE", ""),
		GRPCTLSKeyFile:  getEnv("GRPC_TLS_KEY_FILE", ""),

		AuthJWTSecret:        getEnv("AUTH_JWT_SECRET", ""),
		AuthJWTPublicKeyFile: getEnv("AUTH_JWT_PUBLIC_KEY_FILE", ""),
		AuthJWTIssuer:        getEnv("AUTH_JWT_ISSUER", ""),
	}
}

// TLSEnabled reports whether both gRPC TLS files are configured.
func (c *Config) TLSEnabled() bool {
	return c.GRPCTLSCertFile != "" && c.GRPCTLSKeyFile != ""
}

// AuthEnabled reports whether any API client verification key is configured.
func (c *Config) AuthEnabled() bool {
	return c.AuthJWTSecret != "" || c.AuthJWTPublicKeyFile != ""
}

// GRPCAddress returns the full gRPC listen address.
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
