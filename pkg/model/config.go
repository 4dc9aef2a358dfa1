package model

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// StorageType represents the type of storage backend to use.
type StorageType string

const (
	StorageTypeMemory     StorageType = "memory"
	StorageTypePostgreSQL StorageType = "postgres"
)

// StorageConfig represents the configuration for the storage backend.
type StorageConfig struct {
	StorageType     StorageType   `toml:"type"`
	ConnectionURL   string        `toml:"-"`
	MaxOpenConns    int           `toml:"maxOpenConns"`
	MaxIdleConns    int           `toml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `toml:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `toml:"connMaxIdleTime"`
}

// ServerConfig represents the configuration for the HTTP server.
type ServerConfig struct {
	Address string `toml:"address"`
	// RequestTimeout is the max duration for any request (default: 10s).
	RequestTimeout time.Duration `toml:"requestTimeout"`
	// ReadHeaderTimeout bounds header parsing (default: 5s).
	ReadHeaderTimeout time.Duration `toml:"readHeaderTimeout"`
	// ShutdownGracePeriod bounds graceful shutdown (default: 10s).
	ShutdownGracePeriod time.Duration `toml:"shutdownGracePeriod"`
}

// MonitoringConfig configures the monitoring system.
type MonitoringConfig struct {
	// Enabled enables the monitoring system.
	Enabled bool `toml:"Enabled"`
	// Type is the type of monitoring system to use (beholder, noop).
	Type string `toml:"Type"`
	// Beholder is the configuration for the beholder client (not required if type is noop).
	Beholder BeholderConfig `toml:"Beholder"`
}

// BeholderConfig wraps OpenTelemetry configuration for the beholder client.
type BeholderConfig struct {
	InsecureConnection       bool    `toml:"InsecureConnection"`
	CACertFile               string  `toml:"CACertFile"`
	OtelExporterGRPCEndpoint string  `toml:"OtelExporterGRPCEndpoint"`
	OtelExporterHTTPEndpoint string  `toml:"OtelExporterHTTPEndpoint"`
	LogStreamingEnabled      bool    `toml:"LogStreamingEnabled"`
	MetricReaderInterval     int64   `toml:"MetricReaderInterval"`
	TraceSampleRatio         float64 `toml:"TraceSampleRatio"`
	TraceBatchTimeout        int64   `toml:"TraceBatchTimeout"`
}

// GatewaySettings configures the local gateway instance.
type GatewaySettings struct {
	// ChainID is the local logical chain id this gateway finalizes for.
	ChainID uint64 `toml:"chainId"`
	// Authority is the admin identity (base58 or 0x-hex signer key) seeded
	// at startup when the gateway context does not exist yet.
	Authority string `toml:"authority"`
	// AdmissionRequiresEnabled also gates admission behind the circuit
	// breaker. Default false: only finalize and send are gated.
	AdmissionRequiresEnabled bool `toml:"admissionRequiresEnabled"`
}

// GatewayConfig is the root configuration for the gateway service.
type GatewayConfig struct {
	Gateway      GatewaySettings  `toml:"gateway"`
	Server       ServerConfig     `toml:"server"`
	Storage      StorageConfig    `toml:"storage"`
	Monitoring   MonitoringConfig `toml:"monitoring"`
	PyroscopeURL string           `toml:"pyroscope_url"`
}

// SetDefaults fills unset fields with production defaults.
func (c *GatewayConfig) SetDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8100"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 10 * time.Second
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ShutdownGracePeriod == 0 {
		c.Server.ShutdownGracePeriod = 10 * time.Second
	}
	if c.Storage.StorageType == "" {
		c.Storage.StorageType = StorageTypeMemory
	}
	if c.Storage.MaxOpenConns == 0 {
		c.Storage.MaxOpenConns = 25
	}
	if c.Storage.MaxIdleConns == 0 {
		c.Storage.MaxIdleConns = 5
	}
	if c.Monitoring.Type == "" {
		c.Monitoring.Type = "noop"
	}
}

// ValidateGatewaySettings validates the [gateway] section.
func (c *GatewayConfig) ValidateGatewaySettings() error {
	if c.Gateway.ChainID == 0 {
		return errors.New("gateway.chainId must be set")
	}
	if c.Gateway.Authority == "" {
		return errors.New("gateway.authority must be set")
	}
	if _, err := NewSignerKeyFromString(c.Gateway.Authority); err != nil {
		return fmt.Errorf("gateway.authority is not a valid signer key: %w", err)
	}
	return nil
}

// ValidateStorageConfig validates the [storage] section.
func (c *GatewayConfig) ValidateStorageConfig() error {
	switch c.Storage.StorageType {
	case StorageTypeMemory:
		return nil
	case StorageTypePostgreSQL:
		if c.Storage.MaxIdleConns > c.Storage.MaxOpenConns {
			return errors.New("storage.maxIdleConns cannot exceed storage.maxOpenConns")
		}
		return nil
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.StorageType)
	}
}

// ValidateServerConfig validates the [server] section.
func (c *GatewayConfig) ValidateServerConfig() error {
	if c.Server.Address == "" {
		return errors.New("server.address must be set")
	}
	if c.Server.RequestTimeout < 0 || c.Server.ReadHeaderTimeout < 0 {
		return errors.New("server timeouts cannot be negative")
	}
	return nil
}

// ValidateMonitoringConfig validates the [monitoring] section.
func (c *GatewayConfig) ValidateMonitoringConfig() error {
	if !c.Monitoring.Enabled {
		return nil
	}
	switch c.Monitoring.Type {
	case "noop":
		return nil
	case "beholder":
		b := c.Monitoring.Beholder
		if b.OtelExporterGRPCEndpoint == "" && b.OtelExporterHTTPEndpoint == "" {
			return errors.New("monitoring.Beholder requires an otel exporter endpoint")
		}
		return nil
	default:
		return fmt.Errorf("unsupported monitoring type: %s", c.Monitoring.Type)
	}
}

// Validate validates the gateway configuration for integrity and correctness.
func (c *GatewayConfig) Validate() error {
	c.SetDefaults()

	if err := c.ValidateGatewaySettings(); err != nil {
		return fmt.Errorf("gateway configuration error: %w", err)
	}
	if err := c.ValidateServerConfig(); err != nil {
		return fmt.Errorf("server configuration error: %w", err)
	}
	if err := c.ValidateStorageConfig(); err != nil {
		return fmt.Errorf("storage configuration error: %w", err)
	}
	if err := c.ValidateMonitoringConfig(); err != nil {
		return fmt.Errorf("monitoring configuration error: %w", err)
	}
	return nil
}

// LoadFromEnvironment pulls secrets that never live in the config file.
func (c *GatewayConfig) LoadFromEnvironment() error {
	if c.Storage.StorageType == StorageTypePostgreSQL {
		storageURL := os.Getenv("GATEWAY_STORAGE_CONNECTION_URL")
		if storageURL == "" {
			return errors.New("GATEWAY_STORAGE_CONNECTION_URL environment variable is required")
		}
		c.Storage.ConnectionURL = storageURL
	}
	return nil
}

// AuthorityKey returns the parsed authority signer key. Validate must have
// accepted the config first.
func (c *GatewayConfig) AuthorityKey() (SignerKey, error) {
	return NewSignerKeyFromString(c.Gateway.Authority)
}
