package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *GatewayConfig {
	return &GatewayConfig{
		Gateway: GatewaySettings{
			ChainID:   7000,
			Authority: "0x00112233445566778899aabbccddeeff00112233",
		},
	}
}

func TestSetDefaults(t *testing.T) {
	c := validConfig()
	c.SetDefaults()

	require.Equal(t, ":8100", c.Server.Address)
	require.Equal(t, 10*time.Second, c.Server.RequestTimeout)
	require.Equal(t, 5*time.Second, c.Server.ReadHeaderTimeout)
	require.Equal(t, 10*time.Second, c.Server.ShutdownGracePeriod)
	require.Equal(t, StorageTypeMemory, c.Storage.StorageType)
	require.Equal(t, 25, c.Storage.MaxOpenConns)
	require.Equal(t, 5, c.Storage.MaxIdleConns)
	require.Equal(t, "noop", c.Monitoring.Type)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*GatewayConfig)
	}{
		{"missing chain id", func(c *GatewayConfig) { c.Gateway.ChainID = 0 }},
		{"missing authority", func(c *GatewayConfig) { c.Gateway.Authority = "" }},
		{"malformed authority", func(c *GatewayConfig) { c.Gateway.Authority = "0xzz" }},
		{"unknown storage type", func(c *GatewayConfig) { c.Storage.StorageType = "cassandra" }},
		{"idle conns above open conns", func(c *GatewayConfig) {
			c.Storage.StorageType = StorageTypePostgreSQL
			c.Storage.MaxOpenConns = 5
			c.Storage.MaxIdleConns = 10
		}},
		{"negative timeout", func(c *GatewayConfig) { c.Server.RequestTimeout = -time.Second }},
		{"unknown monitoring type", func(c *GatewayConfig) {
			c.Monitoring.Enabled = true
			c.Monitoring.Type = "statsd"
		}},
		{"beholder without endpoint", func(c *GatewayConfig) {
			c.Monitoring.Enabled = true
			c.Monitoring.Type = "beholder"
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			require.Error(t, c.Validate())
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	c := validConfig()
	c.SetDefaults()

	// Memory storage needs no connection URL.
	require.NoError(t, c.LoadFromEnvironment())

	c.Storage.StorageType = StorageTypePostgreSQL
	require.Error(t, c.LoadFromEnvironment())

	t.Setenv("GATEWAY_STORAGE_CONNECTION_URL", "postgres://localhost:5432/gateway")
	require.NoError(t, c.LoadFromEnvironment())
	require.Equal(t, "postgres://localhost:5432/gateway", c.Storage.ConnectionURL)
}

func TestAuthorityKey(t *testing.T) {
	c := validConfig()
	key, err := c.AuthorityKey()
	require.NoError(t, err)
	require.Len(t, []byte(key), 20)
}
