// Package configuration provides configuration management for the gateway service.
package configuration

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/vialabs/message-gateway/pkg/model"
)

// LoadConfig loads the gateway configuration from a file.
func LoadConfig(filePath string) (*model.GatewayConfig, error) {
	var config model.GatewayConfig
	if _, err := toml.DecodeFile(filePath, &config); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", filePath, err)
	}
	return &config, nil
}

// LoadConfigString loads the gateway configuration from a string.
func LoadConfigString(configStr string) (*model.GatewayConfig, error) {
	var config model.GatewayConfig
	if _, err := toml.Decode(configStr, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}
