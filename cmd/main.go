// Package main provides the entry point for the message gateway service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	gateway "github.com/vialabs/message-gateway/pkg"
	"github.com/vialabs/message-gateway/pkg/configuration"
	"github.com/vialabs/message-gateway/pkg/logging"
)

func main() {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	// Determine log level from environment variable, defaulting to "info"
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(logLevelStr)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid LOG_LEVEL '%s', defaulting to 'info'\n", logLevelStr)
		zapLevel = zapcore.InfoLevel
	}
	lggr, err := logger.NewWith(logging.DevelopmentConfig(zapLevel))
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	lggr = logger.Named(lggr, "gateway")

	sugaredLggr := logger.Sugared(lggr)

	filePath, ok := os.LookupEnv("GATEWAY_CONFIG_PATH")
	if !ok {
		filePath = gateway.DefaultConfigFile
	}
	if len(os.Args) > 1 {
		filePath = os.Args[1]
	}
	config, err := configuration.LoadConfig(filePath)
	if err != nil {
		lggr.Errorw("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		lggr.Errorw("Invalid configuration", "error", err)
		os.Exit(1)
	}
	lggr.Infow("Loaded configuration", "config", config)

	if err := config.LoadFromEnvironment(); err != nil {
		lggr.Errorw("Failed to load configuration from environment", "error", err)
		os.Exit(1)
	}

	server, err := gateway.NewServer(sugaredLggr, config)
	if err != nil {
		sugaredLggr.Fatalw("failed to create gateway server", "error", err)
	}

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lc := &net.ListenConfig{}
	lis, err := lc.Listen(context.Background(), "tcp", config.Server.Address)
	if err != nil {
		sugaredLggr.Fatalw("failed to listen for gateway service", "address", config.Server.Address, "error", err)
	}

	err = server.Start(lis)
	if err != nil {
		sugaredLggr.Fatalw("failed to start gateway service", "error", err)
	}

	<-ctx.Done()
	if err := server.Stop(); err != nil {
		sugaredLggr.Errorw("failed to stop gateway service", "error", err)
	}
	if err := lis.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		sugaredLggr.Errorw("failed to close listener", "error", err)
	}
	sugaredLggr.Info("Gateway service shut down gracefully")
}
