// Package gateway provides the main HTTP server implementation for the
// message gateway service.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/smartcontractkit/chainlink-common/pkg/beholder"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/api"
	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/events"
	"github.com/vialabs/message-gateway/pkg/handlers"
	"github.com/vialabs/message-gateway/pkg/health"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/monitoring"
	"github.com/vialabs/message-gateway/pkg/quorum"
	"github.com/vialabs/message-gateway/pkg/storage"
)

// DefaultConfigFile is used when no config path is supplied.
const DefaultConfigFile = "config.toml"

// Server hosts the gateway HTTP API.
type Server struct {
	l          logger.SugaredLogger
	httpServer *http.Server
	shutdown   time.Duration
	feed       *events.Feed
	runGroup   *run.Group
	stopChan   chan struct{}
	mu         sync.Mutex
	started    bool
}

// NewServer assembles the full gateway: monitoring, storage, the event feed,
// every operation handler, and the HTTP router.
func NewServer(l logger.SugaredLogger, config *model.GatewayConfig) (*Server, error) {
	config.SetDefaults()

	var gwMonitoring common.GatewayMonitoring = monitoring.NewNoopGatewayMonitoring()
	if config.Monitoring.Enabled && config.Monitoring.Type == "beholder" {
		// Setup OTEL Monitoring (via beholder)
		m, err := monitoring.InitMonitoring(config, beholder.Config{
			InsecureConnection:       config.Monitoring.Beholder.InsecureConnection,
			CACertFile:               config.Monitoring.Beholder.CACertFile,
			OtelExporterGRPCEndpoint: config.Monitoring.Beholder.OtelExporterGRPCEndpoint,
			OtelExporterHTTPEndpoint: config.Monitoring.Beholder.OtelExporterHTTPEndpoint,
			LogStreamingEnabled:      config.Monitoring.Beholder.LogStreamingEnabled,
			MetricReaderInterval:     time.Duration(config.Monitoring.Beholder.MetricReaderInterval) * time.Second,
			TraceSampleRatio:         config.Monitoring.Beholder.TraceSampleRatio,
			TraceBatchTimeout:        time.Duration(config.Monitoring.Beholder.TraceBatchTimeout) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize monitoring: %w", err)
		}
		gwMonitoring = m
		l.Info("Monitoring enabled")
	}

	store, err := storage.NewStorageFactory().CreateStorage(config.Storage, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	metered := storage.WrapWithMetrics(store, gwMonitoring)

	if err := seedGatewayContext(context.Background(), metered, config, l); err != nil {
		return nil, err
	}

	feed := events.NewFeed(events.DefaultCapacity, common.NewRealTimeProvider())
	validator := quorum.NewThreeLayerValidator(l)
	localChainID := model.ChainID(config.Gateway.ChainID)

	admitHandler := handlers.NewAdmitMessageHandler(metered, validator, gwMonitoring, feed,
		localChainID, config.Gateway.AdmissionRequiresEnabled, l)
	finalizeHandler := handlers.NewFinalizeMessageHandler(metered, validator, gwMonitoring, feed, localChainID, l)
	sendHandler := handlers.NewSendMessageHandler(metered, gwMonitoring, feed, localChainID, l)
	initGatewayHandler := handlers.NewInitializeGatewayHandler(metered, l)
	setSystemHandler := handlers.NewSetSystemEnabledHandler(metered, gwMonitoring, feed, l)
	registryHandler := handlers.NewRegistryAdminHandler(metered, localChainID, l)
	queryHandler := handlers.NewQueryHandler(metered, l)

	healthManager := health.NewManager()
	healthManager.Register(store)
	healthHandlers := health.NewHTTPHandlers(healthManager, l)

	router := api.NewRouter(
		admitHandler, finalizeHandler, sendHandler,
		initGatewayHandler, setSystemHandler, registryHandler, queryHandler,
		feed, healthHandlers, gwMonitoring, l)

	httpServer := &http.Server{
		Addr:              config.Server.Address,
		Handler:           http.TimeoutHandler(router, config.Server.RequestTimeout, "request timed out"),
		ReadHeaderTimeout: config.Server.ReadHeaderTimeout,
	}

	return &Server{
		l:          l,
		httpServer: httpServer,
		shutdown:   config.Server.ShutdownGracePeriod,
		feed:       feed,
		started:    false,
		mu:         sync.Mutex{},
	}, nil
}

// seedGatewayContext creates the local gateway context on first boot so the
// configured authority can administer the chain without a separate
// initialization call. An existing context is left untouched.
func seedGatewayContext(ctx context.Context, store common.GatewayStorage, config *model.GatewayConfig, l logger.SugaredLogger) error {
	authority, err := config.AuthorityKey()
	if err != nil {
		return fmt.Errorf("invalid gateway authority: %w", err)
	}

	gw := &model.GatewayContext{
		ChainID:       model.ChainID(config.Gateway.ChainID),
		Authority:     authority,
		SystemEnabled: true,
	}
	if err := store.CreateGateway(ctx, gw); err != nil {
		if errors.Is(err, model.ErrDuplicateGateway) {
			l.Infow("Gateway context already initialized", "chainID", config.Gateway.ChainID)
			return nil
		}
		return fmt.Errorf("failed to seed gateway context: %w", err)
	}
	l.Infow("Gateway context seeded", "chainID", config.Gateway.ChainID, "authority", authority)
	return nil
}

// Feed exposes the event feed for embedded use.
func (s *Server) Feed() *events.Feed {
	return s.feed
}

func (s *Server) Start(lis net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("server already started")
	}

	s.stopChan = make(chan struct{})

	g := &run.Group{}

	g.Add(func() error {
		s.l.Infow("HTTP server started", "address", s.httpServer.Addr)
		err := s.httpServer.Serve(lis)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.l.Errorw("HTTP server stopped with error", "error", err)
			return err
		}
		s.l.Info("HTTP server stopped")
		return nil
	}, func(err error) {
		s.l.Info("Shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.l.Errorw("Graceful shutdown failed, closing", "error", err)
			_ = s.httpServer.Close()
		}
	})

	g.Add(func() error {
		<-s.stopChan
		s.l.Info("stop signal received, shutting down")
		return nil
	}, func(error) {})

	g.Add(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		receivedSig := <-sig
		s.l.Infow("received signal, shutting down", "signal", receivedSig)
		return nil
	}, func(error) {})

	s.runGroup = g
	s.started = true

	go func() {
		if err := g.Run(); err != nil {
			s.l.Errorw("Run group stopped with error", "error", err)
		}

		s.mu.Lock()
		s.started = false
		s.runGroup = nil
		if s.stopChan != nil {
			close(s.stopChan)
			s.stopChan = nil
		}
		s.mu.Unlock()
	}()

	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopChan == nil {
		return nil
	}

	s.l.Info("Stopping server gracefully")

	close(s.stopChan)
	s.stopChan = nil

	return nil
}
