package monitoring

import (
	"fmt"

	"github.com/grafana/pyroscope-go"
	"github.com/smartcontractkit/chainlink-common/pkg/beholder"
	"github.com/smartcontractkit/chainlink-common/pkg/metrics"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
)

type GatewayBeholderMonitoring struct {
	metrics common.GatewayMetricLabeler
}

func InitMonitoring(gwConfig *model.GatewayConfig, config beholder.Config) (common.GatewayMonitoring, error) {
	config.MetricViews = MetricViews()

	// Create the beholder client
	client, err := beholder.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create beholder client: %w", err)
	}

	// Set the beholder client and global otel providers, so they don't have to be referenced elsewhere.
	beholder.SetClient(client)
	beholder.SetGlobalOtelProviders()

	// Initialize the gateway metrics
	gatewayMetrics, err := InitMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gateway metrics: %w", err)
	}

	if gwConfig.PyroscopeURL != "" {
		if _, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "message-gateway",
			ServerAddress:   gwConfig.PyroscopeURL,
			Logger:          pyroscope.StandardLogger,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileGoroutines,
				pyroscope.ProfileBlockDuration,
				pyroscope.ProfileMutexDuration,
			},
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize pyroscope client: %w", err)
		}
	}

	return &GatewayBeholderMonitoring{
		metrics: NewGatewayMetricLabeler(metrics.NewLabeler(), gatewayMetrics),
	}, nil
}

func (m *GatewayBeholderMonitoring) Metrics() common.GatewayMetricLabeler {
	return m.metrics
}
