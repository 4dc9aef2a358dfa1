package scope

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/google/uuid"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/common"
)

type contextKey string

const (
	messageIDKey   contextKey = "message-id"
	sourceChainKey contextKey = "source-chain"
	signerKey      contextKey = "signer"
	requestIDKey   contextKey = "request-id"
)

var contextKeys = []contextKey{
	messageIDKey,
	sourceChainKey,
	signerKey,
	requestIDKey,
}

func WithRequestID(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestIDKey, uuid.New().String())
}

func WithMessageID(ctx context.Context, id []byte) context.Context {
	return context.WithValue(ctx, messageIDKey, hex.EncodeToString(id))
}

func WithSourceChain(ctx context.Context, chainID uint64) context.Context {
	return context.WithValue(ctx, sourceChainKey, strconv.FormatUint(chainID, 10))
}

func WithSigner(ctx context.Context, signer []byte) context.Context {
	return context.WithValue(ctx, signerKey, hex.EncodeToString(signer))
}

func AugmentMetrics(ctx context.Context, metrics common.GatewayMetricLabeler) common.GatewayMetricLabeler {
	for _, key := range contextKeys {
		if value, ok := ctx.Value(key).(string); ok {
			metrics = metrics.With(string(key), value)
		}
	}
	return metrics
}

func AugmentLogger(ctx context.Context, logger logger.SugaredLogger) logger.SugaredLogger {
	for _, key := range contextKeys {
		logger = augmentLoggerIfOk(ctx, logger, key)
	}
	return logger
}

func augmentLoggerIfOk(ctx context.Context, logger logger.SugaredLogger, key contextKey) logger.SugaredLogger {
	value, ok := ctx.Value(key).(string)
	if !ok {
		return logger
	}
	return logger.With(string(key), value)
}
