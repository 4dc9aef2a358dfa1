package storage

import (
	"testing"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"github.com/stretchr/testify/require"

	"github.com/vialabs/message-gateway/pkg/model"
)

func TestFactory_CreateStorage_Memory(t *testing.T) {
	f := NewStorageFactory()
	s, err := f.CreateStorage(model.StorageConfig{StorageType: model.StorageTypeMemory}, logger.Sugared(logger.Test(t)))
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestFactory_CreateStorage_Unsupported(t *testing.T) {
	f := NewStorageFactory()
	_, err := f.CreateStorage(model.StorageConfig{StorageType: "cassandra"}, logger.Sugared(logger.Test(t)))
	require.Error(t, err)
}

func TestFactory_CreateStorage_PostgresRequiresConnectionURL(t *testing.T) {
	f := NewStorageFactory()
	_, err := f.CreateStorage(model.StorageConfig{StorageType: model.StorageTypePostgreSQL}, logger.Sugared(logger.Test(t)))
	require.Error(t, err)
}
