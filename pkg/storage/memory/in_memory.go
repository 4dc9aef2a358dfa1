// Package memory provides the in-memory storage backend, used for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
)

// InMemoryStorage implements common.GatewayStorage with process-local maps.
// Ticket creation and consumption are lock-free on sync.Map primitives so
// that exactly one concurrent caller per key wins.
type InMemoryStorage struct {
	tickets      *sync.Map // model.TicketKey -> *model.PendingTicket
	timeProvider common.TimeProvider

	mu         sync.RWMutex
	gateways   map[model.ChainID]*model.GatewayContext
	registries map[model.RegistryKey]*model.SignerRegistry
	marks      map[model.ChainID]model.MessageID
}

func NewInMemoryStorage(timeProvider common.TimeProvider) *InMemoryStorage {
	return &InMemoryStorage{
		tickets:      &sync.Map{},
		timeProvider: timeProvider,
		gateways:     make(map[model.ChainID]*model.GatewayContext),
		registries:   make(map[model.RegistryKey]*model.SignerRegistry),
		marks:        make(map[model.ChainID]model.MessageID),
	}
}

func (s *InMemoryStorage) CreateGateway(_ context.Context, gw *model.GatewayContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.gateways[gw.ChainID]; exists {
		return model.ErrDuplicateGateway
	}
	s.gateways[gw.ChainID] = gw.Clone()
	return nil
}

func (s *InMemoryStorage) GetGateway(_ context.Context, chainID model.ChainID) (*model.GatewayContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gw, exists := s.gateways[chainID]
	if !exists {
		return nil, model.ErrNotFound
	}
	return gw.Clone(), nil
}

func (s *InMemoryStorage) UpdateGateway(_ context.Context, gw *model.GatewayContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.gateways[gw.ChainID]; !exists {
		return model.ErrNotFound
	}
	s.gateways[gw.ChainID] = gw.Clone()
	return nil
}

func (s *InMemoryStorage) CreateRegistry(_ context.Context, reg *model.SignerRegistry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registries[reg.Key()]; exists {
		return model.ErrDuplicateRegistry
	}
	s.registries[reg.Key()] = reg.Clone()
	return nil
}

func (s *InMemoryStorage) GetRegistry(_ context.Context, key model.RegistryKey) (*model.SignerRegistry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reg, exists := s.registries[key]
	if !exists {
		return nil, model.ErrNotFound
	}
	return reg.Clone(), nil
}

func (s *InMemoryStorage) UpdateRegistry(_ context.Context, reg *model.SignerRegistry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registries[reg.Key()]; !exists {
		return model.ErrNotFound
	}
	s.registries[reg.Key()] = reg.Clone()
	return nil
}

func (s *InMemoryStorage) CreateTicket(_ context.Context, ticket *model.PendingTicket) error {
	stored := *ticket
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.timeProvider.Now()
	}
	if _, loaded := s.tickets.LoadOrStore(ticket.Key(), &stored); loaded {
		return model.ErrDuplicateTicket
	}
	return nil
}

func (s *InMemoryStorage) GetTicket(_ context.Context, key model.TicketKey) (*model.PendingTicket, error) {
	value, exists := s.tickets.Load(key)
	if !exists {
		return nil, model.ErrNotFound
	}
	ticket := *value.(*model.PendingTicket)
	return &ticket, nil
}

func (s *InMemoryStorage) ConsumeTicket(_ context.Context, key model.TicketKey) (*model.PendingTicket, error) {
	value, loaded := s.tickets.LoadAndDelete(key)
	if !loaded {
		return nil, model.ErrNotFound
	}
	ticket := *value.(*model.PendingTicket)
	return &ticket, nil
}

func (s *InMemoryStorage) RecordAdmission(_ context.Context, sourceChainID model.ChainID, messageID model.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.marks[sourceChainID]
	if !exists || messageID.Cmp(current) > 0 {
		s.marks[sourceChainID] = messageID
	}
	return nil
}

func (s *InMemoryStorage) GetHighWaterMark(_ context.Context, sourceChainID model.ChainID) (*model.HighWaterMark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mark, exists := s.marks[sourceChainID]
	if !exists {
		return nil, model.ErrNotFound
	}
	return &model.HighWaterMark{SourceChainID: sourceChainID, HighestSeen: mark}, nil
}

// HealthCheck implements common.HealthChecker. The in-memory backend is
// healthy as long as the process is.
func (s *InMemoryStorage) HealthCheck(_ context.Context) *common.ComponentHealth {
	return &common.ComponentHealth{
		Name:      "storage-memory",
		Status:    common.HealthStatusHealthy,
		Timestamp: time.Now(),
	}
}
