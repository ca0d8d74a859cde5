package mocks

import (
	"context"

	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockInvocationRepository is a mock implementation of persistence.InvocationRepository interface.
type MockInvocationRepository struct {
	mock.Mock
}

func (m *MockInvocationRepository) Save(ctx context.Context, record *models.InvocationRecord) error {
	args := m.Called(ctx, record)

	return args.Error(0)
}

func (m *MockInvocationRepository) GetByID(ctx context.Context, id string) (*models.InvocationRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.InvocationRecord), args.Error(1)
}

func (m *MockInvocationRepository) ListByFlow(ctx context.Context, flow string, limit int) ([]*models.InvocationRecord, error) {
	args := m.Called(ctx, flow, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.InvocationRecord), args.Error(1)
}

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) InvocationRepository() persistence.InvocationRepository {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}

	return args.Get(0).(persistence.InvocationRepository)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
