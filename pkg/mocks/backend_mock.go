package mocks

import (
	"context"

	"github.com/museloop/genflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of protocol.Backend interface.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.GenerationResponse), args.Error(1)
}
