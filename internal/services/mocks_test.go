package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"alfredoptarigan/crypto-identifier/internal/models"
)

// MockClassifier is a mock implementation of ClassifierService for testing
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Predict(ctx context.Context, fileName string, content []byte) (*models.ClassifierResponse, error) {
	args := m.Called(ctx, fileName, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClassifierResponse), args.Error(1)
}

func (m *MockClassifier) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
