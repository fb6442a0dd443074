// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/guttosm/meal-ledger/internal/domain/model"
	"github.com/guttosm/meal-ledger/internal/repository"
)

var _ repository.ActivityStore = (*MockActivityStore)(nil)

type MockActivityStore struct {
	mock.Mock
}

func (m *MockActivityStore) Append(ctx context.Context, entries ...*model.Activity) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockActivityStore) Find(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Activity), args.Error(1)
}

func (m *MockActivityStore) Count(ctx context.Context, filter model.ActivityFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockActivityLog mocks service.ActivityLog.
type MockActivityLog struct {
	mock.Mock
}

func (m *MockActivityLog) Record(ctx context.Context, entries ...*model.Activity) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockActivityLog) OrderHistory(ctx context.Context, orderID primitive.ObjectID, limit int) ([]model.Activity, error) {
	args := m.Called(ctx, orderID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Activity), args.Error(1)
}

func (m *MockActivityLog) Search(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Activity), args.Get(1).(int64), args.Error(2)
}
