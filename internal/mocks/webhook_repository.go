package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deck-server/internal/domain"
	"deck-server/internal/repository"
)

// WebhookRepository is a mock type for the repository.WebhookRepository type
type WebhookRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, sub
func (_m *WebhookRepository) Create(ctx context.Context, sub *domain.WebhookSubscription) error {
	ret := _m.Called(ctx, sub)

	if rf, ok := ret.Get(0).(func(context.Context, *domain.WebhookSubscription) error); ok {
		return rf(ctx, sub)
	}
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *WebhookRepository) GetByID(ctx context.Context, id string) (*domain.WebhookSubscription, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.WebhookSubscription
	if rf, ok := ret.Get(0).(func(context.Context, string) *domain.WebhookSubscription); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.WebhookSubscription)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListByUser provides a mock function with given fields: ctx, userID
func (_m *WebhookRepository) ListByUser(ctx context.Context, userID string) ([]domain.WebhookSubscription, error) {
	ret := _m.Called(ctx, userID)

	var r0 []domain.WebhookSubscription
	if rf, ok := ret.Get(0).(func(context.Context, string) []domain.WebhookSubscription); ok {
		r0 = rf(ctx, userID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.WebhookSubscription)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, userID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListActive provides a mock function with given fields: ctx, userID, event
func (_m *WebhookRepository) ListActive(ctx context.Context, userID string, event domain.WebhookEvent) ([]domain.WebhookSubscription, error) {
	ret := _m.Called(ctx, userID, event)

	var r0 []domain.WebhookSubscription
	if rf, ok := ret.Get(0).(func(context.Context, string, domain.WebhookEvent) []domain.WebhookSubscription); ok {
		r0 = rf(ctx, userID, event)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.WebhookSubscription)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, domain.WebhookEvent) error); ok {
		r1 = rf(ctx, userID, event)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Delete provides a mock function with given fields: ctx, id
func (_m *WebhookRepository) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		return rf(ctx, id)
	}
	return ret.Error(0)
}

// NewWebhookRepository creates a new instance of WebhookRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewWebhookRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *WebhookRepository {
	m := &WebhookRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ repository.WebhookRepository = (*WebhookRepository)(nil)
