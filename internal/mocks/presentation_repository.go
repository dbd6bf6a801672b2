package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deck-server/internal/domain"
	"deck-server/internal/repository"
)

// PresentationRepository is a mock type for the repository.PresentationRepository type
type PresentationRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, p
func (_m *PresentationRepository) Create(ctx context.Context, p *domain.Presentation) error {
	ret := _m.Called(ctx, p)

	if rf, ok := ret.Get(0).(func(context.Context, *domain.Presentation) error); ok {
		return rf(ctx, p)
	}
	return ret.Error(0)
}

// CreateWithSlides provides a mock function with given fields: ctx, p, slides
func (_m *PresentationRepository) CreateWithSlides(ctx context.Context, p *domain.Presentation, slides []domain.Slide) error {
	ret := _m.Called(ctx, p, slides)

	if rf, ok := ret.Get(0).(func(context.Context, *domain.Presentation, []domain.Slide) error); ok {
		return rf(ctx, p, slides)
	}
	return ret.Error(0)
}

// Update provides a mock function with given fields: ctx, p
func (_m *PresentationRepository) Update(ctx context.Context, p *domain.Presentation) error {
	ret := _m.Called(ctx, p)

	if rf, ok := ret.Get(0).(func(context.Context, *domain.Presentation) error); ok {
		return rf(ctx, p)
	}
	return ret.Error(0)
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *PresentationRepository) GetByID(ctx context.Context, id string) (*domain.Presentation, error) {
	ret := _m.Called(ctx, id)

	var r0 *domain.Presentation
	if rf, ok := ret.Get(0).(func(context.Context, string) *domain.Presentation); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Presentation)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListByUser provides a mock function with given fields: ctx, userID, limit, offset
func (_m *PresentationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Presentation, error) {
	ret := _m.Called(ctx, userID, limit, offset)

	var r0 []domain.Presentation
	if rf, ok := ret.Get(0).(func(context.Context, string, int, int) []domain.Presentation); ok {
		r0 = rf(ctx, userID, limit, offset)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Presentation)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, int, int) error); ok {
		r1 = rf(ctx, userID, limit, offset)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Delete provides a mock function with given fields: ctx, id
func (_m *PresentationRepository) Delete(ctx context.Context, id string) error {
	ret := _m.Called(ctx, id)

	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		return rf(ctx, id)
	}
	return ret.Error(0)
}

// NewPresentationRepository creates a new instance of PresentationRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewPresentationRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *PresentationRepository {
	m := &PresentationRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ repository.PresentationRepository = (*PresentationRepository)(nil)
