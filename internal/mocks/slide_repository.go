package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deck-server/internal/domain"
	"deck-server/internal/repository"
)

// SlideRepository is a mock type for the repository.SlideRepository type
type SlideRepository struct {
	mock.Mock
}

// ListByPresentation provides a mock function with given fields: ctx, presentationID
func (_m *SlideRepository) ListByPresentation(ctx context.Context, presentationID string) ([]domain.Slide, error) {
	ret := _m.Called(ctx, presentationID)

	var r0 []domain.Slide
	if rf, ok := ret.Get(0).(func(context.Context, string) []domain.Slide); ok {
		r0 = rf(ctx, presentationID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Slide)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, presentationID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReplaceForPresentation provides a mock function with given fields: ctx, presentationID, slides
func (_m *SlideRepository) ReplaceForPresentation(ctx context.Context, presentationID string, slides []domain.Slide) error {
	ret := _m.Called(ctx, presentationID, slides)

	if rf, ok := ret.Get(0).(func(context.Context, string, []domain.Slide) error); ok {
		return rf(ctx, presentationID, slides)
	}
	return ret.Error(0)
}

// NewSlideRepository creates a new instance of SlideRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewSlideRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *SlideRepository {
	m := &SlideRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ repository.SlideRepository = (*SlideRepository)(nil)
