package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deck-server/internal/assets"
)

// ImageProvider is a mock type for the assets.ImageProvider type
type ImageProvider struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, prompt
func (_m *ImageProvider) Generate(ctx context.Context, prompt string) ([]byte, error) {
	ret := _m.Called(ctx, prompt)

	var r0 []byte
	if rf, ok := ret.Get(0).(func(context.Context, string) []byte); ok {
		r0 = rf(ctx, prompt)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, prompt)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewImageProvider creates a new instance of ImageProvider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewImageProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *ImageProvider {
	m := &ImageProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ assets.ImageProvider = (*ImageProvider)(nil)
