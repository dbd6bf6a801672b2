package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deck-server/internal/llm"
)

// TextGenerationProvider is a mock type for the llm.TextGenerationProvider type
type TextGenerationProvider struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, req
func (_m *TextGenerationProvider) Generate(ctx context.Context, req llm.Request) (string, llm.Usage, error) {
	ret := _m.Called(ctx, req)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, llm.Request) string); ok {
		r0 = rf(ctx, req)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 llm.Usage
	if rf, ok := ret.Get(1).(func(context.Context, llm.Request) llm.Usage); ok {
		r1 = rf(ctx, req)
	} else if ret.Get(1) != nil {
		r1 = ret.Get(1).(llm.Usage)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(context.Context, llm.Request) error); ok {
		r2 = rf(ctx, req)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// Stream provides a mock function with given fields: ctx, req, handler.
// Строковые чанки из Run можно передать через StreamChunks.
func (_m *TextGenerationProvider) Stream(ctx context.Context, req llm.Request, handler llm.ChunkHandler) (llm.Usage, error) {
	ret := _m.Called(ctx, req, handler)

	var r0 llm.Usage
	if rf, ok := ret.Get(0).(func(context.Context, llm.Request, llm.ChunkHandler) llm.Usage); ok {
		r0 = rf(ctx, req, handler)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(llm.Usage)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, llm.Request, llm.ChunkHandler) error); ok {
		r1 = rf(ctx, req, handler)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Model provides a mock function with given fields:
func (_m *TextGenerationProvider) Model() string {
	ret := _m.Called()
	if rf, ok := ret.Get(0).(func() string); ok {
		return rf()
	}
	return ret.String(0)
}

// StreamChunks возвращает Run-функцию, которая отдаёт чанки обработчику по очереди.
func StreamChunks(chunks ...string) func(args mock.Arguments) {
	return func(args mock.Arguments) {
		handler := args.Get(2).(llm.ChunkHandler)
		for _, c := range chunks {
			if err := handler(c); err != nil {
				return
			}
		}
	}
}

// NewTextGenerationProvider creates a new instance of TextGenerationProvider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewTextGenerationProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *TextGenerationProvider {
	m := &TextGenerationProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ llm.TextGenerationProvider = (*TextGenerationProvider)(nil)
