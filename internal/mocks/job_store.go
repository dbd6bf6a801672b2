package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"deck-server/internal/domain"
)

// JobStore is a mock type for the jobs.Store type
type JobStore struct {
	mock.Mock
}

// Save provides a mock function with given fields: ctx, job
func (_m *JobStore) Save(ctx context.Context, job domain.GenerationJob) error {
	ret := _m.Called(ctx, job)

	if rf, ok := ret.Get(0).(func(context.Context, domain.GenerationJob) error); ok {
		return rf(ctx, job)
	}
	return ret.Error(0)
}

// Get provides a mock function with given fields: ctx, id
func (_m *JobStore) Get(ctx context.Context, id uuid.UUID) (domain.GenerationJob, error) {
	ret := _m.Called(ctx, id)

	var r0 domain.GenerationJob
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) domain.GenerationJob); ok {
		r0 = rf(ctx, id)
	} else if v := ret.Get(0); v != nil {
		r0 = v.(domain.GenerationJob)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewJobStore creates a new instance of JobStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewJobStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *JobStore {
	m := &JobStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
