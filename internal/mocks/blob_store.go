package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"deck-server/internal/storage"
)

// BlobStore is a mock type for the storage.BlobStore type
type BlobStore struct {
	mock.Mock
}

// Put provides a mock function with given fields: ctx, name, data
func (_m *BlobStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	ret := _m.Called(ctx, name, data)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, []byte) string); ok {
		r0 = rf(ctx, name, data)
	} else {
		r0 = ret.String(0)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, []byte) error); ok {
		r1 = rf(ctx, name, data)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Delete provides a mock function with given fields: ctx, url
func (_m *BlobStore) Delete(ctx context.Context, url string) error {
	ret := _m.Called(ctx, url)

	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		return rf(ctx, url)
	}
	return ret.Error(0)
}

// NewBlobStore creates a new instance of BlobStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewBlobStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *BlobStore {
	m := &BlobStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ storage.BlobStore = (*BlobStore)(nil)
