// Package mocks provides test doubles for the oracle client.
package mocks

import (
	"context"
	"testing"

	mock "github.com/stretchr/testify/mock"

	oracle "github.com/dppkit/passport-cli/pkg/oracle"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// NewMockClient creates a new MockClient that registers cleanup with t.
func NewMockClient(t *testing.T) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// CreateMessage provides a mock function with given fields: ctx, req
func (_m *MockClient) CreateMessage(ctx context.Context, req oracle.MessageRequest) (*oracle.MessageResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for CreateMessage")
	}

	var r0 *oracle.MessageResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, oracle.MessageRequest) (*oracle.MessageResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, oracle.MessageRequest) *oracle.MessageResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*oracle.MessageResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, oracle.MessageRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
