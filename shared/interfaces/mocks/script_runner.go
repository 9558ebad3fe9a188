package mocks

import (
	"context"

	"cyoa-maker/shared/interfaces"
	"cyoa-maker/shared/models"

	"github.com/stretchr/testify/mock"
)

// MockScriptRunner is a mock type for the ScriptRunner type
type MockScriptRunner struct {
	mock.Mock
}

// Check provides a mock function with given fields: source
func (_m *MockScriptRunner) Check(source string) error {
	ret := _m.Called(source)
	return ret.Error(0)
}

// Execute provides a mock function with given fields: ctx, node, player, source
func (_m *MockScriptRunner) Execute(ctx context.Context, node models.NodeData, player models.PlayerData, source string) (*models.ScriptResult, error) {
	ret := _m.Called(ctx, node, player, source)

	var r0 *models.ScriptResult
	if rf, ok := ret.Get(0).(func(context.Context, models.NodeData, models.PlayerData, string) *models.ScriptResult); ok {
		r0 = rf(ctx, node, player, source)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ScriptResult)
	}

	return r0, ret.Error(1)
}

// NewMockScriptRunner creates a new instance of MockScriptRunner. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockScriptRunner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockScriptRunner {
	m := &MockScriptRunner{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.ScriptRunner = (*MockScriptRunner)(nil)
