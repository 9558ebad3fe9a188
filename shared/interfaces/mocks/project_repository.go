package mocks

import (
	"context"

	"cyoa-maker/shared/interfaces"
	"cyoa-maker/shared/models"

	"github.com/stretchr/testify/mock"
)

// MockProjectRepository is a mock type for the ProjectRepository type
type MockProjectRepository struct {
	mock.Mock
}

// Load provides a mock function with given fields: ctx, name
func (_m *MockProjectRepository) Load(ctx context.Context, name string) (*models.Project, error) {
	ret := _m.Called(ctx, name)

	var r0 *models.Project
	if rf, ok := ret.Get(0).(func(context.Context, string) *models.Project); ok {
		r0 = rf(ctx, name)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Project)
	}

	return r0, ret.Error(1)
}

// Save provides a mock function with given fields: ctx, name, project
func (_m *MockProjectRepository) Save(ctx context.Context, name string, project *models.Project) (string, error) {
	ret := _m.Called(ctx, name, project)
	return ret.String(0), ret.Error(1)
}

// List provides a mock function with given fields: ctx
func (_m *MockProjectRepository) List(ctx context.Context) ([]string, error) {
	ret := _m.Called(ctx)

	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}

	return r0, ret.Error(1)
}

// NewMockProjectRepository creates a new instance of MockProjectRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockProjectRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProjectRepository {
	m := &MockProjectRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ interfaces.ProjectRepository = (*MockProjectRepository)(nil)
