package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/emerald/internal/domain"
)

// MockArtifactFinder is a mock implementation of ArtifactFinder
type MockArtifactFinder struct {
	mock.Mock
}

func (m *MockArtifactFinder) Find(ctx context.Context, dir string, query string) ([]string, error) {
	args := m.Called(ctx, dir, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockArtifactFinder) Sources(ctx context.Context, dir string) ([]string, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPlanLoader is a mock implementation of PlanLoader
type MockPlanLoader struct {
	mock.Mock
}

func (m *MockPlanLoader) LoadPlan(ctx context.Context, path string) (*domain.Plan, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

// MockContractCompiler is a mock implementation of ContractCompiler
type MockContractCompiler struct {
	mock.Mock
}

func (m *MockContractCompiler) Compile(ctx context.Context, sources []string) ([]*domain.CompiledContract, error) {
	args := m.Called(ctx, sources)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CompiledContract), args.Error(1)
}

// MockIPFSUploader is a mock implementation of IPFSUploader
type MockIPFSUploader struct {
	mock.Mock
}

func (m *MockIPFSUploader) AddDirectory(ctx context.Context, dir string) ([]domain.IPFSEntry, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IPFSEntry), args.Error(1)
}

// MockToolLauncher is a mock implementation of ToolLauncher
type MockToolLauncher struct {
	mock.Mock
}

func (m *MockToolLauncher) Resolve(tool domain.Tool) (string, error) {
	args := m.Called(tool)
	return args.String(0), args.Error(1)
}

func (m *MockToolLauncher) Launch(ctx context.Context, tool domain.Tool, toolArgs []string) error {
	args := m.Called(ctx, tool, toolArgs)
	return args.Error(0)
}
