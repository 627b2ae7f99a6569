package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient 基于testify/mock的客户端，供上层服务测试使用
type MockClient struct {
	mock.Mock
}

// NewMockClient 创建Mock客户端，测试结束时校验期望
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Generate 返回预设的响应
func (m *MockClient) Generate(ctx context.Context, prompt string, options ...GenerateOption) (*Response, error) {
	args := m.Called(ctx, prompt)
	resp, _ := args.Get(0).(*Response)
	return resp, args.Error(1)
}

// Name 返回模型名称
func (m *MockClient) Name() string {
	return "mock"
}
