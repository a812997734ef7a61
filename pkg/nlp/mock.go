package nlp

import (
	"context"

	"github.com/yilane/rag-related/pkg/types"
)

// MockClient is a scripted Client implementation for tests.
type MockClient struct {
	// Responses are returned in order; the last one repeats once exhausted.
	Responses []string
	// Err, when set, is returned by every call.
	Err error
	// Calls records the messages passed to each call.
	Calls [][]types.Message

	next int
}

// Chat implements Client.
func (m *MockClient) Chat(_ context.Context, messages []types.Message) (*types.Response, error) {
	return m.respond(messages)
}

// ChatWithStructuredOutput implements Client.
func (m *MockClient) ChatWithStructuredOutput(_ context.Context, messages []types.Message) (*types.Response, error) {
	return m.respond(messages)
}

// Close implements Client.
func (m *MockClient) Close() error { return nil }

func (m *MockClient) respond(messages []types.Message) (*types.Response, error) {
	m.Calls = append(m.Calls, messages)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return nil, NewEmptyResponseError("mock has no responses")
	}
	idx := m.next
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.next++
	return &types.Response{Content: m.Responses[idx], Model: "mock"}, nil
}
