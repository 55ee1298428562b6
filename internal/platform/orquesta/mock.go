package orquesta

import (
	"context"
	"fmt"
	"sync"
)

// Mock answers deployments locally. Replies holds canned text per key; keys
// without a reply echo the "question" input.
type Mock struct {
	Replies map[string]string

	mu    sync.Mutex
	calls []MockCall
}

type MockCall struct {
	Key     string
	Context map[string]any
	Inputs  map[string]any
}

func NewMock(replies map[string]string) *Mock {
	if replies == nil {
		replies = map[string]string{}
	}
	return &Mock{Replies: replies}
}

func (m *Mock) Invoke(ctx context.Context, key string, invokeContext map[string]any, inputs map[string]any) (*Deployment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Key: key, Context: invokeContext, Inputs: inputs})
	reply, ok := m.Replies[key]
	m.mu.Unlock()

	if !ok {
		reply = "mock: ok"
		if q, found := inputs["question"]; found {
			reply = fmt.Sprint(q)
		}
	}
	return &Deployment{
		ID:      "mock-" + key,
		Choices: []Choice{{Index: 0, Message: Message{Role: "assistant", Content: reply}}},
	}, nil
}

func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
