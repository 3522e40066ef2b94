package mock

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a test double for ai.Generator.
// It records prompts and allows custom behavior injection via GenerateFunc.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, returns a fixed email body.
	GenerateFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

// NewMockGenerator creates a mock generator with default behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records the prompt and returns the injected or default completion.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return fmt.Sprintf("Dear Professor,\n\n(generated from a %d character prompt)\n\nSincerely", len(prompt)), nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// LastPrompt returns the most recent prompt, or "" if none.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// Reset clears recorded prompts and custom functions.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	m.prompts = nil
	m.mu.Unlock()
	m.GenerateFunc = nil
}
