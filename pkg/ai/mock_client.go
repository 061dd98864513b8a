// pkg/ai/mock_client.go

package ai

import (
	"context"
	"strings"
	"sync"
)

type mockClient struct{}

// NewMock returns a keyword-driven advisor used when no model endpoint is
// configured. It never fails.
func NewMock() Advisor { return &mockClient{} }

func (m *mockClient) Name() string { return "mock" }

func (m *mockClient) Close() error { return nil }

func (m *mockClient) Advise(_ context.Context, prompt string) (string, error) {
	q := strings.ToLower(questionFromPrompt(prompt))
	farm := prompt
	if i := strings.Index(prompt, "Chat History:"); i >= 0 {
		farm = prompt[:i]
	}
	farm = strings.ToLower(farm)

	out := make([]string, 0, 4)
	if strings.Contains(q, "yellow") || strings.Contains(q, "wilt") {
		out = append(out, "Check soil moisture first: yellowing with wilting often points to root stress or Fusarium wilt. Avoid waterlogging and remove badly affected plants.")
	}
	if strings.Contains(q, "blight") || strings.Contains(q, "spot") {
		out = append(out, "Remove and destroy infected leaves, keep foliage dry and improve airflow between plants.")
	}
	if strings.Contains(q, "rust") || strings.Contains(q, "mildew") {
		out = append(out, "Fungal infection is likely. A sulphur-based spray applied early in the morning usually helps.")
	}
	if strings.Contains(farm, "organic") {
		out = append(out, "For organic farms, neem oil (5 ml per litre of water) or a copper-based spray are accepted options.")
	}
	// always add scouting advice
	out = append(out, "Inspect the field every 3 to 4 days and send a clear photo of a new leaf if symptoms spread.")
	return strings.Join(out, "\n"), nil
}

func questionFromPrompt(prompt string) string {
	const marker = "Farmer Question:"
	i := strings.LastIndex(prompt, marker)
	if i < 0 {
		return prompt
	}
	rest := prompt[i+len(marker):]
	if j := strings.Index(rest, "\n"); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

// MockAdvisor is a configurable double for tests. Set AdviseFunc to control
// behavior; prompts are recorded.
type MockAdvisor struct {
	AdviseFunc func(ctx context.Context, prompt string) (string, error)
	Model      string

	mu      sync.Mutex
	Prompts []string
}

func (m *MockAdvisor) Advise(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.AdviseFunc != nil {
		return m.AdviseFunc(ctx, prompt)
	}
	return "", nil
}

func (m *MockAdvisor) Name() string {
	if m.Model == "" {
		return "mock-advisor"
	}
	return m.Model
}

func (m *MockAdvisor) Close() error { return nil }

// LastPrompt returns the most recent prompt or "".
func (m *MockAdvisor) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}
