package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockReply is one scripted answer of MockRemote
type MockReply struct {
	Text string
	Err  error
}

// MockRemote mocks the generative-text service. Replies are keyed by a
// substring of the prompt (usually the file content). Each key's replies
// are consumed in order and the last one repeats forever.
type MockRemote struct {
	Replies     map[string][]MockReply
	Default     MockReply
	Unavailable error
	Calls       []string

	mu   sync.Mutex
	used map[string]int
}

// NewMockRemote creates a mock that answers unknown prompts with def
func NewMockRemote(def MockReply) *MockRemote {
	return &MockRemote{
		Replies: make(map[string][]MockReply),
		Default: def,
	}
}

// On scripts the replies for prompts containing key
func (m *MockRemote) On(key string, replies ...MockReply) *MockRemote {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Replies == nil {
		m.Replies = make(map[string][]MockReply)
	}
	m.Replies[key] = replies
	return m
}

// Generate mocks a generation call
func (m *MockRemote) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := m.match(prompt)
	m.Calls = append(m.Calls, fmt.Sprintf("Generate: %s", key))

	replies, ok := m.Replies[key]
	if !ok || len(replies) == 0 {
		return m.Default.Text, m.Default.Err
	}

	if m.used == nil {
		m.used = make(map[string]int)
	}
	i := m.used[key]
	if i >= len(replies) {
		i = len(replies) - 1
	}
	m.used[key]++

	return replies[i].Text, replies[i].Err
}

// match returns the longest scripted key contained in prompt
func (m *MockRemote) match(prompt string) string {
	keys := make([]string, 0, len(m.Replies))
	for k := range m.Replies {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	for _, k := range keys {
		if strings.Contains(prompt, k) {
			return k
		}
	}
	return "default"
}

// Name returns the mock provider name
func (m *MockRemote) Name() string {
	return "mock"
}

// IsAvailable returns the configured availability error
func (m *MockRemote) IsAvailable() error {
	return m.Unavailable
}

// CallCount returns how many prompts contained key ("default" for unscripted ones)
func (m *MockRemote) CallCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c == "Generate: "+key {
			n++
		}
	}
	return n
}

// TotalCalls returns the number of Generate calls
func (m *MockRemote) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// FakeSleeper records requested delays instead of sleeping
type FakeSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

// Sleep records d and returns ctx.Err()
func (s *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

// Delays returns a copy of the recorded delays
func (s *FakeSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}
