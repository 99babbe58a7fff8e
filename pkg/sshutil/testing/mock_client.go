// Package testing provides an in-memory SSHClient for tests that exercise
// the remote gateway transport without a network.
package testing

import (
	"errors"
	"io"
	"regexp"
	"sync"

	"github.com/rileyhilliard/sysdeck/pkg/sshutil"
)

// CommandResponse defines a canned response for a command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

// Call records one Exec invocation.
type Call struct {
	Cmd   string
	Stdin []byte
}

// MockClient simulates an SSH connection. Commands are matched first
// exactly, then as regular expressions, against registered responses.
// Unmatched commands exit 127 like a shell would.
type MockClient struct {
	mu        sync.Mutex
	host      string
	closed    bool
	responses map[string]CommandResponse
	order     []string
	calls     []Call
}

var _ sshutil.SSHClient = (*MockClient)(nil)

// NewMockClient creates a mock client for host.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:      host,
		responses: make(map[string]CommandResponse),
	}
}

// SetCommandResponse registers a response for a command or pattern.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.responses[pattern]; !ok {
		m.order = append(m.order, pattern)
	}
	m.responses[pattern] = resp
}

// Exec returns the registered response for cmd.
func (m *MockClient) Exec(cmd string, stdin io.Reader) ([]byte, []byte, int, error) {
	var input []byte
	if stdin != nil {
		input, _ = io.ReadAll(stdin)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, -1, errors.New("connection closed")
	}
	m.calls = append(m.calls, Call{Cmd: cmd, Stdin: input})

	if resp, ok := m.responses[cmd]; ok {
		return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
	}
	for _, pattern := range m.order {
		if matched, _ := regexp.MatchString(pattern, cmd); matched {
			resp := m.responses[pattern]
			return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
		}
	}
	return nil, []byte("command not found"), 127, nil
}

// Calls returns the recorded invocations.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Close marks the client closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetHost returns the host the mock was created for.
func (m *MockClient) GetHost() string { return m.host }

// GetAddress returns host:22.
func (m *MockClient) GetAddress() string { return m.host + ":22" }
