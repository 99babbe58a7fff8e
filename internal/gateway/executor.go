package gateway

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"sync"
	"time"

	"github.com/rileyhilliard/sysdeck/internal/util"
	"github.com/rileyhilliard/sysdeck/pkg/sshutil"
)

// LocalExecutor starts the backend as a child process.
type LocalExecutor struct{}

// Exec runs argv with stdin attached.
func (LocalExecutor) Exec(ctx context.Context, argv []string, stdin []byte) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
		}
		return nil, nil, -1, err
	}
	return stdout.Bytes(), stderr.Bytes(), 0, nil
}

// DialFunc opens an SSH connection.
type DialFunc func(host string, timeout time.Duration) (sshutil.SSHClient, error)

// SSHExecutor runs the backend on a remote host. The connection is opened
// on first use and reused until a call fails at the transport level.
type SSHExecutor struct {
	host    string
	timeout time.Duration
	dial    DialFunc

	mu     sync.Mutex
	client sshutil.SSHClient
}

// NewSSHExecutor creates an executor for host (an ssh_config alias,
// hostname, user@host, or host:port).
func NewSSHExecutor(host string, timeout time.Duration) *SSHExecutor {
	return &SSHExecutor{
		host:    host,
		timeout: timeout,
		dial: func(host string, timeout time.Duration) (sshutil.SSHClient, error) {
			return sshutil.Dial(host, timeout)
		},
	}
}

// WithDialer replaces the dial function, for tests.
func (e *SSHExecutor) WithDialer(dial DialFunc) *SSHExecutor {
	e.dial = dial
	return e
}

// Exec runs argv on the remote host. Arguments are shell-quoted.
func (e *SSHExecutor) Exec(ctx context.Context, argv []string, stdin []byte) ([]byte, []byte, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, -1, err
	}

	client, err := e.connect()
	if err != nil {
		return nil, nil, -1, err
	}

	stdout, stderr, exitCode, err := client.Exec(util.ShellJoin(argv), bytes.NewReader(stdin))
	if err != nil {
		e.drop(client)
		return nil, nil, -1, err
	}
	return stdout, stderr, exitCode, nil
}

func (e *SSHExecutor) connect() (sshutil.SSHClient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client, nil
	}
	client, err := e.dial(e.host, e.timeout)
	if err != nil {
		return nil, err
	}
	e.client = client
	return client, nil
}

// drop forgets a broken connection so the next call redials.
func (e *SSHExecutor) drop(client sshutil.SSHClient) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == client {
		_ = e.client.Close()
		e.client = nil
	}
}

// Close closes the SSH connection if one is open.
func (e *SSHExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
