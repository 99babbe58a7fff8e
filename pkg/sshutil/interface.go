package sshutil

import "io"

// SSHClient is the subset of an SSH connection the gateway needs. Both the
// real Client and the mock in pkg/sshutil/testing satisfy it.
type SSHClient interface {
	// Exec runs a command with stdin attached and returns stdout, stderr,
	// and exit code. Exit code is -1 if the command couldn't be executed at
	// all. A non-zero exit code with nil error means the command ran but
	// failed.
	Exec(cmd string, stdin io.Reader) (stdout, stderr []byte, exitCode int, err error)

	// Close closes the SSH connection.
	Close() error

	// GetHost returns the original host/alias used to connect.
	GetHost() string

	// GetAddress returns the resolved host:port address.
	GetAddress() string
}
