package sshutil

import (
	"bytes"
	stderrors "errors"
	"io"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Exec runs a command on the remote host with stdin attached.
// Exit code is -1 if the command couldn't be executed at all.
func (c *Client) Exec(cmd string, stdin io.Reader) (stdout, stderr []byte, exitCode int, err error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	session.Stdin = stdin
	session.Stdout = &stdoutBuf
	session.Stderr = &stderrBuf

	if err := session.Run(cmd); err != nil {
		var exitErr *ssh.ExitError
		if stderrors.As(err, &exitErr) {
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitStatus(), nil
		}
		return nil, nil, -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to run the backend over SSH",
			"Check that sysdeck is installed on the remote host.")
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
}
