package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/logger"
)

// Envelope is the response a backend process writes to stdout.
type Envelope struct {
	OK    bool           `json:"ok" cbor:"ok"`
	Data  any            `json:"data,omitempty" cbor:"data,omitempty"`
	Error *EnvelopeError `json:"error,omitempty" cbor:"error,omitempty"`
}

// EnvelopeError is the failure half of an Envelope.
type EnvelopeError struct {
	Code    string `json:"code" cbor:"code"`
	Message string `json:"message" cbor:"message"`
}

// Executor runs a backend binary and feeds it stdin. Exit code is -1 when
// the binary couldn't be started at all; a non-zero exit code with a nil
// error means it ran and failed.
type Executor interface {
	Exec(ctx context.Context, argv []string, stdin []byte) (stdout, stderr []byte, exitCode int, err error)
}

// Process is a Gateway that runs `<binary> backend <command>` for every
// call, locally or over SSH depending on its Executor.
type Process struct {
	exec   Executor
	binary []string
	codec  Codec
	log    logger.Logger
}

// NewProcess creates a process gateway. binary is the argv prefix used to
// start the backend, e.g. ["sysdeck"] or ["sudo", "-n", "sysdeck"].
func NewProcess(exec Executor, binary []string, codec Codec, log logger.Logger) *Process {
	if codec == nil {
		codec = JSONCodec{}
	}
	if len(binary) == 0 {
		binary = []string{"sysdeck"}
	}
	return &Process{
		exec:   exec,
		binary: binary,
		codec:  codec,
		log:    logger.OrDefault(log),
	}
}

// Invoke runs one backend process and decodes its envelope.
func (p *Process) Invoke(ctx context.Context, command string, args Args) (Result, error) {
	if args == nil {
		args = Args{}
	}
	payload, err := p.codec.Marshal(args)
	if err != nil {
		return Result{}, errors.WrapWithCode(err, errors.ErrMalformed,
			fmt.Sprintf("couldn't encode arguments for %s", command), "")
	}

	argv := append(append([]string{}, p.binary...), "backend", command, "--codec", p.codec.Name())
	p.log.Debug("exec %s", strings.Join(argv, " "))

	stdout, stderr, exitCode, err := p.exec.Exec(ctx, argv, payload)
	if err != nil {
		return Result{}, errors.WrapWithCode(err, errors.ErrUnreachable,
			"Backend isn't responding",
			"Check that the sysdeck binary is installed where gateway.binary points.")
	}
	if len(bytes.TrimSpace(stdout)) == 0 {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = fmt.Sprintf("exit code %d with no output", exitCode)
		}
		return Result{}, errors.WrapWithCode(fmt.Errorf("%s", msg), errors.ErrUnreachable,
			fmt.Sprintf("Backend exited without answering %s", command),
			"Run the backend by hand to see what it prints: sysdeck backend "+command)
	}

	var env Envelope
	if err := p.codec.Unmarshal(stdout, &env); err != nil {
		return Result{}, errors.WrapWithCode(err, errors.ErrMalformed,
			fmt.Sprintf("couldn't decode the backend's answer to %s", command),
			"Make sure client and backend use the same gateway.codec.")
	}

	if !env.OK {
		if env.Error == nil {
			return Result{}, errors.New(errors.ErrMalformed,
				fmt.Sprintf("backend reported failure for %s without an error", command), "")
		}
		return Result{}, envelopeError(env.Error)
	}
	return Result{Value: env.Data}, nil
}

// Close releases the executor's connection, if it holds one.
func (p *Process) Close() error {
	if c, ok := p.exec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func envelopeError(e *EnvelopeError) error {
	code := e.Code
	switch code {
	case errors.ErrUnknownCommand, errors.ErrMalformed, errors.ErrUnreachable, errors.ErrRejected:
	default:
		code = errors.ErrRejected
	}
	return errors.New(code, e.Message, "")
}

// Serve answers a single command on the backend side: it reads encoded
// arguments from in, invokes the registry, and writes an Envelope to out.
// The returned error is non-nil only if the envelope itself couldn't be
// written.
func Serve(ctx context.Context, reg *Registry, command string, codec Codec, in io.Reader, out io.Writer) error {
	env := serveEnvelope(ctx, reg, command, codec, in)
	data, err := codec.Marshal(env)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrMalformed, "couldn't encode response envelope", "")
	}
	_, err = out.Write(data)
	return err
}

func serveEnvelope(ctx context.Context, reg *Registry, command string, codec Codec, in io.Reader) Envelope {
	args := Args{}
	if in != nil {
		raw, err := io.ReadAll(in)
		if err != nil {
			return failure(errors.ErrMalformed, "couldn't read arguments: "+err.Error())
		}
		if len(bytes.TrimSpace(raw)) > 0 {
			if err := codec.Unmarshal(raw, &args); err != nil {
				return failure(errors.ErrMalformed, "couldn't decode arguments: "+err.Error())
			}
		}
	}

	res, err := reg.Invoke(ctx, command, args)
	if err != nil {
		code := errors.CodeOf(err)
		if code == "" {
			code = errors.ErrRejected
		}
		return failure(code, errors.Summary(err))
	}
	return Envelope{OK: true, Data: res.Value}
}

func failure(code, message string) Envelope {
	return Envelope{Error: &EnvelopeError{Code: code, Message: message}}
}
