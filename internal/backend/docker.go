package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	dockerCheckTimeout = 5 * time.Second
	dockerListTimeout  = 10 * time.Second
	dockerOpTimeout    = 30 * time.Second

	defaultLogTail = 100
	maxLogTail     = 10000
)

// containerRef is what docker accepts as a container ID or name. Anything
// else, in particular a leading '-', never reaches the CLI.
var containerRef = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

func (b *Backend) dockerAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, dockerCheckTimeout)
	defer cancel()
	_, err := b.run.Output(ctx, "docker", "info", "--format", "{{.ServerVersion}}")
	if err != nil {
		b.log.Debug("docker unavailable: %v", err)
		return false
	}
	return true
}

// containers answers get_docker_containers with docker's own JSON rows,
// one object per line of `docker ps -a --format {{json .}}`. Lines that
// don't parse are skipped.
func (b *Backend) containers(ctx context.Context) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, dockerListTimeout)
	defer cancel()

	raw, err := b.run.Output(ctx, "docker", "ps", "-a", "--no-trunc", "--format", "{{json .}}")
	if err != nil {
		return nil, rejected("Docker is not available: "+err.Error(),
			"Start Docker, or check that your user may talk to the daemon.")
	}
	return parseDockerPS(string(raw), b.log.Debug), nil
}

func parseDockerPS(output string, skipped func(string, ...any)) []map[string]any {
	out := []map[string]any{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row := map[string]any{}
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			skipped("skipping docker ps line: %v", err)
			continue
		}
		out = append(out, row)
	}
	return out
}

func (b *Backend) containerOp(ctx context.Context, op, id string) error {
	if !containerRef.MatchString(id) {
		return rejected(fmt.Sprintf("invalid container id %q", id), "")
	}
	ctx, cancel := context.WithTimeout(ctx, dockerOpTimeout)
	defer cancel()
	if _, err := b.run.Output(ctx, "docker", op, id); err != nil {
		return rejected(fmt.Sprintf("docker %s %s failed: %v", op, id, err), "")
	}
	b.log.Info("docker %s %s", op, id)
	return nil
}

// containerLogs returns the last tail lines of a container's output, stdout
// and stderr interleaved.
func (b *Backend) containerLogs(ctx context.Context, id string, tail int) (string, error) {
	if !containerRef.MatchString(id) {
		return "", rejected(fmt.Sprintf("invalid container id %q", id), "")
	}
	if tail <= 0 {
		tail = defaultLogTail
	}
	tail = min(tail, maxLogTail)

	ctx, cancel := context.WithTimeout(ctx, dockerOpTimeout)
	defer cancel()
	out, err := b.run.CombinedOutput(ctx, "docker", "logs", "--tail", strconv.Itoa(tail), id)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return "", rejected("Failed to read logs for "+id+": "+msg, "")
	}
	return string(out), nil
}
