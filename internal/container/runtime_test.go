// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdin, stdout)
	}
	return nil
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name:    "neither available",
			exec:    &mockExecutor{},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detect(context.Background(), tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	ctx := context.Background()
	docker := newDockerRuntime(&mockExecutor{runnableCmds: map[string]bool{"docker image inspect markitdown:latest": true}})
	assert.NoError(t, docker.ImageExists(ctx, "markitdown:latest"))

	podman := newPodmanRuntime(&mockExecutor{})
	err := podman.ImageExists(ctx, "markitdown:latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markitdown:latest")
}

func TestRun(t *testing.T) {
	var gotArgs []string
	exec := &mockExecutor{
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			gotArgs = append([]string{name}, args...)
			data, _ := io.ReadAll(stdin)
			_, _ = stdout.Write([]byte("converted: " + string(data)))
			return nil
		},
	}
	var out bytes.Buffer
	require.NoError(t, newDockerRuntime(exec).Run(context.Background(), "markitdown:latest", strings.NewReader("pdf"), &out))
	assert.Equal(t, "converted: pdf", out.String())
	assert.Equal(t, []string{"docker", "run", "--rm", "-i", "--network", "none", "markitdown:latest"}, gotArgs)

	exec.runPipedFunc = func(string, []string, io.Reader, io.Writer) error { return errors.New("exit 1") }
	err := newPodmanRuntime(exec).Run(context.Background(), "markitdown:latest", strings.NewReader("pdf"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running podman container markitdown:latest")
}
