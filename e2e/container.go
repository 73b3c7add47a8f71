//go:build integration

package e2e

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// HelloContainer is a running hellodock image.
type HelloContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// StartHello builds the repository Dockerfile and runs it with PORT set to
// port. It waits until GET / answers 200.
func StartHello(ctx context.Context, port int) (*HelloContainer, error) {
	root, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("finding project root: %w", err)
	}

	exposed, err := nat.NewPort("tcp", strconv.Itoa(port))
	if err != nil {
		return nil, fmt.Errorf("building container port: %w", err)
	}
	req := testcontainers.ContainerRequest{
		FromDockerfile: testcontainers.FromDockerfile{
			Context:    root,
			Dockerfile: "Dockerfile",
			KeepImage:  true,
		},
		ExposedPorts: []string{string(exposed)},
		Env:          map[string]string{"PORT": strconv.Itoa(port)},
		WaitingFor:   wait.ForHTTP("/").WithPort(exposed).WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("starting hellodock container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("getting container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, exposed)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("getting mapped port: %w", err)
	}

	return &HelloContainer{Container: container, Host: host, Port: mapped.Port()}, nil
}

// URL returns the base URL of the container's published port.
func (c *HelloContainer) URL() string {
	return fmt.Sprintf("http://%s:%s", c.Host, c.Port)
}

// Logs returns everything the container has written so far.
func (c *HelloContainer) Logs(ctx context.Context) (string, error) {
	reader, err := c.Container.Logs(ctx)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Terminate stops and removes the container.
func (c *HelloContainer) Terminate(ctx context.Context) error {
	if c.Container != nil {
		return c.Container.Terminate(ctx)
	}
	return nil
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}
