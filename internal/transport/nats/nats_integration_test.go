package nats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mjwatson/stream-proxy/internal/stage"
)

func startNATSContainer(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "nats:latest",
		ExposedPorts: []string{"4222/tcp"},
		WaitingFor:   wait.ForListeningPort("4222/tcp"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	url := fmt.Sprintf("nats://%s:%s", host, port.Port())
	time.Sleep(100 * time.Millisecond)
	return container, url
}

func TestIntegration_PublishSubscribeRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed integration test in -short mode")
	}
	ctx := context.Background()
	container, url := startNATSContainer(ctx, t)
	defer container.Terminate(ctx)

	srcStage, err := newStage(0, url+",updates")
	require.NoError(t, err)
	src := srcStage.(*source)
	defer src.Close()

	sinkStage, err := newStage(1, url+",updates")
	require.NoError(t, err)
	snk := sinkStage.(*sink)
	defer snk.Close()

	time.Sleep(100 * time.Millisecond) // let the subscription register

	_, _, err = snk.Push(stage.StateActive, []byte("hello subject"))
	require.NoError(t, err)

	data, err := src.Pull()
	require.NoError(t, err)
	assert.Equal(t, "hello subject", string(data))
}
