//go:build integration

package mqtt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
`

func startMosquitto(ctx context.Context, t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(path, []byte(mosquittoConf), 0o644))
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{{
			HostFilePath:      path,
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func TestCancelRoundTripThroughBroker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	broker := startMosquitto(ctx, t)

	cli, err := NewPahoClient(Config{Enabled: true, Broker: broker, TopicPrefix: "it", QoS: 1})
	require.NoError(t, err)
	defer cli.Disconnect()
	got := make(chan string, 1)
	cli.OnCancel(func(id string) { got <- id })

	other := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("it-listener"))
	tok := other.Connect()
	require.True(t, tok.WaitTimeout(10*time.Second))
	require.NoError(t, tok.Error())
	defer other.Disconnect(100)

	// the subscription is made in OnConnect, retry until it is active
	deadline := time.After(10 * time.Second)
	for {
		other.Publish("it/cancel", 1, false, `{"run_id":"run-42"}`).Wait()
		select {
		case id := <-got:
			assert.Equal(t, "run-42", id)
			return
		case <-time.After(200 * time.Millisecond):
		case <-deadline:
			t.Fatal("cancel request not received")
		}
	}
}
