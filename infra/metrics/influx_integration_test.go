//go:build integration

package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	coremetrics "github.com/kilianp07/starobs/core/metrics"
)

func startInflux(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "starobs",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "starobs-password",
			"DOCKER_INFLUXDB_INIT_ORG":         "org",
			"DOCKER_INFLUXDB_INIT_BUCKET":      "bucket",
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": "token",
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "8086")
	require.NoError(t, err)
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestInfluxSinkAgainstContainer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	url := startInflux(ctx, t)

	sink := NewInfluxSinkWithFallback(url, "token", "org", "bucket")
	require.IsType(t, &InfluxSink{}, sink)
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{
		RunID: "it-1", Algorithm: "dynamic-programming", Profit: 14, Bound: 14, Time: time.Now(),
	}))

	client := influxdb2.NewClient(url, "token")
	defer client.Close()
	res, err := client.QueryAPI("org").Query(ctx,
		`from(bucket:"bucket") |> range(start:-1h) |> filter(fn:(r) => r._measurement == "solver_run" and r._field == "profit")`)
	require.NoError(t, err)
	var values []any
	for res.Next() {
		values = append(values, res.Record().Value())
	}
	require.NoError(t, res.Err())
	assert.Equal(t, []any{14.0}, values)
}
