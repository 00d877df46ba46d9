package client

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	domain "github.com/oshokin/catpoint/internal/domain/security"
)

// fakeBackend keeps a status in memory and records the last call.
type fakeBackend struct {
	status  domain.Status
	removed uuid.UUID
	frame   []byte
}

func (b *fakeBackend) snapshot() *api.Snapshot {
	return &api.Snapshot{Status: b.status.Clone()}
}

func (b *fakeBackend) GetStatus(context.Context) (*api.Snapshot, error) {
	return b.snapshot(), nil
}

func (b *fakeBackend) SetArmingStatus(_ context.Context, arming domain.ArmingStatus) (*api.Snapshot, error) {
	b.status.ArmingStatus = arming
	return b.snapshot(), nil
}

func (b *fakeBackend) AddSensor(_ context.Context, name string, sensorType domain.SensorType) (*domain.Sensor, error) {
	sensor := domain.NewSensor(name, sensorType)
	b.status.Sensors = append(b.status.Sensors, sensor)

	return sensor.Clone(), nil
}

func (b *fakeBackend) RemoveSensor(_ context.Context, id uuid.UUID) error {
	b.removed = id
	return nil
}

func (b *fakeBackend) ChangeSensorActivation(_ context.Context, id uuid.UUID, active bool) (*api.Snapshot, error) {
	for _, sensor := range b.status.Sensors {
		if sensor.ID == id {
			sensor.Active = active
		}
	}

	return b.snapshot(), nil
}

func (b *fakeBackend) ProcessImage(_ context.Context, frame []byte) (*api.Snapshot, error) {
	b.frame = frame
	return b.snapshot(), nil
}

// TestCommands_Flow runs the operator commands against a fake server.
func TestCommands_Flow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := new(fakeBackend)

	var out bytes.Buffer
	require.NoError(t, AddSensor(ctx, backend, &out, "Kitchen window", "window"))
	require.Len(t, backend.status.Sensors, 1)
	require.Contains(t, out.String(), backend.status.Sensors[0].ID.String())

	out.Reset()
	require.NoError(t, Arm(ctx, backend, &out, "armed-home"))
	require.Equal(t, domain.ArmedHome, backend.status.ArmingStatus)
	require.Contains(t, out.String(), "arming: ARMED_HOME")

	out.Reset()
	require.NoError(t, SetSensorActive(ctx, backend, &out, "Kitchen window", true))
	require.True(t, backend.status.Sensors[0].Active)

	out.Reset()
	require.NoError(t, ListSensors(ctx, backend, &out))
	require.Contains(t, out.String(), "Kitchen window")
	require.Contains(t, out.String(), "WINDOW")

	require.NoError(t, RemoveSensor(ctx, backend, backend.status.Sensors[0].ID.String()))
	require.Equal(t, backend.status.Sensors[0].ID, backend.removed)

	require.Error(t, Arm(ctx, backend, &out, "armed"))
	require.Error(t, AddSensor(ctx, backend, &out, "Porch", "chimney"))
}

// TestResolveSensor covers id lookup, name lookup, ambiguity and misses.
func TestResolveSensor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := domain.NewSensor("Hall", domain.Motion)
	second := domain.NewSensor("Hall", domain.Motion)
	backend := &fakeBackend{status: domain.Status{Sensors: []*domain.Sensor{first, second}}}

	sensor, err := ResolveSensor(ctx, backend, second.ID.String())
	require.NoError(t, err)
	require.Equal(t, second.ID, sensor.ID)

	_, err = ResolveSensor(ctx, backend, "Hall")
	require.ErrorIs(t, err, ErrAmbiguousSensor)

	_, err = ResolveSensor(ctx, backend, "Garage")
	require.ErrorIs(t, err, ErrSensorNotFound)

	_, err = ResolveSensor(ctx, backend, uuid.NewString())
	require.ErrorIs(t, err, ErrSensorNotFound)
}

// TestSubmitImage reads the file and forwards its bytes.
func TestSubmitImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(path, []byte("frame"), 0o600))

	backend := new(fakeBackend)

	var out bytes.Buffer
	require.NoError(t, SubmitImage(context.Background(), backend, &out, path))
	require.Equal(t, []byte("frame"), backend.frame)
	require.Contains(t, out.String(), "no sensors")

	require.Error(t, SubmitImage(context.Background(), backend, &out, filepath.Join(t.TempDir(), "missing.png")))
}
