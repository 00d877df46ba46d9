package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/security"
	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/service/common"
)

// Options configures how catpoint-ctl reaches the server.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
}

// Backend is the part of the security API used by the commands.
type Backend interface {
	GetStatus(ctx context.Context) (*api.Snapshot, error)
	SetArmingStatus(ctx context.Context, arming domain.ArmingStatus) (*api.Snapshot, error)
	AddSensor(ctx context.Context, name string, sensorType domain.SensorType) (*domain.Sensor, error)
	RemoveSensor(ctx context.Context, id uuid.UUID) error
	ChangeSensorActivation(ctx context.Context, id uuid.UUID, active bool) (*api.Snapshot, error)
	ProcessImage(ctx context.Context, frame []byte) (*api.Snapshot, error)
}

var (
	// ErrSensorNotFound is returned when a reference matches no sensor.
	ErrSensorNotFound = errors.New("no sensor matches")
	// ErrAmbiguousSensor is returned when a name matches several sensors.
	ErrAmbiguousSensor = errors.New("several sensors match, use the id")
)

// Connect loads settings and dials the server. The caller closes the client.
func Connect(ctx context.Context, opts *Options) (*common.Client, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Identify current user and hostname for audit logging.
	actor, err := common.DetectActor()
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connecting", "server_address", serverAddress, "actor", actor.String())

	return common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout), common.WithActor(actor))
}

// Status prints statuses and sensors.
func Status(ctx context.Context, backend Backend, out io.Writer) error {
	snapshot, err := backend.GetStatus(ctx)
	if err != nil {
		return err
	}

	return PrintSnapshot(out, snapshot)
}

// Arm switches the arming mode and prints the resulting status.
func Arm(ctx context.Context, backend Backend, out io.Writer, mode string) error {
	arming, err := domain.ParseArmingStatus(mode)
	if err != nil {
		return err
	}

	snapshot, err := backend.SetArmingStatus(ctx, arming)
	if err != nil {
		return err
	}

	return PrintSnapshot(out, snapshot)
}

// AddSensor registers a sensor and prints its id.
func AddSensor(ctx context.Context, backend Backend, out io.Writer, name, typeName string) error {
	sensorType, err := domain.ParseSensorType(typeName)
	if err != nil {
		return err
	}

	sensor, err := backend.AddSensor(ctx, name, sensorType)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, sensor.ID)

	return err
}

// RemoveSensor deletes the sensor matching ref.
func RemoveSensor(ctx context.Context, backend Backend, ref string) error {
	sensor, err := ResolveSensor(ctx, backend, ref)
	if err != nil {
		return err
	}

	return backend.RemoveSensor(ctx, sensor.ID)
}

// SetSensorActive activates or deactivates the sensor matching ref.
func SetSensorActive(ctx context.Context, backend Backend, out io.Writer, ref string, active bool) error {
	sensor, err := ResolveSensor(ctx, backend, ref)
	if err != nil {
		return err
	}

	snapshot, err := backend.ChangeSensorActivation(ctx, sensor.ID, active)
	if err != nil {
		return err
	}

	return PrintSnapshot(out, snapshot)
}

// ListSensors prints only the sensor table.
func ListSensors(ctx context.Context, backend Backend, out io.Writer) error {
	snapshot, err := backend.GetStatus(ctx)
	if err != nil {
		return err
	}

	return printSensors(out, snapshot.Status.Sensors)
}

// SubmitImage sends the image at path to the server and prints the verdict.
func SubmitImage(ctx context.Context, backend Backend, out io.Writer, path string) error {
	frame, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	snapshot, err := backend.ProcessImage(ctx, frame)
	if err != nil {
		return err
	}

	return PrintSnapshot(out, snapshot)
}

// ResolveSensor finds a sensor by id or, failing that, by exact name.
func ResolveSensor(ctx context.Context, backend Backend, ref string) (*domain.Sensor, error) {
	snapshot, err := backend.GetStatus(ctx)
	if err != nil {
		return nil, err
	}

	ref = strings.TrimSpace(ref)

	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		for _, sensor := range snapshot.Status.Sensors {
			if sensor.ID == id {
				return sensor, nil
			}
		}

		return nil, fmt.Errorf("%w: %s", ErrSensorNotFound, ref)
	}

	var found *domain.Sensor

	for _, sensor := range snapshot.Status.Sensors {
		if sensor.Name != ref {
			continue
		}

		if found != nil {
			return nil, fmt.Errorf("%w: %q", ErrAmbiguousSensor, ref)
		}

		found = sensor
	}

	if found == nil {
		return nil, fmt.Errorf("%w: %q", ErrSensorNotFound, ref)
	}

	return found, nil
}
