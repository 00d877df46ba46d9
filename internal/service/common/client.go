//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/security"
)

// Client wraps the gRPC SecurityService with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the security server.
	conn grpc.ClientConnInterface
	// closer releases conn, nil for borrowed connections.
	closer func() error
	// actor is attached to every call as metadata.
	actor *Actor

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor identifies the caller on every request.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errNotConnected is returned when a call is made on a client without a connection.
	errNotConnected = errors.New("client is not connected")
)

// Dial establishes a gRPC connection to the security server.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial security server: %w", err)
	}

	client := NewClient(conn, opts...)
	client.closer = conn.Close

	return client, nil
}

// NewClient wraps an existing connection. Close does not release it.
func NewClient(conn grpc.ClientConnInterface, opts ...Option) *Client {
	client := &Client{
		conn:        conn,
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}

	return c.closer()
}

// GetStatus retrieves statuses, sensors and the latest cat verdict.
func (c *Client) GetStatus(ctx context.Context) (*api.Snapshot, error) {
	return c.snapshotCall(ctx, "get status", api.GetStatusMethod, new(emptypb.Empty))
}

// SetArmingStatus changes the arming mode.
func (c *Client) SetArmingStatus(ctx context.Context, arming domain.ArmingStatus) (*api.Snapshot, error) {
	return c.snapshotCall(ctx, "set arming status", api.SetArmingStatusMethod, wrapperspb.String(arming.String()))
}

// AddSensor registers a new inactive sensor and returns it with its assigned ID.
func (c *Client) AddSensor(ctx context.Context, name string, sensorType domain.SensorType) (*domain.Sensor, error) {
	request := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			api.FieldName: structpb.NewStringValue(name),
			api.FieldType: structpb.NewStringValue(sensorType.String()),
		},
	}

	response := new(structpb.Struct)
	if err := c.invoke(ctx, api.AddSensorMethod, request, response); err != nil {
		return nil, fmt.Errorf("add sensor: %w", err)
	}

	sensor, err := api.DecodeSensor(response)
	if err != nil {
		return nil, fmt.Errorf("add sensor: %w", err)
	}

	return sensor, nil
}

// RemoveSensor deletes a sensor by ID.
func (c *Client) RemoveSensor(ctx context.Context, id uuid.UUID) error {
	if err := c.invoke(ctx, api.RemoveSensorMethod, wrapperspb.String(id.String()), new(emptypb.Empty)); err != nil {
		return fmt.Errorf("remove sensor: %w", err)
	}

	return nil
}

// ChangeSensorActivation activates or deactivates a sensor.
func (c *Client) ChangeSensorActivation(ctx context.Context, id uuid.UUID, active bool) (*api.Snapshot, error) {
	request := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			api.FieldID:     structpb.NewStringValue(id.String()),
			api.FieldActive: structpb.NewBoolValue(active),
		},
	}

	return c.snapshotCall(ctx, "change sensor activation", api.ChangeSensorActivationMethod, request)
}

// ProcessImage submits an encoded camera frame.
func (c *Client) ProcessImage(ctx context.Context, frame []byte) (*api.Snapshot, error) {
	return c.snapshotCall(ctx, "process image", api.ProcessImageMethod, wrapperspb.Bytes(frame))
}

func (c *Client) snapshotCall(ctx context.Context, operation, method string, request any) (*api.Snapshot, error) {
	response := new(structpb.Struct)
	if err := c.invoke(ctx, method, request, response); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	snapshot, err := api.DecodeSnapshot(response)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	return snapshot, nil
}

func (c *Client) invoke(ctx context.Context, method string, request, response any) error {
	if c == nil || c.conn == nil {
		return errNotConnected
	}

	callCtx, cancel := c.callContext(withActor(ctx, c.actor))
	defer cancel()

	return c.conn.Invoke(callCtx, method, request, response)
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
