//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	domain "github.com/oshokin/catpoint/internal/domain/security"
)

// recordingConn answers every call with a canned response and records the request.
type recordingConn struct {
	method   string
	request  any
	actor    []string
	response proto.Message
}

func (c *recordingConn) Invoke(ctx context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	c.method = method
	c.request = args

	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		c.actor = md.Get(ActorMetadataKey)
	}

	if c.response != nil {
		proto.Merge(reply.(proto.Message), c.response)
	}

	return nil
}

func (c *recordingConn) NewStream(
	context.Context, *grpc.StreamDesc, string, ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return nil, errNotConnected
}

// TestDial_ValidatesAddress verifies that Dial rejects empty addresses.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, c)
}

// TestClient_callContext checks timeout vs cancel-only behavior of callContext.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{
		callTimeout: 0,
	}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	require.NotNil(t, ctx)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}

// TestClient_NotConnected asserts that a zero client refuses to call.
func TestClient_NotConnected(t *testing.T) {
	t.Parallel()

	c := new(Client)

	_, err := c.GetStatus(context.Background())
	require.ErrorIs(t, err, errNotConnected)
	require.NoError(t, c.Close())
}

// TestClient_SetArmingStatus checks the request shape, actor metadata and response decoding.
func TestClient_SetArmingStatus(t *testing.T) {
	t.Parallel()

	status := &domain.Status{
		AlarmStatus:  domain.NoAlarm,
		ArmingStatus: domain.ArmedHome,
	}
	conn := &recordingConn{response: api.EncodeSnapshot(status, false)}
	c := NewClient(conn, WithActor(&Actor{Hostname: "desk", Username: "anna"}))

	snapshot, err := c.SetArmingStatus(context.Background(), domain.ArmedHome)
	require.NoError(t, err)
	require.Equal(t, domain.ArmedHome, snapshot.Status.ArmingStatus)
	require.Equal(t, api.SetArmingStatusMethod, conn.method)
	require.Equal(t, "ARMED_HOME", conn.request.(*wrapperspb.StringValue).GetValue())
	require.Equal(t, []string{"anna@desk"}, conn.actor)
}

// TestClient_AddSensor checks the sensor request and decoded reply.
func TestClient_AddSensor(t *testing.T) {
	t.Parallel()

	stored := domain.NewSensor("Back door", domain.Door)
	conn := &recordingConn{response: api.EncodeSensor(stored)}
	c := NewClient(conn)

	sensor, err := c.AddSensor(context.Background(), "Back door", domain.Door)
	require.NoError(t, err)
	require.Equal(t, stored, sensor)

	request := conn.request.(*structpb.Struct)
	require.Equal(t, "Back door", request.GetFields()[api.FieldName].GetStringValue())
	require.Equal(t, "DOOR", request.GetFields()[api.FieldType].GetStringValue())
	require.Empty(t, conn.actor)
}

// TestClient_RemoveSensor checks the id is sent as a string value.
func TestClient_RemoveSensor(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	conn := new(recordingConn)

	require.NoError(t, NewClient(conn).RemoveSensor(context.Background(), id))
	require.Equal(t, api.RemoveSensorMethod, conn.method)
	require.Equal(t, id.String(), conn.request.(*wrapperspb.StringValue).GetValue())
}
