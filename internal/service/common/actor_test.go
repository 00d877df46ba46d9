//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

// TestDetectActor ensures hostname and username are detected and non-empty.
func TestDetectActor(t *testing.T) {
	t.Parallel()

	a, err := DetectActor()
	require.NoError(t, err)
	require.NotEmpty(t, a.Hostname)
	require.NotEmpty(t, a.Username)
}

// TestActor_Metadata verifies the actor travels through outgoing metadata.
func TestActor_Metadata(t *testing.T) {
	t.Parallel()

	actor := &Actor{Hostname: "desk", Username: "anna"}
	require.Equal(t, "anna@desk", actor.String())
	require.Equal(t, "<unknown>", (*Actor)(nil).String())

	ctx := withActor(context.Background(), actor)
	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)

	incoming := metadata.NewIncomingContext(context.Background(), md)
	require.Equal(t, "anna@desk", ActorFromIncoming(incoming))
	require.Empty(t, ActorFromIncoming(context.Background()))
}
