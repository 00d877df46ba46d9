package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/security"
	"github.com/oshokin/catpoint/internal/service/client"
	"github.com/oshokin/catpoint/internal/service/watcher"
)

// recordingHook counts on-alarm runs.
type recordingHook struct {
	runs int
}

func (h *recordingHook) Run(context.Context, []string) error {
	h.runs++
	return nil
}

// TestWatcher_RunsHookOnAlarm polls a live server while the ctl commands break in.
func TestWatcher_RunsHookOnAlarm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := startGRPC(t, filepath.Join(t.TempDir(), "state.yaml"), config.DetectorNever)
	h := new(recordingHook)
	w := watcher.New(c, h)

	var out bytes.Buffer

	require.NoError(t, client.AddSensor(ctx, c, &out, "Garage", "door"))
	require.NoError(t, client.Arm(ctx, c, &out, "armed_away"))
	require.NoError(t, w.Poll(ctx))

	require.NoError(t, client.SetSensorActive(ctx, c, &out, "Garage", true))
	require.NoError(t, w.Poll(ctx))
	require.Zero(t, h.runs)

	require.NoError(t, client.SetSensorActive(ctx, c, &out, "Garage", true))
	require.NoError(t, w.Poll(ctx))
	require.NoError(t, w.Poll(ctx))
	require.Equal(t, 1, h.runs)

	out.Reset()
	require.NoError(t, client.Status(ctx, c, &out))
	require.Contains(t, out.String(), "alarm:  "+domain.Alarm.String())
}
