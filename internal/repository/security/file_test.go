package security

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/catpoint/internal/domain/security"
)

// TestOpenFileRepository_Missing verifies a missing file yields default statuses and no sensors.
func TestOpenFileRepository_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.yaml")
	repo, err := OpenFileRepository(path)
	require.NoError(t, err)
	require.Equal(t, "yaml", repo.Format())

	ctx := context.Background()

	alarm, err := repo.AlarmStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.NoAlarm, alarm)

	arming, err := repo.ArmingStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Disarmed, arming)

	sensors, err := repo.Sensors(ctx)
	require.NoError(t, err)
	require.Empty(t, sensors)

	// Nothing is written until the first change.
	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileRepository_Reopen ensures every change survives reopening, for both codecs.
func TestFileRepository_Reopen(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"state.yaml", "state.msgpack"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			path := filepath.Join(t.TempDir(), name)

			repo, err := OpenFileRepository(path)
			require.NoError(t, err)

			door := domain.NewSensor("Front door", domain.Door)
			door.Active = true
			window := domain.NewSensor("Kitchen", domain.Window)

			require.NoError(t, repo.AddSensor(ctx, door))
			require.NoError(t, repo.AddSensor(ctx, window))
			require.NoError(t, repo.SetAlarmStatus(ctx, domain.PendingAlarm))
			require.NoError(t, repo.SetArmingStatus(ctx, domain.ArmedAway))

			reopened, err := OpenFileRepository(path)
			require.NoError(t, err)

			alarm, err := reopened.AlarmStatus(ctx)
			require.NoError(t, err)
			require.Equal(t, domain.PendingAlarm, alarm)

			arming, err := reopened.ArmingStatus(ctx)
			require.NoError(t, err)
			require.Equal(t, domain.ArmedAway, arming)

			sensors, err := reopened.Sensors(ctx)
			require.NoError(t, err)
			require.Equal(t, []*domain.Sensor{door, window}, sensors)
		})
	}
}

// TestOpenFileRepository_Corrupt verifies undecodable content is reported instead of ignored.
func TestOpenFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("alarm_status: RINGING\n"), 0o600))

	repo, err := OpenFileRepository(path)
	require.ErrorIs(t, err, domain.ErrUnknownAlarmStatus)
	require.Nil(t, repo)
}

// TestFileRepository_WriteFailureKeepsState checks a failed write does not change what the repository reports.
func TestFileRepository_WriteFailureKeepsState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.Mkdir(dir, 0o700))

	repo, err := OpenFileRepository(filepath.Join(dir, "state.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	err = repo.SetAlarmStatus(ctx, domain.Alarm)
	require.Error(t, err)

	alarm, err := repo.AlarmStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.NoAlarm, alarm)
}
