package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/catpoint/internal/domain/security"
)

// TestMemoryRepository_Sensors covers add, update, remove and copy semantics.
func TestMemoryRepository_Sensors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepository()

	sensor := domain.NewSensor("Hall", domain.Motion)
	require.NoError(t, repo.AddSensor(ctx, sensor))

	// Same name is allowed, the ID differs.
	twin := domain.NewSensor("Hall", domain.Motion)
	require.NoError(t, repo.AddSensor(ctx, twin))

	sensors, err := repo.Sensors(ctx)
	require.NoError(t, err)
	require.Len(t, sensors, 2)

	// Mutating a returned value does not leak into the repository.
	sensors[0].Active = true

	sensors, err = repo.Sensors(ctx)
	require.NoError(t, err)
	require.False(t, sensors[0].Active)

	sensor.Active = true
	require.NoError(t, repo.UpdateSensor(ctx, sensor))

	require.NoError(t, repo.RemoveSensor(ctx, twin))
	require.NoError(t, repo.RemoveSensor(ctx, twin))

	sensors, err = repo.Sensors(ctx)
	require.NoError(t, err)
	require.Equal(t, []*domain.Sensor{sensor}, sensors)
}

// TestMemoryRepository_Validation verifies invalid and unknown sensors are rejected.
func TestMemoryRepository_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepository()

	require.ErrorIs(t, repo.AddSensor(ctx, nil), ErrInvalidSensor)
	require.ErrorIs(t, repo.AddSensor(ctx, &domain.Sensor{Name: "no id"}), ErrInvalidSensor)
	require.ErrorIs(t, repo.UpdateSensor(ctx, domain.NewSensor("ghost", domain.Door)), ErrSensorNotFound)
}

// TestMemoryRepository_Statuses verifies defaults and setters.
func TestMemoryRepository_Statuses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.SetAlarmStatus(ctx, domain.Alarm))
	require.NoError(t, repo.SetArmingStatus(ctx, domain.ArmedHome))

	alarm, err := repo.AlarmStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Alarm, alarm)

	arming, err := repo.ArmingStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.ArmedHome, arming)
}
