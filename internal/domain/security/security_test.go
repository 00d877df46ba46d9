package security

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestParseStatuses verifies name parsing is tolerant to case and dashes and rejects unknown names.
func TestParseStatuses(t *testing.T) {
	t.Parallel()

	alarm, err := ParseAlarmStatus(" pending-alarm ")
	require.NoError(t, err)
	require.Equal(t, PendingAlarm, alarm)

	arming, err := ParseArmingStatus("armed_away")
	require.NoError(t, err)
	require.Equal(t, ArmedAway, arming)

	sensorType, err := ParseSensorType("Motion")
	require.NoError(t, err)
	require.Equal(t, Motion, sensorType)

	_, err = ParseAlarmStatus("ringing")
	require.ErrorIs(t, err, ErrUnknownAlarmStatus)

	_, err = ParseArmingStatus("armed")
	require.ErrorIs(t, err, ErrUnknownArmingStatus)

	_, err = ParseSensorType("garage")
	require.ErrorIs(t, err, ErrUnknownSensorType)
}

// TestStatusText checks text marshalling of valid and out-of-range values.
func TestStatusText(t *testing.T) {
	t.Parallel()

	text, err := ArmedHome.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "ARMED_HOME", string(text))

	var arming ArmingStatus
	require.NoError(t, arming.UnmarshalText([]byte("DISARMED")))
	require.Equal(t, Disarmed, arming)

	_, err = AlarmStatus(42).MarshalText()
	require.ErrorIs(t, err, ErrUnknownAlarmStatus)
	require.Equal(t, "AlarmStatus(42)", AlarmStatus(42).String())

	require.False(t, ArmingStatus(-1).IsValid())
	require.True(t, ArmedAway.IsArmed())
	require.False(t, Disarmed.IsArmed())
}

// TestSensorCloneAndOrder verifies Clone copies and SortSensors uses name, type, activation.
func TestSensorCloneAndOrder(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Sensor)(nil).Clone())

	door := NewSensor("Front", Door)
	require.NotEqual(t, uuid.Nil, door.ID)
	require.False(t, door.Active)

	cloned := door.Clone()
	require.Equal(t, door, cloned)
	require.NotSame(t, door, cloned)

	activeDoor := NewSensor("Front", Door)
	activeDoor.Active = true

	window := NewSensor("Front", Window)
	back := NewSensor("Back", Motion)

	sensors := []*Sensor{activeDoor, window, door, back}
	SortSensors(sensors)

	require.Equal(t, []*Sensor{back, door, activeDoor, window}, sensors)
}

// TestStatusClone ensures Status.Clone deep-copies sensors.
func TestStatusClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Status)(nil).Clone())

	s := &Status{
		AlarmStatus:  Alarm,
		ArmingStatus: ArmedHome,
		Sensors:      []*Sensor{NewSensor("Hall", Motion)},
	}

	c := s.Clone()
	require.Equal(t, s, c)
	require.NotSame(t, s.Sensors[0], c.Sensors[0])
}
