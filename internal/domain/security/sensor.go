package security

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// SensorType is the kind of physical point a sensor monitors.
type SensorType int

const (
	// Door monitors a door contact.
	Door SensorType = iota
	// Window monitors a window contact.
	Window
	// Motion monitors a motion detector.
	Motion
)

// ErrUnknownSensorType is returned when a string does not name a sensor type.
var ErrUnknownSensorType = errors.New("unknown sensor type")

//nolint:gochecknoglobals // Lookup table for enum names.
var sensorTypeNames = map[SensorType]string{
	Door:   "DOOR",
	Window: "WINDOW",
	Motion: "MOTION",
}

// String returns the canonical upper-case name of the type.
func (t SensorType) String() string {
	if name, ok := sensorTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("SensorType(%d)", int(t))
}

// IsValid reports whether t is one of the declared sensor types.
func (t SensorType) IsValid() bool {
	_, ok := sensorTypeNames[t]

	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (t SensorType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSensorType, int(t))
	}

	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *SensorType) UnmarshalText(text []byte) error {
	parsed, err := ParseSensorType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// ParseSensorType converts a name such as "window" into a SensorType.
func ParseSensorType(s string) (SensorType, error) {
	normalized := normalizeName(s)
	for sensorType, name := range sensorTypeNames {
		if name == normalized {
			return sensorType, nil
		}
	}

	return Door, fmt.Errorf("%w: %q", ErrUnknownSensorType, s)
}

// Sensor is a monitored point with a binary activation state.
// Several sensors may share a name, the ID tells them apart.
type Sensor struct {
	// ID uniquely identifies the sensor in the repository.
	ID uuid.UUID
	// Name is the operator-given label, e.g. "Front door".
	Name string
	// Type is the kind of point being monitored.
	Type SensorType
	// Active is true while the sensor is triggered.
	Active bool
}

// NewSensor creates an inactive sensor with a fresh random ID.
func NewSensor(name string, sensorType SensorType) *Sensor {
	return &Sensor{
		ID:   uuid.New(),
		Name: name,
		Type: sensorType,
	}
}

// Clone returns a copy of the sensor.
func (s *Sensor) Clone() *Sensor {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// String implements fmt.Stringer for log output.
func (s *Sensor) String() string {
	if s == nil {
		return "<nil sensor>"
	}

	return fmt.Sprintf("%s %q (%s, active=%t)", s.Type, s.Name, s.ID, s.Active)
}

// CompareSensors orders sensors by name, type, activation and finally ID.
func CompareSensors(a, b *Sensor) int {
	return cmp.Or(
		strings.Compare(a.Name, b.Name),
		cmp.Compare(a.Type, b.Type),
		compareBool(a.Active, b.Active),
		strings.Compare(a.ID.String(), b.ID.String()),
	)
}

// SortSensors sorts sensors in place using CompareSensors.
func SortSensors(sensors []*Sensor) {
	slices.SortFunc(sensors, CompareSensors)
}

// CloneSensors returns a deep copy of the slice.
func CloneSensors(sensors []*Sensor) []*Sensor {
	if sensors == nil {
		return nil
	}

	result := make([]*Sensor, 0, len(sensors))
	for _, sensor := range sensors {
		result = append(result, sensor.Clone())
	}

	return result
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Status is a point-in-time view of the whole system.
type Status struct {
	// AlarmStatus is the current alarm severity.
	AlarmStatus AlarmStatus
	// ArmingStatus is the current arming mode.
	ArmingStatus ArmingStatus
	// Sensors are all known sensors in CompareSensors order.
	Sensors []*Sensor
}

// Clone returns a deep copy of the status.
func (s *Status) Clone() *Status {
	if s == nil {
		return nil
	}

	return &Status{
		AlarmStatus:  s.AlarmStatus,
		ArmingStatus: s.ArmingStatus,
		Sensors:      CloneSensors(s.Sensors),
	}
}
