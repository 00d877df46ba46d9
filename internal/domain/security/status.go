package security

import (
	"errors"
	"fmt"
	"strings"
)

// AlarmStatus is the current severity of the system.
type AlarmStatus int

const (
	// NoAlarm means nothing is wrong.
	NoAlarm AlarmStatus = iota
	// PendingAlarm means a sensor fired once while armed.
	PendingAlarm
	// Alarm means the alarm is ringing.
	Alarm
)

// ArmingStatus is the operator-selected mode of the system.
type ArmingStatus int

const (
	// Disarmed ignores sensor activity entirely.
	Disarmed ArmingStatus = iota
	// ArmedHome is armed while somebody is at home.
	ArmedHome
	// ArmedAway is armed while nobody is at home.
	ArmedAway
)

var (
	// ErrUnknownAlarmStatus is returned when a string does not name an alarm status.
	ErrUnknownAlarmStatus = errors.New("unknown alarm status")
	// ErrUnknownArmingStatus is returned when a string does not name an arming status.
	ErrUnknownArmingStatus = errors.New("unknown arming status")
)

//nolint:gochecknoglobals // Lookup tables for enum names.
var (
	alarmStatusNames = map[AlarmStatus]string{
		NoAlarm:      "NO_ALARM",
		PendingAlarm: "PENDING_ALARM",
		Alarm:        "ALARM",
	}
	armingStatusNames = map[ArmingStatus]string{
		Disarmed:  "DISARMED",
		ArmedHome: "ARMED_HOME",
		ArmedAway: "ARMED_AWAY",
	}
)

// String returns the canonical upper-case name of the status.
func (s AlarmStatus) String() string {
	if name, ok := alarmStatusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("AlarmStatus(%d)", int(s))
}

// IsValid reports whether s is one of the declared alarm statuses.
func (s AlarmStatus) IsValid() bool {
	_, ok := alarmStatusNames[s]

	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (s AlarmStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlarmStatus, int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *AlarmStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseAlarmStatus(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// ParseAlarmStatus converts a name such as "pending_alarm" into an AlarmStatus.
// Matching ignores case, surrounding spaces and the dash/underscore difference.
func ParseAlarmStatus(s string) (AlarmStatus, error) {
	normalized := normalizeName(s)
	for status, name := range alarmStatusNames {
		if name == normalized {
			return status, nil
		}
	}

	return NoAlarm, fmt.Errorf("%w: %q", ErrUnknownAlarmStatus, s)
}

// String returns the canonical upper-case name of the status.
func (s ArmingStatus) String() string {
	if name, ok := armingStatusNames[s]; ok {
		return name
	}

	return fmt.Sprintf("ArmingStatus(%d)", int(s))
}

// IsValid reports whether s is one of the declared arming statuses.
func (s ArmingStatus) IsValid() bool {
	_, ok := armingStatusNames[s]

	return ok
}

// IsArmed reports whether sensor activity may escalate the alarm.
func (s ArmingStatus) IsArmed() bool {
	return s == ArmedHome || s == ArmedAway
}

// MarshalText implements encoding.TextMarshaler.
func (s ArmingStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownArmingStatus, int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ArmingStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseArmingStatus(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// ParseArmingStatus converts a name such as "armed-home" into an ArmingStatus.
func ParseArmingStatus(s string) (ArmingStatus, error) {
	normalized := normalizeName(s)
	for status, name := range armingStatusNames {
		if name == normalized {
			return status, nil
		}
	}

	return Disarmed, fmt.Errorf("%w: %q", ErrUnknownArmingStatus, s)
}

func normalizeName(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_")
}
