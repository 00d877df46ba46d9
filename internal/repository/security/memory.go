package security

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	domain "github.com/oshokin/catpoint/internal/domain/security"
)

// Repository defines persistence operations for sensors and system statuses.
// Every call is durable from the caller's perspective once it returns nil.
type Repository interface {
	AlarmStatus(ctx context.Context) (domain.AlarmStatus, error)
	SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error
	ArmingStatus(ctx context.Context) (domain.ArmingStatus, error)
	SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error
	Sensors(ctx context.Context) ([]*domain.Sensor, error)
	AddSensor(ctx context.Context, sensor *domain.Sensor) error
	RemoveSensor(ctx context.Context, sensor *domain.Sensor) error
	UpdateSensor(ctx context.Context, sensor *domain.Sensor) error
}

var (
	// ErrSensorNotFound is returned when updating a sensor the repository does not hold.
	ErrSensorNotFound = errors.New("sensor not found")
	// ErrInvalidSensor is returned for nil sensors or sensors without an ID.
	ErrInvalidSensor = errors.New("invalid sensor")
)

// snapshot is the complete repository content.
type snapshot struct {
	alarmStatus  domain.AlarmStatus
	armingStatus domain.ArmingStatus
	sensors      map[uuid.UUID]*domain.Sensor
}

func newSnapshot() *snapshot {
	return &snapshot{
		alarmStatus:  domain.NoAlarm,
		armingStatus: domain.Disarmed,
		sensors:      make(map[uuid.UUID]*domain.Sensor),
	}
}

func (s *snapshot) clone() *snapshot {
	sensors := make(map[uuid.UUID]*domain.Sensor, len(s.sensors))
	for id, sensor := range s.sensors {
		sensors[id] = sensor.Clone()
	}

	return &snapshot{
		alarmStatus:  s.alarmStatus,
		armingStatus: s.armingStatus,
		sensors:      sensors,
	}
}

// sortedSensors returns clones of all sensors in domain order.
func (s *snapshot) sortedSensors() []*domain.Sensor {
	sensors := domain.CloneSensors(slices.Collect(maps.Values(s.sensors)))
	domain.SortSensors(sensors)

	return sensors
}

// commitFunc makes a candidate snapshot durable before it becomes current.
type commitFunc func(ctx context.Context, next *snapshot) error

// MemoryRepository keeps sensors and statuses in process memory.
// It is safe for concurrent use; callers only ever see copies.
type MemoryRepository struct {
	// current is the committed repository content.
	current *snapshot
	// commit persists a candidate snapshot, nil for memory-only use.
	commit commitFunc
	// mu serializes every read and read-modify-write.
	mu sync.RWMutex
}

// NewMemoryRepository creates an empty repository with NO_ALARM and DISARMED statuses.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		current: newSnapshot(),
	}
}

// AlarmStatus returns the current alarm status.
func (r *MemoryRepository) AlarmStatus(_ context.Context) (domain.AlarmStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current.alarmStatus, nil
}

// SetAlarmStatus stores a new alarm status.
func (r *MemoryRepository) SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error {
	return r.mutate(ctx, func(next *snapshot) error {
		next.alarmStatus = status

		return nil
	})
}

// ArmingStatus returns the current arming status.
func (r *MemoryRepository) ArmingStatus(_ context.Context) (domain.ArmingStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current.armingStatus, nil
}

// SetArmingStatus stores a new arming status.
func (r *MemoryRepository) SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error {
	return r.mutate(ctx, func(next *snapshot) error {
		next.armingStatus = status

		return nil
	})
}

// Sensors returns copies of all sensors ordered by domain.CompareSensors.
func (r *MemoryRepository) Sensors(_ context.Context) ([]*domain.Sensor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.current.sortedSensors(), nil
}

// AddSensor stores the sensor, replacing any sensor with the same ID.
func (r *MemoryRepository) AddSensor(ctx context.Context, sensor *domain.Sensor) error {
	if err := validateSensor(sensor); err != nil {
		return err
	}

	return r.mutate(ctx, func(next *snapshot) error {
		next.sensors[sensor.ID] = sensor.Clone()

		return nil
	})
}

// RemoveSensor deletes the sensor with the same ID. Removing an unknown sensor is a no-op.
func (r *MemoryRepository) RemoveSensor(ctx context.Context, sensor *domain.Sensor) error {
	if err := validateSensor(sensor); err != nil {
		return err
	}

	return r.mutate(ctx, func(next *snapshot) error {
		delete(next.sensors, sensor.ID)

		return nil
	})
}

// UpdateSensor overwrites a stored sensor with the provided values.
func (r *MemoryRepository) UpdateSensor(ctx context.Context, sensor *domain.Sensor) error {
	if err := validateSensor(sensor); err != nil {
		return err
	}

	return r.mutate(ctx, func(next *snapshot) error {
		if _, ok := next.sensors[sensor.ID]; !ok {
			return fmt.Errorf("%w: %s", ErrSensorNotFound, sensor.ID)
		}

		next.sensors[sensor.ID] = sensor.Clone()

		return nil
	})
}

// mutate applies fn to a copy of the current snapshot and swaps it in once committed.
// A failed commit leaves the current content untouched.
func (r *MemoryRepository) mutate(ctx context.Context, fn func(next *snapshot) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.current.clone()
	if err := fn(next); err != nil {
		return err
	}

	if r.commit != nil {
		if err := r.commit(ctx, next); err != nil {
			return err
		}
	}

	r.current = next

	return nil
}

func validateSensor(sensor *domain.Sensor) error {
	if sensor == nil {
		return fmt.Errorf("%w: sensor is nil", ErrInvalidSensor)
	}

	if sensor.ID == uuid.Nil {
		return fmt.Errorf("%w: sensor %q has no id", ErrInvalidSensor, sensor.Name)
	}

	return nil
}
