package security

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"

	"github.com/google/uuid"

	domain "github.com/oshokin/catpoint/internal/domain/security"
	"github.com/oshokin/catpoint/internal/logger"
	repo "github.com/oshokin/catpoint/internal/repository/security"
)

// CatConfidenceThreshold is the confidence, in percent, passed to the ImageService.
const CatConfidenceThreshold float32 = 50

var (
	// ErrInvalidArgument is returned for nil sensors, nil images and out-of-range statuses.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSensorNotFound is returned by FindSensor for unknown IDs.
	ErrSensorNotFound = errors.New("sensor not found")
)

// ImageService decides whether an image contains a cat.
type ImageService interface {
	ImageContainsCat(ctx context.Context, img image.Image, confidenceThreshold float32) (bool, error)
}

// Service receives information about changes to the security system, forwards
// updates to the repository and decides how the alarm status changes.
//
// Service does not serialize calls. Concurrent callers must go through a
// single writer because the transitions read and then write the repository.
type Service struct {
	// repo is the single source of truth for sensors and statuses.
	repo repo.Repository
	// images classifies camera frames.
	images ImageService
	// listeners receives every status change.
	listeners *listenerSet
	// catDetected is the verdict of the most recent camera frame.
	catDetected atomic.Bool
}

// NewService creates an engine backed by the provided repository and image service.
func NewService(repository repo.Repository, images ImageService) (*Service, error) {
	if repository == nil {
		return nil, fmt.Errorf("%w: repository is required", ErrInvalidArgument)
	}

	if images == nil {
		return nil, fmt.Errorf("%w: image service is required", ErrInvalidArgument)
	}

	return &Service{
		repo:      repository,
		images:    images,
		listeners: newListenerSet(),
	}, nil
}

// AddStatusListener registers l for status updates. Adding it twice or adding nil is a no-op.
func (s *Service) AddStatusListener(l StatusListener) error {
	return s.listeners.add(l)
}

// RemoveStatusListener unregisters l. Removing an unknown listener is a no-op.
func (s *Service) RemoveStatusListener(l StatusListener) {
	s.listeners.remove(l)
}

// AddSensor stores a new sensor.
func (s *Service) AddSensor(ctx context.Context, sensor *domain.Sensor) error {
	if sensor == nil {
		return fmt.Errorf("%w: sensor is required", ErrInvalidArgument)
	}

	if err := s.repo.AddSensor(ctx, sensor); err != nil {
		return fmt.Errorf("add sensor: %w", err)
	}

	logger.InfoKV(ctx, "Sensor added", "sensor", sensor)

	return nil
}

// RemoveSensor deletes a sensor.
func (s *Service) RemoveSensor(ctx context.Context, sensor *domain.Sensor) error {
	if sensor == nil {
		return fmt.Errorf("%w: sensor is required", ErrInvalidArgument)
	}

	if err := s.repo.RemoveSensor(ctx, sensor); err != nil {
		return fmt.Errorf("remove sensor: %w", err)
	}

	logger.InfoKV(ctx, "Sensor removed", "sensor", sensor)

	return nil
}

// Sensors returns every known sensor.
func (s *Service) Sensors(ctx context.Context) ([]*domain.Sensor, error) {
	sensors, err := s.repo.Sensors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}

	return sensors, nil
}

// FindSensor returns the sensor with the given ID.
func (s *Service) FindSensor(ctx context.Context, id uuid.UUID) (*domain.Sensor, error) {
	sensors, err := s.Sensors(ctx)
	if err != nil {
		return nil, err
	}

	for _, sensor := range sensors {
		if sensor.ID == id {
			return sensor, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrSensorNotFound, id)
}

// AlarmStatus returns the current alarm status.
func (s *Service) AlarmStatus(ctx context.Context) (domain.AlarmStatus, error) {
	status, err := s.repo.AlarmStatus(ctx)
	if err != nil {
		return domain.NoAlarm, fmt.Errorf("read alarm status: %w", err)
	}

	return status, nil
}

// ArmingStatus returns the current arming status.
func (s *Service) ArmingStatus(ctx context.Context) (domain.ArmingStatus, error) {
	status, err := s.repo.ArmingStatus(ctx)
	if err != nil {
		return domain.Disarmed, fmt.Errorf("read arming status: %w", err)
	}

	return status, nil
}

// Status returns both statuses and every sensor in one snapshot.
func (s *Service) Status(ctx context.Context) (*domain.Status, error) {
	alarm, err := s.AlarmStatus(ctx)
	if err != nil {
		return nil, err
	}

	arming, err := s.ArmingStatus(ctx)
	if err != nil {
		return nil, err
	}

	sensors, err := s.Sensors(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Status{
		AlarmStatus:  alarm,
		ArmingStatus: arming,
		Sensors:      sensors,
	}, nil
}

// SetAlarmStatus stores the alarm status and notifies every listener.
// All transitions go through here.
func (s *Service) SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, status)
	}

	if err := s.repo.SetAlarmStatus(ctx, status); err != nil {
		return fmt.Errorf("persist alarm status: %w", err)
	}

	logger.InfoKV(ctx, "Alarm status updated", "alarm_status", status)

	s.listeners.each(ctx, "notify", func(l StatusListener) {
		l.Notify(ctx, status)
	})

	return nil
}

// ChangeSensorActivationStatus sets the sensor's activation and updates the alarm status if necessary.
// While the alarm is ringing only the sensor itself changes.
func (s *Service) ChangeSensorActivationStatus(ctx context.Context, sensor *domain.Sensor, active bool) error {
	if sensor == nil {
		return fmt.Errorf("%w: sensor is required", ErrInvalidArgument)
	}

	// Unknown sensors are rejected before any alarm transition is written.
	if _, err := s.FindSensor(ctx, sensor.ID); err != nil {
		return err
	}

	alarm, err := s.AlarmStatus(ctx)
	if err != nil {
		return err
	}

	if alarm != domain.Alarm {
		if active {
			err = s.handleSensorActivated(ctx, alarm)
		} else {
			err = s.handleSensorDeactivated(ctx, alarm)
		}

		if err != nil {
			return err
		}
	}

	updated := sensor.Clone()
	updated.Active = active

	if err = s.repo.UpdateSensor(ctx, updated); err != nil {
		return fmt.Errorf("update sensor: %w", err)
	}

	sensor.Active = active

	logger.DebugKV(ctx, "Sensor activation changed", "sensor", updated)

	return nil
}

// handleSensorActivated escalates the alarm by one level unless the system is disarmed.
func (s *Service) handleSensorActivated(ctx context.Context, alarm domain.AlarmStatus) error {
	arming, err := s.ArmingStatus(ctx)
	if err != nil {
		return err
	}

	if arming == domain.Disarmed {
		return nil
	}

	switch alarm {
	case domain.NoAlarm:
		return s.SetAlarmStatus(ctx, domain.PendingAlarm)
	case domain.PendingAlarm:
		return s.SetAlarmStatus(ctx, domain.Alarm)
	default:
		return nil
	}
}

// handleSensorDeactivated de-escalates the alarm by one level.
func (s *Service) handleSensorDeactivated(ctx context.Context, alarm domain.AlarmStatus) error {
	switch alarm {
	case domain.PendingAlarm:
		return s.SetAlarmStatus(ctx, domain.NoAlarm)
	case domain.Alarm:
		return s.SetAlarmStatus(ctx, domain.PendingAlarm)
	default:
		return nil
	}
}

// ProcessImage asks the image service whether img contains a cat and updates the alarm status.
func (s *Service) ProcessImage(ctx context.Context, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%w: image is required", ErrInvalidArgument)
	}

	cat, err := s.images.ImageContainsCat(ctx, img, CatConfidenceThreshold)
	if err != nil {
		return fmt.Errorf("classify image: %w", err)
	}

	return s.handleCatDetected(ctx, cat)
}

// CatDetected reports the verdict of the most recent camera frame.
func (s *Service) CatDetected() bool {
	return s.catDetected.Load()
}

// handleCatDetected remembers the verdict and raises the alarm for a cat seen while armed at home.
// Any other verdict clears the alarm, even if sensors are still active.
func (s *Service) handleCatDetected(ctx context.Context, cat bool) error {
	s.catDetected.Store(cat)

	arming, err := s.ArmingStatus(ctx)
	if err != nil {
		return err
	}

	status := domain.NoAlarm
	if cat && arming == domain.ArmedHome {
		status = domain.Alarm
	}

	if err = s.SetAlarmStatus(ctx, status); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Camera frame classified", "cat_detected", cat, "arming_status", arming)

	s.listeners.each(ctx, "cat_detected", func(l StatusListener) {
		l.CatDetected(ctx, cat)
	})

	return nil
}

// SetArmingStatus changes the arming mode.
//
// Arming home while a cat was last seen raises the alarm, disarming clears it,
// and arming in either mode first deactivates every sensor. The sensor reset
// runs against the previous arming mode, which is only replaced afterwards.
func (s *Service) SetArmingStatus(ctx context.Context, arming domain.ArmingStatus) error {
	if !arming.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidArgument, arming)
	}

	if s.catDetected.Load() && arming == domain.ArmedHome {
		if err := s.SetAlarmStatus(ctx, domain.Alarm); err != nil {
			return err
		}
	}

	if arming == domain.Disarmed {
		if err := s.SetAlarmStatus(ctx, domain.NoAlarm); err != nil {
			return err
		}
	} else if err := s.resetSensors(ctx); err != nil {
		return err
	}

	if err := s.repo.SetArmingStatus(ctx, arming); err != nil {
		return fmt.Errorf("persist arming status: %w", err)
	}

	logger.InfoKV(ctx, "Arming status updated", "arming_status", arming)

	s.listeners.each(ctx, "sensor_status_changed", func(l StatusListener) {
		l.SensorStatusChanged(ctx)
	})

	return nil
}

// resetSensors deactivates every known sensor in domain order.
func (s *Service) resetSensors(ctx context.Context) error {
	sensors, err := s.Sensors(ctx)
	if err != nil {
		return err
	}

	for _, sensor := range sensors {
		if err = s.ChangeSensorActivationStatus(ctx, sensor, false); err != nil {
			return fmt.Errorf("reset sensor %s: %w", sensor.ID, err)
		}
	}

	return nil
}
