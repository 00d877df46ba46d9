package security

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/catpoint/internal/domain/security"
)

// Field names used inside Struct messages.
const (
	FieldAlarmStatus  = "alarm_status"
	FieldArmingStatus = "arming_status"
	FieldCatDetected  = "cat_detected"
	FieldSensors      = "sensors"
	FieldID           = "id"
	FieldName         = "name"
	FieldType         = "type"
	FieldActive       = "active"
)

// ErrMalformedMessage is returned when a Struct lacks a field or holds the wrong kind of value.
var ErrMalformedMessage = errors.New("malformed message")

// Snapshot is the decoded form of a status response.
type Snapshot struct {
	// Status holds statuses and sensors.
	Status *domain.Status
	// CatDetected is the verdict of the most recent camera frame.
	CatDetected bool
}

// EncodeSnapshot converts a status and the latest cat verdict into a Struct.
func EncodeSnapshot(status *domain.Status, catDetected bool) *structpb.Struct {
	sensors := make([]*structpb.Value, 0, len(status.Sensors))
	for _, sensor := range status.Sensors {
		sensors = append(sensors, structpb.NewStructValue(EncodeSensor(sensor)))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldAlarmStatus:  structpb.NewStringValue(status.AlarmStatus.String()),
			FieldArmingStatus: structpb.NewStringValue(status.ArmingStatus.String()),
			FieldCatDetected:  structpb.NewBoolValue(catDetected),
			FieldSensors:      structpb.NewListValue(&structpb.ListValue{Values: sensors}),
		},
	}
}

// DecodeSnapshot parses a Struct produced by EncodeSnapshot.
func DecodeSnapshot(message *structpb.Struct) (*Snapshot, error) {
	alarmName, err := stringField(message, FieldAlarmStatus)
	if err != nil {
		return nil, err
	}

	alarm, err := domain.ParseAlarmStatus(alarmName)
	if err != nil {
		return nil, err
	}

	armingName, err := stringField(message, FieldArmingStatus)
	if err != nil {
		return nil, err
	}

	arming, err := domain.ParseArmingStatus(armingName)
	if err != nil {
		return nil, err
	}

	catDetected, err := boolField(message, FieldCatDetected)
	if err != nil {
		return nil, err
	}

	list := message.GetFields()[FieldSensors].GetListValue()
	sensors := make([]*domain.Sensor, 0, len(list.GetValues()))

	for _, value := range list.GetValues() {
		sensor, err := DecodeSensor(value.GetStructValue())
		if err != nil {
			return nil, err
		}

		sensors = append(sensors, sensor)
	}

	return &Snapshot{
		Status: &domain.Status{
			AlarmStatus:  alarm,
			ArmingStatus: arming,
			Sensors:      sensors,
		},
		CatDetected: catDetected,
	}, nil
}

// EncodeSensor converts a sensor into a Struct.
func EncodeSensor(sensor *domain.Sensor) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldID:     structpb.NewStringValue(sensor.ID.String()),
			FieldName:   structpb.NewStringValue(sensor.Name),
			FieldType:   structpb.NewStringValue(sensor.Type.String()),
			FieldActive: structpb.NewBoolValue(sensor.Active),
		},
	}
}

// DecodeSensor parses a Struct produced by EncodeSensor.
func DecodeSensor(message *structpb.Struct) (*domain.Sensor, error) {
	rawID, err := stringField(message, FieldID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: sensor id: %w", ErrMalformedMessage, err)
	}

	name, err := stringField(message, FieldName)
	if err != nil {
		return nil, err
	}

	typeName, err := stringField(message, FieldType)
	if err != nil {
		return nil, err
	}

	sensorType, err := domain.ParseSensorType(typeName)
	if err != nil {
		return nil, err
	}

	active, err := boolField(message, FieldActive)
	if err != nil {
		return nil, err
	}

	return &domain.Sensor{
		ID:     id,
		Name:   name,
		Type:   sensorType,
		Active: active,
	}, nil
}

func stringField(message *structpb.Struct, name string) (string, error) {
	value, ok := message.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%w: field %q is missing", ErrMalformedMessage, name)
	}

	kind, ok := value.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: field %q is not a string", ErrMalformedMessage, name)
	}

	return kind.StringValue, nil
}

func boolField(message *structpb.Struct, name string) (bool, error) {
	value, ok := message.GetFields()[name]
	if !ok {
		return false, fmt.Errorf("%w: field %q is missing", ErrMalformedMessage, name)
	}

	kind, ok := value.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%w: field %q is not a bool", ErrMalformedMessage, name)
	}

	return kind.BoolValue, nil
}
