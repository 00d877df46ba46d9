package security

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/security"
)

// FileRepository is a MemoryRepository that writes every change through to disk.
// Files ending in .msgpack or .mpk are stored as MessagePack, anything else as YAML.
type FileRepository struct {
	*MemoryRepository

	// path is the filesystem location of the state file.
	path string
	// codec encodes and decodes the state file.
	codec codec
}

// ErrStateNotFound is returned when the state file does not exist yet.
var ErrStateNotFound = errors.New("state not found")

// codec is a symmetric serialization format for the state file.
type codec struct {
	name      string
	marshal   func(v any) ([]byte, error)
	unmarshal func(data []byte, v any) error
}

//nolint:gochecknoglobals // Immutable codec definitions.
var (
	yamlCodec = codec{
		name:      "yaml",
		marshal:   yaml.Marshal,
		unmarshal: yaml.Unmarshal,
	}
	msgpackCodec = codec{
		name:      "msgpack",
		marshal:   msgpack.Marshal,
		unmarshal: msgpack.Unmarshal,
	}
)

// stateFile is the on-disk layout shared by every codec.
type stateFile struct {
	AlarmStatus  string         `msgpack:"alarm_status"  yaml:"alarm_status"`
	ArmingStatus string         `msgpack:"arming_status" yaml:"arming_status"`
	Sensors      []sensorRecord `msgpack:"sensors"       yaml:"sensors"`
}

type sensorRecord struct {
	ID     string `msgpack:"id"     yaml:"id"`
	Name   string `msgpack:"name"   yaml:"name"`
	Type   string `msgpack:"type"   yaml:"type"`
	Active bool   `msgpack:"active" yaml:"active"`
}

// OpenFileRepository loads the state file at path, or starts from defaults when it is missing.
func OpenFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{
		MemoryRepository: NewMemoryRepository(),
		path:             filepath.Clean(path),
		codec:            codecFor(path),
	}

	loaded, err := r.load()

	switch {
	case err == nil:
		r.current = loaded
	case errors.Is(err, ErrStateNotFound):
		// Keep defaults, the file appears on the first change.
	default:
		return nil, err
	}

	r.commit = r.save

	return r, nil
}

// Path returns the location of the state file.
func (r *FileRepository) Path() string {
	return r.path
}

// Format returns the name of the codec used for the state file.
func (r *FileRepository) Format() string {
	return r.codec.name
}

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		return msgpackCodec
	default:
		return yamlCodec
	}
}

// load reads and decodes the state file.
func (r *FileRepository) load() (*snapshot, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrStateNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var file stateFile
	if err = r.codec.unmarshal(contents, &file); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	loaded, err := fromStateFile(&file)
	if err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return loaded, nil
}

// save encodes and writes the candidate snapshot.
func (r *FileRepository) save(_ context.Context, next *snapshot) error {
	data, err := r.codec.marshal(toStateFile(next))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// fromStateFile converts the on-disk layout into a snapshot.
// Empty status fields fall back to the defaults.
func fromStateFile(file *stateFile) (*snapshot, error) {
	result := newSnapshot()

	if file.AlarmStatus != "" {
		status, err := domain.ParseAlarmStatus(file.AlarmStatus)
		if err != nil {
			return nil, err
		}

		result.alarmStatus = status
	}

	if file.ArmingStatus != "" {
		status, err := domain.ParseArmingStatus(file.ArmingStatus)
		if err != nil {
			return nil, err
		}

		result.armingStatus = status
	}

	for _, record := range file.Sensors {
		id, err := uuid.Parse(record.ID)
		if err != nil {
			return nil, fmt.Errorf("sensor %q: %w", record.Name, err)
		}

		sensorType, err := domain.ParseSensorType(record.Type)
		if err != nil {
			return nil, fmt.Errorf("sensor %q: %w", record.Name, err)
		}

		result.sensors[id] = &domain.Sensor{
			ID:     id,
			Name:   record.Name,
			Type:   sensorType,
			Active: record.Active,
		}
	}

	return result, nil
}

// toStateFile converts a snapshot into the on-disk layout.
func toStateFile(s *snapshot) *stateFile {
	sensors := s.sortedSensors()
	records := make([]sensorRecord, 0, len(sensors))

	for _, sensor := range sensors {
		records = append(records, sensorRecord{
			ID:     sensor.ID.String(),
			Name:   sensor.Name,
			Type:   sensor.Type.String(),
			Active: sensor.Active,
		})
	}

	return &stateFile{
		AlarmStatus:  s.alarmStatus.String(),
		ArmingStatus: s.armingStatus.String(),
		Sensors:      records,
	}
}
