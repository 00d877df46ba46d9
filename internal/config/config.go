package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the catpoint binaries.
type Config struct {
	// ServerAddress is the gRPC address of the security server.
	ServerAddress string `yaml:"server_addr"`
	// StateFile is the path of the file storing sensors and statuses.
	StateFile string `yaml:"state_file"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level written by the logger.
	LogLevel string `yaml:"log_level"`
	// Image configures the cat detector used by the server.
	Image ImageConfig `yaml:"image"`
	// MQTT configures the optional status publisher.
	MQTT MQTTConfig `yaml:"mqtt"`
	// Watcher configures the status poller.
	Watcher WatcherConfig `yaml:"watcher"`
}

// ImageConfig selects the cat detector.
type ImageConfig struct {
	// Detector is one of DetectorRandom, DetectorAlways or DetectorNever.
	Detector string `yaml:"detector"`
}

// MQTTConfig describes the broker status changes are published to.
type MQTTConfig struct {
	// Enabled turns the publisher on.
	Enabled bool `yaml:"enabled"`
	// Host is the broker host name.
	Host string `yaml:"host"`
	// Port is the broker TCP port.
	Port int `yaml:"port"`
	// Username is optional broker user.
	Username string `yaml:"username"`
	// Password is optional broker password.
	Password string `yaml:"password"`
	// BaseTopic prefixes every published topic.
	BaseTopic string `yaml:"base_topic"`
}

// WatcherConfig controls the status poller.
type WatcherConfig struct {
	// Interval between two status polls.
	Interval time.Duration `yaml:"interval"`
	// OnAlarm is the command (argv) started every time the alarm starts ringing.
	OnAlarm []string `yaml:"on_alarm"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "catpoint-settings.yaml"

	// DefaultStateFilename is the default filename for sensors and statuses.
	DefaultStateFilename = "catpoint-state.yaml"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is used when log_level is empty.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600

	// DefaultMQTTPort is the standard unencrypted MQTT port.
	DefaultMQTTPort = 1883

	// DefaultMQTTBaseTopic prefixes published topics when base_topic is empty.
	DefaultMQTTBaseTopic = "catpoint"

	// DefaultWatcherInterval is the poll interval when watcher.interval is empty.
	DefaultWatcherInterval = 5 * time.Second

	// DetectorRandom flips a coin for every image.
	DetectorRandom = "random"
	// DetectorAlways reports a cat in every image.
	DetectorAlways = "always"
	// DetectorNever reports no cat in any image.
	DetectorNever = "never"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errUnknownDetector is returned for an unsupported image.detector value.
	errUnknownDetector = errors.New("unknown image detector")
	// errMQTTHostRequired is returned when MQTT is enabled without a host.
	errMQTTHostRequired = errors.New("mqtt host must be provided")
	// errInvalidTopic is returned for base topics with unsupported characters.
	errInvalidTopic = errors.New("invalid topic, only letters, numbers and underscores are allowed")

	//nolint:gochecknoglobals // Compiled once.
	baseTopicRegexp = regexp.MustCompile("^[a-z0-9_]+$")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may carry broker credentials.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if settings.Watcher.Interval <= 0 {
		settings.Watcher.Interval = DefaultWatcherInterval
	}

	if err := validateImage(&settings.Image); err != nil {
		return err
	}

	return validateMQTT(&settings.MQTT)
}

func validateImage(image *ImageConfig) error {
	image.Detector = strings.ToLower(strings.TrimSpace(image.Detector))

	switch image.Detector {
	case "":
		image.Detector = DetectorRandom
	case DetectorRandom, DetectorAlways, DetectorNever:
	default:
		return fmt.Errorf("%w: %q", errUnknownDetector, image.Detector)
	}

	return nil
}

func validateMQTT(mqtt *MQTTConfig) error {
	if !mqtt.Enabled {
		return nil
	}

	if mqtt.Host == "" {
		return errMQTTHostRequired
	}

	if mqtt.Port <= 0 {
		mqtt.Port = DefaultMQTTPort
	}

	if mqtt.BaseTopic == "" {
		mqtt.BaseTopic = DefaultMQTTBaseTopic
	}

	topic, err := CheckMQTTTopic(mqtt.BaseTopic)
	if err != nil {
		return err
	}

	mqtt.BaseTopic = topic

	return nil
}

// CheckMQTTTopic lower-cases baseTopic and verifies it only has letters, digits and underscores.
func CheckMQTTTopic(baseTopic string) (string, error) {
	lowerBaseTopic := strings.ToLower(baseTopic)
	if !baseTopicRegexp.MatchString(lowerBaseTopic) {
		return "", fmt.Errorf("%w: %q", errInvalidTopic, baseTopic)
	}

	return lowerBaseTopic, nil
}
