package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"google.golang.org/grpc"

	api "github.com/oshokin/catpoint/internal/api/grpc/security"
	"github.com/oshokin/catpoint/internal/config"
	"github.com/oshokin/catpoint/internal/listener"
	"github.com/oshokin/catpoint/internal/logger"
	repository "github.com/oshokin/catpoint/internal/repository/security"
	"github.com/oshokin/catpoint/internal/service/camera"
	engine "github.com/oshokin/catpoint/internal/service/security"
	"github.com/oshokin/catpoint/internal/version"
)

// Options controls the catpoint-server process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile overrides the path of the persisted sensors and statuses.
	StateFile string
	// Detector overrides image.detector from the settings file.
	Detector string
}

var (
	// ErrNoServerAddress indicates missing server configuration.
	ErrNoServerAddress = errors.New("no server address configured")
	// errUnknownLogLevel is returned for a log_level zap does not know.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "catpoint-server")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	level, ok := logger.ParseLogLevel(settings.LogLevel)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	logger.SetLevel(level)

	if opts.StateFile != "" {
		settings.StateFile = opts.StateFile
	}

	if opts.Detector != "" {
		settings.Image.Detector = opts.Detector
	}

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo, err := repository.OpenFileRepository(settings.StateFile)
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}

	detector, err := camera.New(settings.Image.Detector)
	if err != nil {
		return fmt.Errorf("create detector: %w", err)
	}

	svc, err := engine.NewService(repo, detector)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	if err = svc.AddStatusListener(listener.NewLogging(level)); err != nil {
		return fmt.Errorf("register log listener: %w", err)
	}

	if settings.MQTT.Enabled {
		client, connectErr := listener.Connect(ctx, &settings.MQTT, settings.Timeout)
		if connectErr != nil {
			return fmt.Errorf("connect mqtt: %w", connectErr)
		}

		defer disconnectMQTT(ctx, client, settings)

		if err = svc.AddStatusListener(listener.NewMQTT(client, settings.MQTT.BaseTopic, settings.Timeout)); err != nil {
			return fmt.Errorf("register mqtt listener: %w", err)
		}
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	logger.InfoKV(ctx, "Security server listening", append([]any{
		"listen_address", listenAddress,
		"state_file", repo.Path(),
		"state_format", repo.Format(),
		"detector", settings.Image.Detector,
		"mqtt", settings.MQTT.Enabled,
	}, version.KV()...)...)

	return Serve(ctx, lis, svc)
}

// Serve exposes svc on lis until ctx is canceled.
func Serve(ctx context.Context, lis net.Listener, svc api.Service) error {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(auditInterceptor))
	api.RegisterSecurityServiceServer(grpcServer, api.NewServer(svc))

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

func disconnectMQTT(ctx context.Context, client mqtt.Client, settings *config.Config) {
	if err := listener.Disconnect(ctx, client, settings.MQTT.BaseTopic, settings.Timeout); err != nil {
		logger.ErrorKV(ctx, "MQTT disconnect failed", "error", err)
	}
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
// Returns appropriate listen address (e.g., ":8080" for port-only binding).
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Port-only address binds on all interfaces.
	return ":" + port, nil
}
