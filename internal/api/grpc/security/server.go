package security

import (
	"context"
	"errors"
	"image"
	"strings"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/catpoint/internal/domain/security"
	"github.com/oshokin/catpoint/internal/logger"
	repo "github.com/oshokin/catpoint/internal/repository/security"
	"github.com/oshokin/catpoint/internal/service/camera"
	engine "github.com/oshokin/catpoint/internal/service/security"
)

// Service abstracts the engine operations the transport layer depends on.
type Service interface {
	Status(ctx context.Context) (*domain.Status, error)
	CatDetected() bool
	SetArmingStatus(ctx context.Context, arming domain.ArmingStatus) error
	AddSensor(ctx context.Context, sensor *domain.Sensor) error
	RemoveSensor(ctx context.Context, sensor *domain.Sensor) error
	FindSensor(ctx context.Context, id uuid.UUID) (*domain.Sensor, error)
	ChangeSensorActivationStatus(ctx context.Context, sensor *domain.Sensor, active bool) error
	ProcessImage(ctx context.Context, img image.Image) error
}

// Server implements the SecurityService gRPC API.
type Server struct {
	// service provides the decision logic.
	service Service
	// mu makes the server the single writer of the engine: every RPC runs
	// its read-modify-write sequence without interleaving.
	mu sync.Mutex
}

var _ SecurityServiceServer = (*Server)(nil)

// NewServer wires the provided engine into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetStatus returns statuses and sensors.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(ctx)
}

// SetArmingStatus changes the arming mode.
func (s *Server) SetArmingStatus(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	arming, err := domain.ParseArmingStatus(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.service.SetArmingStatus(ctx, arming); err != nil {
		return nil, toStatusError(ctx, "set arming status", err)
	}

	return s.snapshot(ctx)
}

// AddSensor creates an inactive sensor.
func (s *Server) AddSensor(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	name, err := stringField(req, FieldName)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "sensor name is required")
	}

	typeName, err := stringField(req, FieldType)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sensorType, err := domain.ParseSensorType(typeName)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sensor := domain.NewSensor(name, sensorType)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.service.AddSensor(ctx, sensor); err != nil {
		return nil, toStatusError(ctx, "add sensor", err)
	}

	return EncodeSensor(sensor), nil
}

// RemoveSensor deletes the sensor with the given ID.
func (s *Server) RemoveSensor(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := parseID(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sensor, err := s.service.FindSensor(ctx, id)
	if err != nil {
		return nil, toStatusError(ctx, "find sensor", err)
	}

	if err = s.service.RemoveSensor(ctx, sensor); err != nil {
		return nil, toStatusError(ctx, "remove sensor", err)
	}

	return new(emptypb.Empty), nil
}

// ChangeSensorActivation activates or deactivates a sensor.
func (s *Server) ChangeSensorActivation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	rawID, err := stringField(req, FieldID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	id, err := parseID(wrapperspb.String(rawID))
	if err != nil {
		return nil, err
	}

	active, err := boolField(req, FieldActive)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sensor, err := s.service.FindSensor(ctx, id)
	if err != nil {
		return nil, toStatusError(ctx, "find sensor", err)
	}

	if err = s.service.ChangeSensorActivationStatus(ctx, sensor, active); err != nil {
		return nil, toStatusError(ctx, "change sensor activation", err)
	}

	return s.snapshot(ctx)
}

// ProcessImage classifies an encoded camera frame.
func (s *Server) ProcessImage(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	img, err := camera.Decode(req.GetValue())
	if err != nil {
		if errors.Is(err, camera.ErrInvalidFrame) || errors.Is(err, camera.ErrEmptyImage) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}

		return nil, toStatusError(ctx, "decode image", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.service.ProcessImage(ctx, img); err != nil {
		return nil, toStatusError(ctx, "process image", err)
	}

	return s.snapshot(ctx)
}

// snapshot encodes the current engine status. Callers hold mu.
func (s *Server) snapshot(ctx context.Context) (*structpb.Struct, error) {
	current, err := s.service.Status(ctx)
	if err != nil {
		return nil, toStatusError(ctx, "read status", err)
	}

	return EncodeSnapshot(current, s.service.CatDetected()), nil
}

func parseID(req *wrapperspb.StringValue) (uuid.UUID, error) {
	if req == nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "request is required")
	}

	id, err := uuid.Parse(strings.TrimSpace(req.GetValue()))
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid sensor id: %v", err)
	}

	return id, nil
}

// toStatusError maps engine and repository errors onto gRPC status codes.
func toStatusError(ctx context.Context, operation string, err error) error {
	switch {
	case errors.Is(err, engine.ErrInvalidArgument), errors.Is(err, repo.ErrInvalidSensor):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, engine.ErrSensorNotFound), errors.Is(err, repo.ErrSensorNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		logger.ErrorKV(ctx, "Security operation failed", "operation", operation, "error", err)

		return status.Errorf(codes.Internal, "unable to %s", operation)
	}
}
