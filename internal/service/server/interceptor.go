package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/oshokin/catpoint/internal/logger"
	"github.com/oshokin/catpoint/internal/service/common"
)

// auditInterceptor logs every call together with the actor reported by the client.
func auditInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	actor := common.ActorFromIncoming(ctx)
	if actor == "" {
		actor = "<unknown>"
	}

	ctx = logger.WithKV(ctx, "method", info.FullMethod, "actor", actor)
	started := time.Now()

	resp, err := handler(ctx, req)

	logger.DebugKV(ctx, "Request served",
		"code", status.Code(err).String(),
		"duration", time.Since(started).String())

	return resp, err
}
