package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	pb "github.com/dmitrijs2005/semanticapi/internal/proto"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	usernameKey  ctxKey = "username"
	requestIDKey ctxKey = "request_id"
)

var requestIDMetadataKey = strings.ToLower(common.RequestIDHeaderName)

// protectedMethods require the access_token metadata entry.
var protectedMethods = map[string]bool{
	pb.TokenService_WhoAmI_FullMethodName: true,
}

func usernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// incomingRequestID returns the caller supplied id, or a new one.
func incomingRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(requestIDMetadataKey); len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return uuid.NewString()
}

func accessTokenFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AccessTokenHeaderName)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	accessToken := accessTokenFromContext(ctx)
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	username, err := s.sessions.Authenticate(ctx, accessToken)
	if err != nil {
		s.logger.Warn(ctx, "token rejected",
			"method", info.FullMethod,
			"request_id", requestIDFromContext(ctx),
			"error", err,
		)
		return nil, statusFromError(err)
	}

	ctx = context.WithValue(ctx, usernameKey, username)
	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	requestID := incomingRequestID(ctx)
	start := time.Now()

	ctx = context.WithValue(ctx, requestIDKey, requestID)
	// Fails only outside a server transport, as in direct calls from tests.
	_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, requestID))

	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "rpc completed",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start),
		"request_id", requestID,
	)
	return resp, err
}
