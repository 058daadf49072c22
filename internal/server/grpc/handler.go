package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	pb "github.com/dmitrijs2005/semanticapi/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func statusFromError(err error) error {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {

	fields := req.GetFields()
	username := fields[pb.LoginUsernameField].GetStringValue()
	password := []byte(fields[pb.LoginPasswordField].GetStringValue())
	defer common.WipeByteArray(password)

	if username == "" || len(password) == 0 {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}

	token, err := s.sessions.Login(ctx, username, password)
	if err != nil {
		return nil, statusFromError(err)
	}

	return wrapperspb.String(token), nil
}

func (s *GRPCServer) Refresh(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {

	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	token, _, err := s.sessions.Refresh(ctx, req.GetValue())
	if err != nil {
		return nil, statusFromError(err)
	}

	return wrapperspb.String(token), nil
}

func (s *GRPCServer) IsRefreshable(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {

	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "token is required")
	}

	ok, err := s.sessions.IsRefreshable(ctx, req.GetValue())
	if err != nil {
		return nil, statusFromError(err)
	}

	return wrapperspb.Bool(ok), nil
}

func (s *GRPCServer) WhoAmI(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {

	username, ok := usernameFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	return wrapperspb.String(username), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("OK"), nil
}
