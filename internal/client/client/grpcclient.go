package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	pb "github.com/dmitrijs2005/semanticapi/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var _ TokenClient = (*GRPCClient)(nil)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.TokenServiceClient
	session     *Session
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

// accessTokenInterceptor attaches the session token. When the server reports
// it expired, the token is refreshed once and the call retried.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	token := s.session.Token()
	if token == "" {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
	if err == nil || method == pb.TokenService_Refresh_FullMethodName {
		return err
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}

	resp, rerr := s.client.Refresh(ctx, wrapperspb.String(token))
	if rerr != nil {
		return err
	}
	s.session.SetToken(resp.GetValue())

	return invoker(withAccessToken(ctx, resp.GetValue()), method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, session *Session) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, session: session}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewTokenServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Login(ctx context.Context, username string, password []byte) error {

	req, err := structpb.NewStruct(map[string]any{
		pb.LoginUsernameField: username,
		pb.LoginPasswordField: string(password),
	})
	if err != nil {
		return err
	}

	resp, err := s.client.Login(ctx, req)
	if err != nil {
		return s.mapError(err)
	}

	s.session.SetToken(resp.GetValue())
	return nil
}

// Refresh asks the server for a replacement token. It reports whether the
// token changed.
func (s *GRPCClient) Refresh(ctx context.Context) (bool, error) {
	token := s.session.Token()
	if token == "" {
		return false, ErrNotLoggedIn
	}

	resp, err := s.client.Refresh(ctx, wrapperspb.String(token))
	if err != nil {
		return false, s.mapError(err)
	}

	if resp.GetValue() == token {
		return false, nil
	}
	s.session.SetToken(resp.GetValue())
	return true, nil
}

func (s *GRPCClient) IsRefreshable(ctx context.Context) (bool, error) {
	token := s.session.Token()
	if token == "" {
		return false, ErrNotLoggedIn
	}

	resp, err := s.client.IsRefreshable(ctx, wrapperspb.String(token))
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (string, error) {
	if s.session.Token() == "" {
		return "", ErrNotLoggedIn
	}

	resp, err := s.client.WhoAmI(ctx, &emptypb.Empty{})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetValue() != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return ErrBadRequest
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
