package grpc

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/semanticapi/internal/common"
	"github.com/dmitrijs2005/semanticapi/internal/logging"
	pb "github.com/dmitrijs2005/semanticapi/internal/proto"
	"github.com/dmitrijs2005/semanticapi/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newTestClient(t *testing.T, refreshTime int) (pb.TokenServiceClient, *auth.TokenManager) {
	t.Helper()

	ss, tm := newTestSessions(t, refreshTime)
	conn := dialBufconn(t, NewGRPCServer("bufnet", logging.Nop(), ss))
	return pb.NewTokenServiceClient(conn), tm
}

func loginRequest(t *testing.T, username, password string) *structpb.Struct {
	t.Helper()

	req, err := structpb.NewStruct(map[string]any{
		pb.LoginUsernameField: username,
		pb.LoginPasswordField: password,
	})
	require.NoError(t, err)
	return req
}

func TestPing(t *testing.T) {
	c, _ := newTestClient(t, 5)

	resp, err := c.Ping(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.GetValue())
}

func TestRequestIDHeader(t *testing.T) {
	c, _ := newTestClient(t, 5)

	var header metadata.MD
	_, err := c.Ping(context.Background(), &emptypb.Empty{}, grpc.Header(&header))
	require.NoError(t, err)
	ids := header.Get("x-request-id")
	require.Len(t, ids, 1)
	_, err = uuid.Parse(ids[0])
	assert.NoError(t, err)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "req-42")
	header = nil
	_, err = c.Ping(ctx, &emptypb.Empty{}, grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, []string{"req-42"}, header.Get("x-request-id"))
}

func TestLogin(t *testing.T) {
	c, tm := newTestClient(t, 5)
	ctx := context.Background()

	resp, err := c.Login(ctx, loginRequest(t, "alice", "s3cret"))
	require.NoError(t, err)

	claims, err := tm.Verify(resp.GetValue())
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)

	_, err = c.Login(ctx, loginRequest(t, "alice", "wrong"))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.Login(ctx, loginRequest(t, "", ""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRefreshAndIsRefreshable(t *testing.T) {
	ctx := context.Background()

	t.Run("outside window", func(t *testing.T) {
		c, tm := newTestClient(t, 5)
		tok, err := tm.GenerateTokenForUser("alice")
		require.NoError(t, err)

		ok, err := c.IsRefreshable(ctx, wrapperspb.String(tok))
		require.NoError(t, err)
		assert.False(t, ok.GetValue())

		resp, err := c.Refresh(ctx, wrapperspb.String(tok))
		require.NoError(t, err)
		assert.Equal(t, tok, resp.GetValue())
	})

	t.Run("inside window", func(t *testing.T) {
		c, tm := newTestClient(t, 61)
		tok, err := tm.GenerateTokenForUser("alice")
		require.NoError(t, err)

		ok, err := c.IsRefreshable(ctx, wrapperspb.String(tok))
		require.NoError(t, err)
		assert.True(t, ok.GetValue())

		resp, err := c.Refresh(ctx, wrapperspb.String(tok))
		require.NoError(t, err)
		claims, err := tm.Verify(resp.GetValue())
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Name)
	})

	t.Run("invalid input", func(t *testing.T) {
		c, _ := newTestClient(t, 61)

		_, err := c.Refresh(ctx, wrapperspb.String("garbage"))
		assert.Equal(t, codes.Unauthenticated, status.Code(err))

		_, err = c.IsRefreshable(ctx, wrapperspb.String(""))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestWhoAmI(t *testing.T) {
	c, tm := newTestClient(t, 5)
	ctx := context.Background()

	_, err := c.WhoAmI(ctx, &emptypb.Empty{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())

	tok, err := tm.GenerateTokenForUser("alice")
	require.NoError(t, err)

	authed := metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, tok)
	resp, err := c.WhoAmI(authed, &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.GetValue())

	bad := metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, "garbage")
	_, err = c.WhoAmI(bad, &emptypb.Empty{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
