package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/semanticapi/internal/logging"
	pb "github.com/dmitrijs2005/semanticapi/internal/proto"
	"google.golang.org/grpc"
)

// SessionService is what the gRPC handlers need from sessions.Service.
type SessionService interface {
	Login(ctx context.Context, username string, password []byte) (string, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Refresh(ctx context.Context, token string) (string, bool, error)
	IsRefreshable(ctx context.Context, token string) (bool, error)
}

type GRPCServer struct {
	pb.UnimplementedTokenServiceServer
	address  string
	sessions SessionService
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, ss SessionService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		sessions: ss,
	}
}

// NewServer builds a grpc.Server with the interceptors and the token service
// registered, without binding a listener.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	pb.RegisterTokenServiceServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
