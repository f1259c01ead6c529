package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/progression-engine/internal/gameerr"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "progression.v1.Progression"

// ProgressionServer is the server API of the progression service.
type ProgressionServer interface {
	StageInfo(context.Context, *StageInfoRequest) (*StageInfoResponse, error)
	Simulate(context.Context, *SimulateRequest) (*SimulateResponse, error)
	StartBattle(context.Context, *StartBattleRequest) (*BattleResponse, error)
	PlayerTurn(context.Context, *TurnRequest) (*BattleResponse, error)
	BossTurn(context.Context, *TurnRequest) (*BattleResponse, error)
	Enhance(context.Context, *EnhanceRequest) (*EnhanceResponse, error)
	Drop(context.Context, *DropRequest) (*DropResponse, error)
	OpenBox(context.Context, *OpenBoxRequest) (*OpenBoxResponse, error)
	Sell(context.Context, *SellRequest) (*SellResponse, error)
}

var _ ProgressionServer = (*Service)(nil)

// serviceDesc is written by hand; there is no .proto for the JSON messages.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ProgressionServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StageInfo", ProgressionServer.StageInfo),
		unary("Simulate", ProgressionServer.Simulate),
		unary("StartBattle", ProgressionServer.StartBattle),
		unary("PlayerTurn", ProgressionServer.PlayerTurn),
		unary("BossTurn", ProgressionServer.BossTurn),
		unary("Enhance", ProgressionServer.Enhance),
		unary("Drop", ProgressionServer.Drop),
		unary("OpenBox", ProgressionServer.OpenBox),
		unary("Sell", ProgressionServer.Sell),
	},
	Metadata: "progression/v1/progression.json",
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// unary adapts a typed method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(ProgressionServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ProgressionServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ProgressionServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// RegisterProgressionServer registers srv on s.
func RegisterProgressionServer(s grpc.ServiceRegistrar, srv ProgressionServer) {
	s.RegisterService(&serviceDesc, srv)
}

// Server hosts the progression and health services on one listener.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
}

// NewServer registers svc on a new gRPC server bound to lis.
func NewServer(lis net.Listener, svc ProgressionServer, logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(logUnary(logger))}, opts...)
	grpcServer := grpc.NewServer(opts...)
	healthServer := health.NewServer()
	RegisterProgressionServer(grpcServer, svc)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   lis,
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}
}

// Listen creates a server listening on addr.
func Listen(addr string, svc ProgressionServer, logger *slog.Logger, opts ...grpc.ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return NewServer(lis, svc, logger, opts...), nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve runs the gRPC server until ctx is cancelled, then reports
// NOT_SERVING and stops gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	s.logger.Info("grpc server listening", "addr", s.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// logUnary logs failed calls with their domain code.
func logUnary(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Debug("rpc failed", "method", info.FullMethod, "code", gameerr.CodeOf(err), "error", err)
		}
		return resp, err
	}
}
