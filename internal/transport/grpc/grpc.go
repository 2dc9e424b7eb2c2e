package grpctransport

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/corray333/storefront-order/pkg/http/middleware/auth"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// GRPCTransport represents the gRPC transport layer.
type GRPCTransport struct {
	server       *grpc.Server
	listener     net.Listener
	adminService *OrderAdminService
}

// NewGRPCTransport creates a new GRPCTransport listening on server.grpc.port.
func NewGRPCTransport(service service, verifier *auth.Verifier) *GRPCTransport {
	port := viper.GetString("server.grpc.port")
	if port == "" {
		port = "9090"
	}

	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		panic(err)
	}

	return &GRPCTransport{
		server:       newGRPCServer(verifier),
		listener:     listener,
		adminService: NewOrderAdminService(service),
	}
}

// Run starts the gRPC server.
func (g *GRPCTransport) Run() error {
	g.RegisterServices()
	slog.Info("Starting gRPC server", "address", g.listener.Addr().String())

	return g.server.Serve(g.listener)
}

// Shutdown gracefully shuts down the gRPC server.
func (g *GRPCTransport) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.server.Stop()

		return ctx.Err()
	}
}

// RegisterServices registers the gRPC services.
func (g *GRPCTransport) RegisterServices() {
	RegisterOrderAdminServer(g.server, g.adminService)
}

// newGRPCServer creates a new gRPC server with keepalive settings and the
// logging and admin auth interceptors.
func newGRPCServer(verifier *auth.Verifier) *grpc.Server {
	keepaliveParams := keepalive.ServerParameters{
		MaxConnectionIdle: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_idle"),
		) * time.Minute,
		MaxConnectionAge: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age"),
		) * time.Minute,
		MaxConnectionAgeGrace: time.Duration(
			viper.GetInt("server.grpc.keepalive.max_connection_age_grace"),
		) * time.Second,
		Time: time.Duration(
			viper.GetInt("server.grpc.keepalive.time"),
		) * time.Second,
		Timeout: time.Duration(
			viper.GetInt("server.grpc.keepalive.timeout"),
		) * time.Second,
	}

	keepalivePolicy := keepalive.EnforcementPolicy{
		MinTime: time.Duration(
			viper.GetInt("server.grpc.keepalive.min_time"),
		) * time.Second,
		PermitWithoutStream: viper.GetBool("server.grpc.keepalive.permit_without_stream"),
	}

	opts := []grpc.ServerOption{
		grpc.KeepaliveParams(keepaliveParams),
		grpc.KeepaliveEnforcementPolicy(keepalivePolicy),
		grpc.ChainUnaryInterceptor(loggingInterceptor, adminAuthInterceptor(verifier)),
	}

	return grpc.NewServer(opts...)
}

func loggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	attrs := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if code == codes.Internal || code == codes.Unknown {
		slog.ErrorContext(ctx, "gRPC request failed", append(attrs, "error", err)...)
	} else {
		slog.InfoContext(ctx, "gRPC request", attrs...)
	}

	return resp, err
}

// adminAuthInterceptor verifies the bearer token from the authorization
// metadata and requires the admin role.
func adminAuthInterceptor(verifier *auth.Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)

		var header string
		if values := md.Get("authorization"); len(values) > 0 {
			header = values[0]
		}

		raw, err := auth.BearerToken(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}

		a, err := verifier.Verify(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, auth.ErrInvalidToken.Error())
		}

		if !a.Admin {
			return nil, status.Error(codes.PermissionDenied, "admin access required")
		}

		return handler(auth.WithActor(ctx, a), req)
	}
}
