package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/foodshare/internal/lib/sl"
	"github.com/magabrotheeeer/foodshare/internal/models"
	"github.com/magabrotheeeer/foodshare/internal/services/auth"
)

// Resolver проверяет заголовок Authorization.
type Resolver interface {
	Resolve(ctx context.Context, header string) (*models.Identity, error)
}

// Отказы, которые передаются клиенту как Unauthenticated с текстом ошибки.
var rejections = []error{
	auth.ErrMissingToken,
	auth.ErrInvalidSignature,
	auth.ErrExpired,
	auth.ErrMalformed,
	auth.ErrAccountNotFound,
	auth.ErrAccountInactive,
}

// Server реализует IdentityServer поверх Resolver.
type Server struct {
	resolver Resolver
	log      *slog.Logger
}

// NewServer создает новый экземпляр Server.
func NewServer(resolver Resolver, log *slog.Logger) *Server {
	return &Server{
		resolver: resolver,
		log:      log,
	}
}

// Resolve проверяет заголовок и возвращает личность пользователя.
func (s *Server) Resolve(ctx context.Context, header *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.identity.Resolve"

	identity, err := s.resolver.Resolve(ctx, header.GetValue())
	if err != nil {
		for _, target := range rejections {
			if errors.Is(err, target) {
				return nil, status.Error(codes.Unauthenticated, target.Error())
			}
		}
		s.log.Error("resolve failed", slog.String("op", op), sl.Err(err))
		return nil, status.Error(codes.Internal, "internal error")
	}

	out, err := structpb.NewStruct(map[string]any{
		fieldUserID:   identity.UserID,
		fieldEmail:    identity.Email,
		fieldRole:     identity.Role.String(),
		fieldIsActive: identity.IsActive,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// NewGRPCServer создает grpc.Server с зарегистрированным сервисом и журналом вызовов.
func NewGRPCServer(srv IdentityServer, log *slog.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(log)))
	RegisterIdentityServer(s, srv)
	return s
}

func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}
