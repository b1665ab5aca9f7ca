// Package identity реализует gRPC-сервис проверки личности для внутренних
// сервисов: они передают заголовок Authorization и получают пользователя.
//
// Сообщения описаны стандартными типами protobuf (StringValue на входе,
// Struct на выходе), поэтому сервису не нужен сгенерированный код.
package identity

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName полное имя gRPC-сервиса.
	ServiceName = "foodshare.identity.v1.Identity"
	// ResolveMethod полное имя метода Resolve.
	ResolveMethod = "/" + ServiceName + "/Resolve"
)

// Поля ответа Resolve.
const (
	fieldUserID   = "userId"
	fieldEmail    = "email"
	fieldRole     = "role"
	fieldIsActive = "isActive"
)

// IdentityServer серверная часть сервиса.
type IdentityServer interface {
	Resolve(ctx context.Context, header *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc описание сервиса для grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Resolve",
			Handler:    resolveHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foodshare/identity/v1/identity.proto",
}

// RegisterIdentityServer регистрирует srv в s.
func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func resolveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IdentityServer).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ResolveMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IdentityServer).Resolve(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
