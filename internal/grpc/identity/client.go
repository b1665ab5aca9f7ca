package identity

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/foodshare/internal/models"
)

const callTimeout = 3 * time.Second

// Client обращается к удалённому сервису Identity. Реализует тот же контракт,
// что и локальный auth.Resolver, поэтому подходит для middlewarectx.Authenticate.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient создает клиент для addr. Соединение устанавливается лениво.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	const op = "grpc.identity.NewClient"

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Client{conn: conn}, nil
}

// Close закрывает соединение.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Resolve проверяет заголовок на удалённом сервисе. Отказы возвращаются теми же
// ошибками, что и у auth.Resolver.
func (c *Client) Resolve(ctx context.Context, header string) (*models.Identity, error) {
	const op = "grpc.identity.Client.Resolve"

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, ResolveMethod, wrapperspb.String(header), out); err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.Unauthenticated {
			for _, target := range rejections {
				if st.Message() == target.Error() {
					return nil, target
				}
			}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fields := out.GetFields()
	role, err := models.ParseRole(fields[fieldRole].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Identity{
		UserID:   fields[fieldUserID].GetStringValue(),
		Email:    fields[fieldEmail].GetStringValue(),
		Role:     role,
		IsActive: fields[fieldIsActive].GetBoolValue(),
	}, nil
}
