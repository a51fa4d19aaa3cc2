package rpc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestCode(t *testing.T) {
	cases := map[error]codes.Code{
		fmt.Errorf("p1: %w", model.ErrNotFound):            codes.NotFound,
		fmt.Errorf("qty: %w", model.ErrConstraintViolation): codes.InvalidArgument,
		fmt.Errorf("p1: %w", model.ErrInsufficientStock):   codes.FailedPrecondition,
		fmt.Errorf("lock: %w", model.ErrBusy):              codes.Unavailable,
		context.DeadlineExceeded:                           codes.DeadlineExceeded,
		fmt.Errorf("disk on fire"):                         codes.Internal,
	}
	for err, want := range cases {
		assert.Equal(t, want, status.Code(Status(err)), err.Error())
	}
	assert.NoError(t, Status(nil))

	already := status.Error(codes.Aborted, "x")
	assert.Equal(t, already, Status(already))
}

func TestParseDate(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)

	d, err := ParseDate("2024-03-05", jakarta)
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, jakarta)))

	d, err = ParseDate("2024-03-05T10:00:00Z", jakarta)
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))

	d, err = ParseDate(" ", jakarta)
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("05/03/2024", jakarta)
	assert.ErrorIs(t, err, model.ErrConstraintViolation)
}

func TestCodec(t *testing.T) {
	c := jsonCodec{}
	assert.Equal(t, "json", c.Name())

	raw, err := c.Marshal(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))

	raw, err = c.Marshal(&healthpb.HealthCheckRequest{Service: "svc"})
	require.NoError(t, err)
	var req healthpb.HealthCheckRequest
	require.NoError(t, c.Unmarshal(raw, &req))
	assert.Equal(t, "svc", req.GetService())

	var empty struct{ A int }
	assert.NoError(t, c.Unmarshal(nil, &empty))
}

func TestActorID(t *testing.T) {
	assert.Empty(t, ActorID(context.Background()))

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-user-id", "cashier-7"))
	assert.Equal(t, "cashier-7", ActorID(ctx))
}
