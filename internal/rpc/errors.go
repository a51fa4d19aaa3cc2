package rpc

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Status maps engine errors onto gRPC codes.
func Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(Code(err), err.Error())
}

func Code(err error) codes.Code {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, model.ErrConstraintViolation):
		return codes.InvalidArgument
	case errors.Is(err, model.ErrInsufficientStock):
		return codes.FailedPrecondition
	case errors.Is(err, model.ErrBusy):
		return codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	default:
		return codes.Internal
	}
}
