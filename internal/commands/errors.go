package commands

import (
	"context"
	"errors"

	"github.com/goliatone/go-cms-community/internal/access"
	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/validation"
	"github.com/goliatone/go-cms-community/internal/versions"
	goerrors "github.com/goliatone/go-errors"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandPayloadInvalid   = "COMMAND_PAYLOAD_INVALID"
	commandForbidden        = "COMMAND_FORBIDDEN"
	commandNotFound         = "COMMAND_NOT_FOUND"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// wrapExecuteError keeps schema validation failures in the validation
// category so callers can tell bad payloads from storage failures.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	var payloadErr *validation.PayloadValidationError
	switch {
	case errors.As(err, &payloadErr):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "document payload is invalid").
			WithTextCode(commandPayloadInvalid)
	case errors.Is(err, access.ErrForbidden):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command not permitted").
			WithTextCode(commandForbidden)
	case collections.IsNotFound(err), versions.IsNotFound(err):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command target not found").
			WithTextCode(commandNotFound)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode(commandExecuteFailed)
	}
}
