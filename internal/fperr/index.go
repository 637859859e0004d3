package fperr

import (
	"errors"
	"reflect"

	"github.com/turbot/pipe-fittings/error_helpers"
	"github.com/turbot/pipe-fittings/perr"

	"github.com/turbot/adfupgrade/internal/types"
)

const (
	ErrorCodeInvalidInput = "error_invalid_input"
	ErrorCodeFabricFailed = "error_fabric_failed"
	ErrorCodeHistoryError = "error_history"
	ErrorCodeUnknownError = "error_unknown_error"
	ErrorCodeNotFound     = "error_not_found"

	ExitCodeSuccess           = 0
	ExitCodeRunFailed         = 2
	ExitCodeInvalidInput      = 3
	ExitCodeNotFound          = 4
	ExitCodeUnknownError      = 10
	ExitCodeUnknownErrorPanic = 11
)

// ExitCodeForProgress maps the state of the produced progress document to the process exit code.
func ExitCodeForProgress(p *types.Progress) int {
	if p == nil || !p.Succeeded() {
		return ExitCodeRunFailed
	}
	return ExitCodeSuccess
}

func GetExitCode(err error, fromPanic bool) int {
	var e perr.ErrorModel
	if errors.As(err, &e) {
		switch e.Type {
		case ErrorCodeInvalidInput:
			return ExitCodeInvalidInput
		case ErrorCodeNotFound:
			return ExitCodeNotFound
		case ErrorCodeUnknownError:
			return ExitCodeUnknownError
		}
		if e.Status == 404 {
			return ExitCodeNotFound
		}
		if e.Status == 400 {
			return ExitCodeInvalidInput
		}
	}

	if fromPanic {
		return ExitCodeUnknownErrorPanic
	}
	return ExitCodeUnknownError
}

func FailOnError(sourceError error, wrapWith reflect.Type, errorCode string) {
	if sourceError == nil {
		return
	}

	wrapped := WrapsWith(sourceError, wrapWith, errorCode)
	error_helpers.FailOnError(wrapped)
}

func FailOnErrorWithMessage(sourceError error, message string, wrapWith reflect.Type, errorCode string) {
	if sourceError == nil {
		return
	}

	wrapped := WrapsWith(sourceError, wrapWith, errorCode)
	wrapped.Detail += " " + message
	error_helpers.FailOnError(wrapped)
}

func WrapsWith(sourceError error, wrapWith reflect.Type, errorCode string) perr.ErrorModel {
	if errorModel, ok := sourceError.(perr.ErrorModel); ok {
		if errorModel.Type == "" {
			errorModel.Type = errorCode
		}
		return errorModel
	}

	if wrapWith != nil {
		// create an instance of wrapWith
		wrapInstance := reflect.New(wrapWith).Elem().Interface()
		if errorModel, ok := wrapInstance.(perr.ErrorModel); ok {
			errorModel.Type = errorCode
			errorModel.Detail = sourceError.Error()
			return errorModel
		}
	}

	// Wrap the error in an internal error
	errorModel := perr.Internal(sourceError)
	errorModel.Type = errorCode
	return errorModel
}
