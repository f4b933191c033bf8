package tools

import (
	"errors"
	"fmt"
	"time"

	"github.com/alucardeht/outliner/internal/apperr"
)

const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

type ToolError struct {
	Code    int
	Message string
	Kind    apperr.Kind
}

func (e *ToolError) Error() string {
	return e.Message
}

func NewToolNotFoundError(name string) *ToolError {
	return &ToolError{
		Code:    CodeMethodNotFound,
		Message: fmt.Sprintf("Tool not found: %s", name),
		Kind:    apperr.KindNotFound,
	}
}

func NewInvalidParamsError(err error) *ToolError {
	return &ToolError{
		Code:    CodeInvalidParams,
		Message: fmt.Sprintf("Invalid params: %v", err),
		Kind:    apperr.KindMalformedInput,
	}
}

func NewToolTimeoutError(name string, timeout time.Duration) *ToolError {
	return &ToolError{
		Code:    CodeInternalError,
		Message: fmt.Sprintf("Tool %s timed out after %s", name, timeout),
		Kind:    apperr.KindIOFailure,
	}
}

func NewToolExecutionError(name string, err error) *ToolError {
	return &ToolError{
		Code:    int(apperr.RPCCode(err)),
		Message: fmt.Sprintf("Error executing tool %s: %v", name, err),
		Kind:    apperr.KindOf(err),
	}
}

// AsToolError converts any tool failure into a ToolError, keeping one that
// is already present in the chain.
func AsToolError(name string, err error) *ToolError {
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return NewToolExecutionError(name, err)
}
