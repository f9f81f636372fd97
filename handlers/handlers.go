package handlers

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

type handler[I, O any] = func(context.Context, *I) (*O, error)

func handlerWithErrorHandler[I, O any](handler handler[I, O], do func(context.Context, error)) handler[I, O] {
	if do == nil {
		return handler
	}

	return func(ctx context.Context, i *I) (*O, error) {
		o, err := handler(ctx, i)
		if err != nil {
			do(ctx, err)
		}
		return o, err
	}
}

// APIError is the body of every error response written by this package.
// It implements [huma.StatusError].
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"message" example:"Contact not found" doc:"Human readable error message"`

	cause error
}

func newError(status int, message string, cause error) *APIError {
	return &APIError{Status: status, Message: message, cause: cause}
}

func (e *APIError) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.cause)
}

func (e *APIError) GetStatus() int { return e.Status }

func (e *APIError) Unwrap() error { return e.cause }

// opErrors documents codes as [APIError] responses of the operation.
func opErrors(api huma.API, codes ...int) func(*huma.Operation) {
	schema := api.OpenAPI().Components.Schemas.Schema(reflect.TypeOf(APIError{}), true, "")
	return func(o *huma.Operation) {
		if o.Responses == nil {
			o.Responses = make(map[string]*huma.Response, len(codes))
		}
		for _, code := range codes {
			o.Responses[strconv.Itoa(code)] = &huma.Response{
				Description: http.StatusText(code),
				Content: map[string]*huma.MediaType{
					"application/json": {Schema: schema},
				},
			}
		}
	}
}
