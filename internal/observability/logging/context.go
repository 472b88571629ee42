package logging

import (
	"context"

	"github.com/google/uuid"
)

type Module string

const (
	ModuleReminder Module = "reminder"
	ModulePush     Module = "push"
	ModuleDispatch Module = "dispatch"
	ModuleAgent    Module = "agent"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	moduleKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)

	return v
}

func WithModule(ctx context.Context, module Module) context.Context {
	return context.WithValue(ctx, moduleKey, module)
}

func ModuleFrom(ctx context.Context) Module {
	v, _ := ctx.Value(moduleKey).(Module)

	return v
}

// ValidateAndExtractRequestID keeps an inbound id only when it parses as a
// UUID and mints a fresh v7 otherwise.
func ValidateAndExtractRequestID(raw string) string {
	if raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id.String()
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
