package service

import (
	"context"
	"strings"
)

type initiatingClientKey struct{}

// WithInitiatingClient records the name of the application that started the request.
func WithInitiatingClient(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, initiatingClientKey{}, strings.TrimSpace(name))
}

// InitiatingClient returns the application name stored by WithInitiatingClient, or "".
func InitiatingClient(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(initiatingClientKey{}).(string)
	return name
}
