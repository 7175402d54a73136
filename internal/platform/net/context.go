// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyWorker ctxKey = "worker"

// WithRequest annotates context with the request scoped id
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return ctx
}

// WithWorker annotates context with the name of the dispatcher or reaper worker
// driving it, for log correlation outside the request/response path
func WithWorker(ctx context.Context, name string) context.Context {
	if name != "" {
		ctx = context.WithValue(ctx, keyWorker, name)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return ""
}

// Worker returns the worker name on the context if present
func Worker(ctx context.Context) string {
	if v, ok := ctx.Value(keyWorker).(string); ok {
		return v
	}
	return ""
}
