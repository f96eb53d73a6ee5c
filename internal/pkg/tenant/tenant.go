// internal/pkg/tenant/tenant.go
package tenant

import "context"

type contextKey struct{}

// With returns a context carrying the tenant identifier.
func With(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, contextKey{}, tenant)
}

// From returns the tenant identifier carried by the context, "" when absent.
func From(ctx context.Context) string {
	if t, ok := ctx.Value(contextKey{}).(string); ok {
		return t
	}
	return ""
}
