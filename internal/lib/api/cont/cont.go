// Package cont carries request-scoped values through the handler chain.
package cont

import "context"

type contextKey string

const operatorKey contextKey = "operator"

// PutOperator stores the authenticated operator username in the context.
func PutOperator(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, operatorKey, username)
}

// GetOperator returns the authenticated operator username, if any.
func GetOperator(ctx context.Context) string {
	if v, ok := ctx.Value(operatorKey).(string); ok {
		return v
	}
	return ""
}
