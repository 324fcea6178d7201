package goCred

import "context"

type clientIPContextKey struct{}
type requestIDContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx. The Engine copies it into audit
// event metadata.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithRequestID attaches a request correlation ID to ctx for audit events.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

func requestMetadata(ctx context.Context) map[string]string {
	ip := clientIPFromContext(ctx)
	id := requestIDFromContext(ctx)
	if ip == "" && id == "" {
		return nil
	}

	md := make(map[string]string, 2)
	if ip != "" {
		md["ip"] = ip
	}
	if id != "" {
		md["request_id"] = id
	}
	return md
}
