package obs

import "context"

// routePatternKey keys the matched chi route pattern on a request context.
type routePatternKey struct{}

// WithRoutePattern stores the matched route template so metrics label by
// pattern (/api/v1/bookings/{code}) instead of the raw request path.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the stored route pattern, or empty when
// the request never matched a route.
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(routePatternKey{}).(string); ok {
		return v
	}
	return ""
}
