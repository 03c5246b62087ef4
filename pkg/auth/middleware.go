package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// ContextWithClaims returns a new context with the given Claims attached.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts Claims from the context.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}

// authenticate validates an authorization header value and checks the scope.
// It returns the gRPC code to report on failure.
func authenticate(v *Verifier, header, scope string) (*Claims, codes.Code, string) {
	if header == "" {
		return nil, codes.Unauthenticated, "missing authorization header"
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, codes.Unauthenticated, "authorization header must use the Bearer scheme"
	}
	claims, err := v.Verify(token)
	if err != nil {
		return nil, codes.Unauthenticated, err.Error()
	}
	if scope != "" && !claims.HasScope(scope) {
		return nil, codes.PermissionDenied, "missing required scope " + scope
	}
	return claims, codes.OK, ""
}

// UnaryServerInterceptor returns a gRPC unary interceptor that requires a valid
// bearer token with scope. Methods whose full name starts with a skip prefix
// are not checked.
func UnaryServerInterceptor(v *Verifier, scope string, skipPrefixes ...string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		for _, p := range skipPrefixes {
			if strings.HasPrefix(info.FullMethod, p) {
				return handler(ctx, req)
			}
		}

		var header string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				header = values[0]
			}
		}

		claims, code, msg := authenticate(v, header, scope)
		if code != codes.OK {
			return nil, status.Error(code, msg)
		}
		return handler(ContextWithClaims(ctx, claims), req)
	}
}

// HTTPMiddleware returns middleware that requires a valid bearer token with scope.
func HTTPMiddleware(v *Verifier, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, code, msg := authenticate(v, r.Header.Get("Authorization"), scope)
			if code != codes.OK {
				httpStatus, errCode := http.StatusUnauthorized, "unauthenticated"
				if code == codes.PermissionDenied {
					httpStatus, errCode = http.StatusForbidden, "permission_denied"
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(httpStatus)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"code": errCode, "message": msg},
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}
