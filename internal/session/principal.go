package session

import "context"

type principalKey struct{}

// WithPrincipal кладёт идентификатор авторизованного принципала в контекст.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFrom достаёт принципала, положенного WithPrincipal.
func PrincipalFrom(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey{}).(string)
	return p, ok && p != ""
}
