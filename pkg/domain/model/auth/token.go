package auth

import (
	"context"
	"time"
)

// AnonymousUserID is the subject used when authentication is disabled
const AnonymousUserID = "anonymous"

// Token is the verified identity of a bearer token
type Token struct {
	Sub       string
	Email     string
	Name      string
	ExpiresAt time.Time
}

// NewAnonymousUser returns the identity used in no-auth mode
func NewAnonymousUser() *Token {
	return &Token{
		Sub:  AnonymousUserID,
		Name: "Anonymous",
	}
}

// IsAnonymous reports whether the token is the no-auth identity
func (t *Token) IsAnonymous() bool {
	return t == nil || t.Sub == AnonymousUserID
}

type ctxTokenKey struct{}

// ContextWithToken stores the token in ctx
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext returns the token stored in ctx, or nil
func TokenFromContext(ctx context.Context) *Token {
	token, _ := ctx.Value(ctxTokenKey{}).(*Token)
	return token
}

// UserIDFromContext returns the subject of the token in ctx, or the anonymous ID
func UserIDFromContext(ctx context.Context) string {
	if token := TokenFromContext(ctx); token != nil {
		return token.Sub
	}
	return AnonymousUserID
}
