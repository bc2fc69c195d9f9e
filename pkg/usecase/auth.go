package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/auth"
)

// DefaultIssuer is the iss claim of tokens minted by this service
const DefaultIssuer = "ifrs-modeler"

// AuthUseCaseInterface verifies bearer tokens for the HTTP layer
type AuthUseCaseInterface interface {
	ValidateToken(ctx context.Context, bearer string) (*auth.Token, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies HS256 signed JWTs
type AuthUseCase struct {
	secret []byte
	issuer string
	now    func() time.Time
	cache  *authCache
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithIssuer overrides the expected and minted iss claim
func WithIssuer(issuer string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.issuer = issuer
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

func NewAuthUseCase(secret []byte, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		secret: secret,
		issuer: DefaultIssuer,
		now:    time.Now,
		cache:  newAuthCache(),
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

// IsNoAuthn returns false for regular AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// IssueToken mints a signed token for sub valid for ttl
func (uc *AuthUseCase) IssueToken(sub, email, name string, ttl time.Duration) (string, error) {
	if sub == "" {
		return "", goerr.New("subject is required")
	}
	if ttl <= 0 {
		return "", goerr.New("ttl must be positive", goerr.V("ttl", ttl))
	}

	now := uc.now()
	builder := jwt.NewBuilder().
		Subject(sub).
		Issuer(uc.issuer).
		IssuedAt(now).
		NotBefore(now).
		Expiration(now.Add(ttl))
	if email != "" {
		builder = builder.Claim("email", email)
	}
	if name != "" {
		builder = builder.Claim("name", name)
	}

	token, err := builder.Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token")
	}
	return string(signed), nil
}

// ValidateToken verifies the signature, issuer and lifetime of a bearer token
func (uc *AuthUseCase) ValidateToken(ctx context.Context, bearer string) (*auth.Token, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, goerr.Wrap(ErrUnauthenticated, "missing bearer token")
	}

	if token, ok := uc.cache.get(bearer, uc.now()); ok {
		return token, nil
	}

	parsed, err := jwt.Parse([]byte(bearer),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(uc.issuer),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
		jwt.WithAcceptableSkew(10*time.Second),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "failed to verify token", goerr.V("cause", err.Error()))
	}
	if parsed.Subject() == "" {
		return nil, goerr.Wrap(ErrInvalidToken, "sub claim not found in token")
	}

	token := &auth.Token{
		Sub:       parsed.Subject(),
		Email:     stringClaim(parsed, "email"),
		Name:      stringClaim(parsed, "name"),
		ExpiresAt: parsed.Expiration(),
	}
	uc.cache.set(bearer, token, uc.now())

	return token, nil
}

func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
