package tracker

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService issues and checks identity tokens
type TokenService interface {
	Issue(identity Identity) (string, error)
	Validate(tokenString, expectedSubject string) bool
	ExtractSubject(tokenString string) (string, bool)
	Parse(tokenString string) (*JWTClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
	now             func() time.Time
}

// TokenServiceOption configures a TokenServiceImpl
type TokenServiceOption func(*TokenServiceImpl)

// WithClock overrides the time source used to stamp and check tokens
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, audience jwt.ClaimStrings, logger Logger, opts ...TokenServiceOption) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	ts := &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
		logger:          logger,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// NewTokenServiceFromConfig wires a TokenServiceImpl from Config
func NewTokenServiceFromConfig(cfg Config, logger Logger, opts ...TokenServiceOption) *TokenServiceImpl {
	return NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		jwt.ClaimStrings(cfg.GetAudience()),
		logger,
		opts...,
	)
}

// Issue creates a signed token whose subject is the identity's email
func (ts *TokenServiceImpl) Issue(identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.Email(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		UID:      identity.ID(),
		UserRole: identity.Role(),
	}

	ensureTokenID(&claims.RegisteredClaims)

	return ts.signClaims(claims)
}

// signClaims signs claims with the configured signing key
func (ts *TokenServiceImpl) signClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Parse validates a token string, returning structured claims
func (ts *TokenServiceImpl) Parse(tokenString string) (*JWTClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Warn("TokenService parse encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// ExtractSubject returns the subject of a valid token. Any failure, expiry
// included, reports false.
func (ts *TokenServiceImpl) ExtractSubject(tokenString string) (string, bool) {
	claims, err := ts.Parse(tokenString)
	if err != nil {
		ts.logger.Debug("TokenService extract subject failed", "error", err)
		return "", false
	}
	if claims.Subject() == "" {
		return "", false
	}
	return claims.Subject(), true
}

// Validate reports whether the token is well formed, correctly signed,
// unexpired and issued for expectedSubject. It never returns an error.
func (ts *TokenServiceImpl) Validate(tokenString, expectedSubject string) bool {
	claims, err := ts.Parse(tokenString)
	if err != nil {
		return false
	}
	return expectedSubject != "" && claims.Subject() == expectedSubject
}
