// Package tokens issues and verifies the signed ID tokens handed to clients.
package tokens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/kgjournal/internal/authz"
)

const (
	ClaimGroups   = "cognito:groups"
	ClaimProvider = "kg:provider"
	ClaimTokenUse = "token_use"

	DefaultTTL = time.Hour
)

var (
	ErrTokenMissing = errors.New("missing token")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// reserved claims are owned by the issuer and cannot be set through custom
// claims.
var reserved = map[string]struct{}{
	"sub": {}, "iss": {}, "exp": {}, "iat": {}, "nbf": {},
	ClaimGroups: {}, ClaimProvider: {}, ClaimTokenUse: {},
}

type Issuer struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

func NewIssuer(secretKey []byte, issuer string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secretKey: secretKey, issuer: issuer, ttl: ttl, now: time.Now}
}

func (issuer *Issuer) TTL() time.Duration {
	return issuer.ttl
}

type Subject struct {
	ID       string
	Groups   []string
	Provider authz.Provider
	Claims   map[string]any
}

// Issue signs an ID token for subject. Custom claims are copied as-is except
// the reserved ones.
func (issuer *Issuer) Issue(subject Subject) (string, error) {
	if strings.TrimSpace(subject.ID) == "" {
		return "", fmt.Errorf("%w: subject is required", ErrTokenInvalid)
	}
	provider := subject.Provider
	if provider == "" {
		provider = authz.ProviderUserPool
	}
	now := issuer.now()

	claims := jwt.MapClaims{}
	for name, value := range subject.Claims {
		if _, skip := reserved[name]; skip {
			continue
		}
		claims[name] = value
	}
	claims["sub"] = subject.ID
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(issuer.ttl))
	if issuer.issuer != "" {
		claims["iss"] = issuer.issuer
	}
	claims[ClaimTokenUse] = "id"
	claims[ClaimProvider] = string(provider)
	if len(subject.Groups) > 0 {
		claims[ClaimGroups] = subject.Groups
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(issuer.secretKey)
}

// Parse verifies rawToken and returns the caller it identifies.
func (issuer *Issuer) Parse(rawToken string) (authz.Principal, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return authz.Principal{}, ErrTokenMissing
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return issuer.secretKey, nil
	}, jwt.WithTimeFunc(issuer.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return authz.Principal{}, ErrTokenExpired
		}
		return authz.Principal{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return authz.Principal{}, ErrTokenInvalid
	}

	subject, _ := claims["sub"].(string)
	if strings.TrimSpace(subject) == "" {
		return authz.Principal{}, fmt.Errorf("%w: subject is missing", ErrTokenInvalid)
	}

	principal := authz.Principal{
		Subject:  subject,
		Provider: authz.ProviderUserPool,
		Claims:   make(map[string]string),
	}
	if provider, ok := claims[ClaimProvider].(string); ok && provider != "" {
		principal.Provider = authz.Provider(provider)
	}
	if groups, ok := claims[ClaimGroups].([]any); ok {
		for _, group := range groups {
			if name, isString := group.(string); isString {
				principal.Groups = append(principal.Groups, name)
			}
		}
	}
	for name, value := range claims {
		if _, skip := reserved[name]; skip {
			continue
		}
		if text, ok := value.(string); ok {
			principal.Claims[name] = text
		}
	}
	principal.Email = principal.Claims["email"]
	return principal, nil
}
