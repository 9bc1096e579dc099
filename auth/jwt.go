package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/austrian-olympiad-informatics/aoi-portal/httpjson"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang-jwt/jwt/v5/request"
)

// ScopeInvalidateScores allows reporting freshly scored participations.
const ScopeInvalidateScores = "scores:invalidate"

const (
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
)

// ServiceClaims identify a collaborating service, not a person.
type ServiceClaims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

func (c *ServiceClaims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

type ClaimsKeyType string

var CtxJwtClaimsKey ClaimsKeyType = "jwtClaims"

// ClaimsFromContext returns the claims RequireScope stored, or nil.
func ClaimsFromContext(ctx context.Context) *ServiceClaims {
	claims, _ := ctx.Value(CtxJwtClaimsKey).(*ServiceClaims)
	return claims
}

func GenerateServiceJWT(subject string, scopes []string, ttl time.Duration, jwtKey []byte) (string, error) {
	if len(jwtKey) == 0 {
		return "", errors.New("empty jwt key")
	}
	now := time.Now()
	claims := &ServiceClaims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func ValidateJWT(tokenStr string, jwtKey []byte) (*ServiceClaims, error) {
	if len(jwtKey) == 0 {
		return nil, errors.New("no jwt key configured")
	}
	claims := &ServiceClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, errors.New("invalid token signature")
		}
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// RequireScope rejects requests without a valid bearer token carrying scope
// and adds the claims to the request context. An empty key rejects everything.
func RequireScope(jwtKey []byte, scope string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, err := request.BearerExtractor{}.ExtractToken(r)
			if err != nil {
				httpjson.WriteErrorJson(w, "missing bearer token", http.StatusUnauthorized, ErrCodeUnauthorized)
				return
			}

			claims, err := ValidateJWT(token, jwtKey)
			if err != nil {
				httpjson.WriteErrorJson(w, err.Error(), http.StatusUnauthorized, ErrCodeUnauthorized)
				return
			}
			if !claims.HasScope(scope) {
				httpjson.WriteErrorJson(w, "token lacks scope "+scope, http.StatusForbidden, ErrCodeForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), CtxJwtClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}
