package auth

import (
	"context"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

var JWTKey = []byte(jwtKeyFromEnv())

func jwtKeyFromEnv() string {
	if key := os.Getenv("JWT_SECRET"); key != "" {
		return key
	}
	return "versewell-library-dev-key"
}

type Claims struct {
	Profile struct {
		SubjectID int    `json:"subjectId"`
		Name      string `json:"name"`
		Role      string `json:"role"`
	} `json:"profile"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewToken issues a signed HS256 session token, valid 24h.
func NewToken(subjectID int, name, email, role string) (string, error) {
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	claims.Profile.SubjectID = subjectID
	claims.Profile.Name = name
	claims.Profile.Role = role

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTKey)
}

// AuthContext is the identity attached to every request after auth,
// an explicit value rather than ambient session state.
type AuthContext struct {
	SubjectID int
	Name      string
	Role      string
}

func (a AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

type ctxKey struct{}

func SetAuthContext(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

func GetAuthContext(ctx context.Context) (AuthContext, error) {
	ac, ok := ctx.Value(ctxKey{}).(AuthContext)
	if !ok {
		return AuthContext{}, errors.New("no auth context")
	}
	return ac, nil
}
