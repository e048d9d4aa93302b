package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// roleServiceRole is the supabase role carried by backend service keys.
	roleServiceRole = "service_role"
	// adminRole is the app_metadata role granted to back-office operators.
	adminRole = "admin"
)

// supabase jwt claims structure, reduced to what report access needs
type SupabaseClaims struct {
	jwt.RegisteredClaims

	// role is the postgres role (e.g., "authenticated", "service_role")
	Role string `json:"role,omitempty"`

	// email is the user's email address
	Email string `json:"email,omitempty"`

	// app_metadata is only writable server side, so it can carry the admin flag
	AppMetadata map[string]any `json:"app_metadata,omitempty"`
}

// UserID returns the subject claim (user's UUID in supabase)
func (c *SupabaseClaims) UserID() string {
	return c.Subject
}

// IsAdmin returns true for service keys and operators flagged as admin.
func (c *SupabaseClaims) IsAdmin() bool {
	if c.Role == roleServiceRole {
		return true
	}
	role, _ := c.AppMetadata["role"].(string)
	return role == adminRole
}

// JWTValidator validates supabase auth tokens
type JWTValidator struct {
	secret []byte
	now    func() time.Time
}

// NewJWTValidator creates a new validator with the supabase jwt secret
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// common jwt validation errors
var (
	ErrMissingToken     = errors.New("missing authorization token")
	ErrInvalidToken     = errors.New("invalid token format")
	ErrTokenExpired     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrNotAdmin         = errors.New("admin role required")
)

// ValidateToken parses and validates a supabase jwt token
// returns the claims if valid, or an error if validation fails
func (v *JWTValidator) ValidateToken(tokenString string) (*SupabaseClaims, error) {
	tokenString = strings.TrimSpace(ExtractBearerToken(tokenString))
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims := &SupabaseClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// validate the signing method is HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now))

	if err != nil {
		// check for specific jwt errors
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	// validate essential claims
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidClaims)
	}

	return claims, nil
}

// ValidateAdminToken validates a token and requires admin access.
func (v *JWTValidator) ValidateAdminToken(tokenString string) (*SupabaseClaims, error) {
	claims, err := v.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from an Authorization header value
func ExtractBearerToken(authHeader string) string {
	// handle "Bearer <token>" format
	return strings.TrimPrefix(authHeader, "Bearer ")
}
