package auth

import (
	"errors"
	"strings"
	"time"

	"shop-demo/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// UsernameKey is the gin context key holding the caller's username
const UsernameKey = "username"

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth checks the configured credential pair and issues tokens
type Auth struct {
	config *config.AuthConfig
	now    func() time.Time
}

// New creates a new Auth instance
func New(cfg *config.AuthConfig) *Auth {
	return &Auth{config: cfg, now: time.Now}
}

// ValidateCredentials compares the pair with the configured one
func (a *Auth) ValidateCredentials(username, password string) error {
	if username == a.config.Username && password == a.config.Password {
		return nil
	}
	return ErrInvalidCredentials
}

// GenerateToken generates a JWT token for the user
func (a *Auth) GenerateToken(username string) (string, error) {
	now := a.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(a.config.TokenTTLHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.JWTSecret))
}

// ValidateToken validates a JWT token and returns the claims
func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(a.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Identify returns a Gin middleware that records who is calling when a valid
// bearer token is present. It never rejects a request.
func (a *Auth) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		claims, err := a.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err == nil {
			c.Set(UsernameKey, claims.Username)
		}
		c.Next()
	}
}
