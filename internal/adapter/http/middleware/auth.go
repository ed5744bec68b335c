package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"loja_pix/pkg"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextUserID = "auth_user_id"
	ContextRole   = "auth_role"

	RoleAdmin = "admin"
)

var (
	errUnauthorized = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Missing or invalid session token", http.StatusUnauthorized)
	errForbidden    = pkg.NewDomainErrorSimple("FORBIDDEN", "Admin role required", http.StatusForbidden)
)

// Session is the authenticated caller resolved from the bearer token.
type Session struct {
	UserID string
	Role   string
}

func (s Session) IsAdmin() bool {
	return strings.EqualFold(s.Role, RoleAdmin)
}

// JWTAuth validates an HS256 bearer token and stores the caller in the gin
// context. The subject is read from "user_id", falling back to "sub".
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		session, err := parseBearer(c.GetHeader("Authorization"), key)
		if err != nil {
			log.Printf("[auth][middleware] rejected path=%s err=%v", c.FullPath(), err)
			c.AbortWithStatusJSON(errUnauthorized.HTTPStatus, errUnauthorized.ToHTTPError())
			return
		}
		c.Set(ContextUserID, session.UserID)
		c.Set(ContextRole, session.Role)
		c.Next()
	}
}

// AdminOnly must run after JWTAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsAdmin() {
			c.AbortWithStatusJSON(errForbidden.HTTPStatus, errForbidden.ToHTTPError())
			return
		}
		c.Next()
	}
}

func CurrentSession(c *gin.Context) Session {
	return Session{UserID: c.GetString(ContextUserID), Role: c.GetString(ContextRole)}
}

func parseBearer(header string, key []byte) (Session, error) {
	if len(key) == 0 {
		return Session{}, errors.New("jwt secret not configured")
	}
	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return Session{}, errors.New("missing bearer token")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Session{}, err
	}

	userID := claimString(claims, "user_id")
	if userID == "" {
		userID = claimString(claims, "sub")
	}
	if userID == "" {
		return Session{}, errors.New("token has no subject")
	}
	return Session{UserID: userID, Role: claimString(claims, "role")}, nil
}

func claimString(claims jwt.MapClaims, name string) string {
	switch v := claims[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}
