package middleware

import (
	"net/http"
	"strings"

	"kairo/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey  = "claims"
	EmpresaKey = "empresa_id"
)

// Roles.
const (
	RolAdministrador = "administrador"
	RolSupervisor    = "supervisor"
	RolOperador      = "operador"
)

// JWTClaims are the custom claims embedded in every access token. Tokens are
// issued by the identity service; this API only verifies them.
type JWTClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Rol       string `json:"rol"`
	EmpresaID string `json:"empresa_id"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route and resolves
// the tenant. Tokens without a valid empresa_id are rejected.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.NewCode("no_autenticado", "Autenticacion requerida"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.NewCode("token_invalido", "Token invalido o expirado"))
			return
		}

		empresaID, err := uuid.Parse(claims.EmpresaID)
		if err != nil || empresaID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.NewCode("token_invalido", "El token no identifica una empresa"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(EmpresaKey, empresaID)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.NewCode("sin_permiso", "Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// GetEmpresaID returns the tenant resolved by JWTAuth.
func GetEmpresaID(c *gin.Context) uuid.UUID {
	id, _ := c.MustGet(EmpresaKey).(uuid.UUID)
	return id
}
