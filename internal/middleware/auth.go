package middleware

import (
	"errors"
	"net/http"
	"strings"

	"ferrepos/internal/apierror"
	"ferrepos/internal/model"
	"ferrepos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	ClaimsKey = "claims"
	SesionKey = "sesion"
)

// JWTClaims are the custom claims embedded in every ferrepos session token.
type JWTClaims struct {
	SesionID string `json:"sesion_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Rol      string `json:"rol"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.WithCodigo(apierror.CodigoAuth, "Autenticacion requerida"))
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

		if err != nil || !token.Valid || claims.SesionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.WithCodigo(apierror.CodigoAuth, "Token invalido o expirado"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// SesionLoader resolves the session behind the JWT, so the backend token is
// available to handlers. A session removed by logout is rejected even while
// its JWT is still valid.
func SesionLoader(repo repository.SesionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		sesion, err := repo.Obtener(c.Request.Context(), claims.SesionID)
		if errors.Is(err, repository.ErrSesionNoEncontrada) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.WithCodigo(apierror.CodigoAuth, "Sesion expirada, ingresa nuevamente"))
			return
		}
		if err != nil {
			log.Error().Err(err).Str("sesion_id", claims.SesionID).Msg("sesion: lectura fallida")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierror.WithCodigo(apierror.CodigoInterno, "Sesiones no disponibles"))
			return
		}
		c.Set(SesionKey, sesion)
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
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.WithCodigo(apierror.CodigoAuth, "Permisos insuficientes"))
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

// GetSesion returns the session loaded by SesionLoader.
func GetSesion(c *gin.Context) *model.Sesion {
	sesion, _ := c.MustGet(SesionKey).(*model.Sesion)
	return sesion
}
