package middleware

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/garage-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/garage-service/internal/platform/config"
)

const (
	// ContextKeyClaims is the gin context key of the extracted claims.
	ContextKeyClaims = "claims"

	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
)

// Claims are the caller identity forwarded by the gateway, which has already
// validated the token.
type Claims struct {
	// Subject is the caller's user ID.
	Subject string

	// Roles are the caller's roles, e.g. garage-admin.
	Roles []string
}

// HasRole reports whether the caller has role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// SubjectHeader returns the header carrying the caller's user ID, or "" when
// auth is off.
func SubjectHeader(cfg *config.AuthConfig) string {
	if cfg == nil || !cfg.Enabled {
		return ""
	}

	return cmp.Or(cfg.SubjectHeader, defaultSubjectHeader)
}

// ExtractClaims reads the claims from the configured headers.
// Roles are comma separated.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	subjectHeader, rolesHeader := defaultSubjectHeader, defaultRolesHeader
	if cfg != nil {
		subjectHeader = cmp.Or(cfg.SubjectHeader, subjectHeader)
		rolesHeader = cmp.Or(cfg.RolesHeader, rolesHeader)
	}

	claims := &Claims{Subject: strings.TrimSpace(c.GetHeader(subjectHeader))}

	for _, role := range strings.Split(c.GetHeader(rolesHeader), ",") {
		if role = strings.TrimSpace(role); role != "" {
			claims.Roles = append(claims.Roles, role)
		}
	}

	return claims
}

// GetClaims returns the claims stored by RequireAuth or RequireRole, or nil.
func GetClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}

	return nil
}

// RequireAuth rejects requests without a subject with 401.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := claimsFor(c, cfg); claims.Subject == "" {
			dto.AbortWithCode(c, dto.ErrorCodeUnauthorized, "authentication required")
			return
		}

		c.Next()
	}
}

// RequireRole rejects requests whose caller lacks role with 403.
func RequireRole(cfg *config.AuthConfig, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !claimsFor(c, cfg).HasRole(role) {
			dto.AbortWithCode(c, dto.ErrorCodeForbidden, "role "+role+" required")
			return
		}

		c.Next()
	}
}

func claimsFor(c *gin.Context, cfg *config.AuthConfig) *Claims {
	if claims := GetClaims(c); claims != nil {
		return claims
	}

	claims := ExtractClaims(c, cfg)
	c.Set(ContextKeyClaims, claims)

	return claims
}
