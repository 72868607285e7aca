package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"spectrumhub/db"
	"spectrumhub/logger"
	"spectrumhub/models"
	"spectrumhub/utils"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by AdminAuthMiddleware.
const (
	ContextAdminEmail = "adminEmail"
	ContextAdminID    = "adminID"
	ContextAdminRole  = "adminRole"
)

// RBAC resources and actions.
const (
	ResourceStory = "story"
	ResourceLogs  = "logs"

	ActionRead    = "read"
	ActionApprove = "approve"
	ActionReview  = "review"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

type policy struct {
	role     string
	resource string
	action   string
}

var defaultPolicies = []policy{
	{models.RoleAdmin, ResourceStory, ActionRead},
	{models.RoleAdmin, ResourceStory, ActionApprove},
	{models.RoleAdmin, ResourceStory, ActionReview},
	{models.RoleAdmin, ResourceLogs, ActionRead},
	{models.RoleModerator, ResourceStory, ActionRead},
	{models.RoleModerator, ResourceStory, ActionApprove},
	{models.RoleModerator, ResourceStory, ActionReview},
}

// NewEnforcer builds the casbin enforcer. With an adapter, stored policies
// are loaded and the defaults are added and saved if missing; with nil the
// defaults live in memory only.
func NewEnforcer(adapter persist.Adapter, log *zap.Logger) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin model: %w", err)
	}

	var enforcer *casbin.Enforcer
	if adapter != nil {
		enforcer, err = casbin.NewEnforcer(m, adapter)
	} else {
		enforcer, err = casbin.NewEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Casbin enforcer: %w", err)
	}

	added := 0
	for _, p := range defaultPolicies {
		exists, err := enforcer.HasPolicy(p.role, p.resource, p.action)
		if err != nil {
			return nil, fmt.Errorf("failed to check policy: %w", err)
		}
		if exists {
			continue
		}
		if _, err := enforcer.AddPolicy(p.role, p.resource, p.action); err != nil {
			return nil, fmt.Errorf("failed to add policy: %w", err)
		}
		log.Info("added default policy",
			zap.String("role", p.role),
			zap.String("resource", p.resource),
			zap.String("action", p.action))
		added++
	}

	if adapter != nil && added > 0 {
		if err := enforcer.SavePolicy(); err != nil {
			log.Warn("failed to save policies", zap.Error(err))
		}
	}
	return enforcer, nil
}

// AdminLookup finds moderation accounts by email.
type AdminLookup interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// AdminAuthMiddleware validates the admin JWT and loads the account.
func AdminAuthMiddleware(secret string, admins AdminLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := utils.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		claims, err := utils.ParseAdminToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "message": err.Error()})
			return
		}

		dbCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		admin, err := admins.FindByEmail(dbCtx, claims.Subject)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				logger.FromContext(c, zap.NewNop()).Error("admin lookup failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		// Role comes from the stored account, not the token claim.
		c.Set(ContextAdminEmail, admin.Email)
		c.Set(ContextAdminID, admin.ID)
		c.Set(ContextAdminRole, admin.Role)
		c.Next()
	}
}

// RBACMiddleware checks the admin's role against resource and action.
func RBACMiddleware(enforcer *casbin.Enforcer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextAdminRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin role not found"})
			return
		}

		log := logger.FromContext(c, zap.NewNop())
		allowed, err := enforcer.Enforce(role, resource, action)
		if err != nil {
			log.Error("casbin enforce error", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Permission check failed"})
			return
		}

		if !allowed {
			log.Info("permission denied",
				zap.String("role", role),
				zap.String("resource", resource),
				zap.String("action", action))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
