package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"spectrumhub/logger"
	"spectrumhub/models"
	"spectrumhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the auth middlewares.
const (
	ContextUserEmail   = "userEmail"
	ContextIdentity    = "identity"
	ContextAccessToken = "accessToken"
)

// IdentityResolver turns an access token into the signed-in user.
type IdentityResolver interface {
	GetUser(ctx context.Context, accessToken string) (*models.Identity, error)
}

// TokenCache short-circuits the resolver for recently seen tokens.
type TokenCache interface {
	Get(ctx context.Context, fingerprint string) (*models.Identity, error)
	Set(ctx context.Context, fingerprint string, identity *models.Identity, ttl time.Duration) error
}

// UserAuth validates bearer tokens against the hosted user directory.
type UserAuth struct {
	resolver IdentityResolver
	cache    TokenCache
	ttl      time.Duration
	log      *zap.Logger
}

// NewUserAuth builds the user gate. cache may be nil.
func NewUserAuth(resolver IdentityResolver, cache TokenCache, ttl time.Duration, log *zap.Logger) *UserAuth {
	return &UserAuth{resolver: resolver, cache: cache, ttl: ttl, log: log}
}

// Required rejects requests without a valid user token.
func (a *UserAuth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := utils.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, utils.ErrMalformedBearer) {
				status = http.StatusBadRequest
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		identity, err := a.resolve(c, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		setIdentity(c, token, identity)
		c.Next()
	}
}

// Optional attaches the user when a valid token is sent and never rejects.
func (a *UserAuth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := utils.BearerToken(c.GetHeader("Authorization"))
		if err == nil {
			if identity, err := a.resolve(c, token); err == nil {
				setIdentity(c, token, identity)
			}
		}
		c.Next()
	}
}

func (a *UserAuth) resolve(c *gin.Context, token string) (*models.Identity, error) {
	ctx := c.Request.Context()
	log := logger.FromContext(c, a.log)
	fingerprint := utils.TokenFingerprint(token)

	if a.cache != nil {
		identity, err := a.cache.Get(ctx, fingerprint)
		if err != nil {
			log.Warn("token cache read failed", zap.Error(err))
		} else if identity != nil {
			return identity, nil
		}
	}

	identity, err := a.resolver.GetUser(ctx, token)
	if err != nil {
		log.Info("token rejected", zap.Error(err))
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, fingerprint, identity, a.ttl); err != nil {
			log.Warn("token cache write failed", zap.Error(err))
		}
	}
	return identity, nil
}

func setIdentity(c *gin.Context, token string, identity *models.Identity) {
	c.Set(ContextIdentity, identity)
	c.Set(ContextUserEmail, identity.Email)
	c.Set(ContextAccessToken, token)
}

// CurrentIdentity returns the user attached by Required or Optional.
func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok
}
