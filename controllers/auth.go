package controllers

import (
	"context"
	"net/http"
	"time"

	"spectrumhub/logger"
	"spectrumhub/middlewares"
	"spectrumhub/services"
	"spectrumhub/structs"
	"spectrumhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const authTimeout = 10 * time.Second

// TokenRevoker forgets cached tokens on sign out.
type TokenRevoker interface {
	Delete(ctx context.Context, fingerprint string) error
}

type AuthController struct {
	identity services.IdentityProvider
	revoker  TokenRevoker
	log      *zap.Logger
}

// NewAuthController wires the site sign-in handlers. revoker may be nil.
func NewAuthController(identity services.IdentityProvider, revoker TokenRevoker, log *zap.Logger) *AuthController {
	return &AuthController{identity: identity, revoker: revoker, log: log}
}

func (a *AuthController) respondAuthError(c *gin.Context, action string, err error) {
	status, message := authErrorStatus(err)
	log := logger.FromContext(c, a.log)
	if status >= http.StatusInternalServerError {
		log.Error(action+" failed", zap.Error(err))
	} else {
		log.Info(action+" rejected", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": "Failed to " + action, "message": message})
}

func (a *AuthController) SignUp(c *gin.Context) {
	var request structs.SignUpRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	defer cancel()

	if err := a.identity.SignUp(ctx, request.Email, request.Password); err != nil {
		a.respondAuthError(c, "sign up", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sign-up successful"})
}

func (a *AuthController) VerifyEmail(c *gin.Context) {
	var request structs.VerifyEmailRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	defer cancel()

	if err := a.identity.ConfirmSignUp(ctx, request.Email, request.ConfirmationCode); err != nil {
		a.respondAuthError(c, "verify email", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verification successful"})
}

func (a *AuthController) Login(c *gin.Context) {
	var request structs.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "Check email and password format"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	defer cancel()

	session, err := a.identity.SignIn(ctx, request.Email, request.Password)
	if err != nil {
		a.respondAuthError(c, "sign in", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Sign-in successful",
		"accessToken":  session.AccessToken,
		"idToken":      session.IDToken,
		"refreshToken": session.RefreshToken,
		"expiresIn":    session.ExpiresIn,
	})
}

func (a *AuthController) Refresh(c *gin.Context) {
	var request structs.RefreshRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	defer cancel()

	session, err := a.identity.Refresh(ctx, request.Email, request.RefreshToken)
	if err != nil {
		a.respondAuthError(c, "refresh session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken":  session.AccessToken,
		"idToken":      session.IDToken,
		"refreshToken": session.RefreshToken,
		"expiresIn":    session.ExpiresIn,
	})
}

func (a *AuthController) ForgotPassword(c *gin.Context) {
	var request structs.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "message": "Check email format"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	defer cancel()

	if err := a.identity.ForgotPassword(ctx, request.Email); err != nil {
		a.respondAuthError(c, "initiate password reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset initiated. Check your email for further instructions."})
}

func (a *AuthController) ConfirmForgotPassword(c *gin.Context) {
	var request structs.VerifyForgotPasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindingError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	defer cancel()

	if err := a.identity.ConfirmForgotPassword(ctx, request.Email, request.Code, request.NewPassword); err != nil {
		a.respondAuthError(c, "confirm password reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password successfully changed"})
}

// SignOut revokes every session of the signed-in user.
func (a *AuthController) SignOut(c *gin.Context) {
	token := c.GetString(middlewares.ContextAccessToken)

	ctx, cancel := context.WithTimeout(c.Request.Context(), authTimeout)
	defer cancel()

	if err := a.identity.SignOut(ctx, token); err != nil {
		a.respondAuthError(c, "sign out", err)
		return
	}

	if a.revoker != nil {
		if err := a.revoker.Delete(ctx, utils.TokenFingerprint(token)); err != nil {
			logger.FromContext(c, a.log).Warn("failed to drop cached token", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Me returns the signed-in user with their avatar colour.
func (a *AuthController) Me(c *gin.Context) {
	identity, ok := middlewares.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":       identity.Email,
		"nickname":    identity.Nickname,
		"avatarColor": utils.AvatarColor(identity.Email),
	})
}
