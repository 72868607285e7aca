package services

import (
	"context"
	"errors"
	"fmt"

	"spectrumhub/models"
	"spectrumhub/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// ErrChallengeRequired is returned when sign-in needs an extra step (MFA,
// new password) that this API does not drive.
var ErrChallengeRequired = errors.New("additional sign-in challenge required")

// IdentityProvider is the hosted user directory behind site sign-in.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) error
	ConfirmSignUp(ctx context.Context, email, code string) error
	SignIn(ctx context.Context, email, password string) (*models.AuthSession, error)
	Refresh(ctx context.Context, email, refreshToken string) (*models.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error
	GetUser(ctx context.Context, accessToken string) (*models.Identity, error)
}

// cognitoAPI is the subset of the Cognito client used here.
type cognitoAPI interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
	ForgotPassword(ctx context.Context, params *cognitoidentityprovider.ForgotPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, params *cognitoidentityprovider.ConfirmForgotPasswordInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmForgotPasswordOutput, error)
	GetUser(ctx context.Context, params *cognitoidentityprovider.GetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GetUserOutput, error)
}

// CognitoIdentity talks to a Cognito user pool app client with a secret.
type CognitoIdentity struct {
	client       cognitoAPI
	clientID     string
	clientSecret string
}

// NewCognitoIdentity loads AWS credentials once and builds the client.
func NewCognitoIdentity(ctx context.Context, region, clientID, clientSecret string) (*CognitoIdentity, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &CognitoIdentity{
		client:       cognitoidentityprovider.NewFromConfig(cfg),
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

func (c *CognitoIdentity) secretHash(username string) string {
	return utils.GenerateSecretHash(username, c.clientID, c.clientSecret)
}

func (c *CognitoIdentity) SignUp(ctx context.Context, email, password string) error {
	_, err := c.client.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId:   aws.String(c.clientID),
		Password:   aws.String(password),
		SecretHash: aws.String(c.secretHash(email)),
		Username:   aws.String(email),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("nickname"), Value: aws.String(utils.ExtractNameFromEmail(email))},
		},
	})
	if err != nil {
		return fmt.Errorf("sign-up failed: %w", err)
	}
	return nil
}

func (c *CognitoIdentity) ConfirmSignUp(ctx context.Context, email, code string) error {
	_, err := c.client.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		ConfirmationCode: aws.String(code),
		Username:         aws.String(email),
		SecretHash:       aws.String(c.secretHash(email)),
	})
	if err != nil {
		return fmt.Errorf("email verification failed: %w", err)
	}
	return nil
}

func (c *CognitoIdentity) SignIn(ctx context.Context, email, password string) (*models.AuthSession, error) {
	out, err := c.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME":    email,
			"PASSWORD":    password,
			"SECRET_HASH": c.secretHash(email),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return sessionFromAuth(out)
}

// Refresh exchanges a refresh token for new access and id tokens.
// Cognito does not rotate the refresh token, so it is carried over.
func (c *CognitoIdentity) Refresh(ctx context.Context, email, refreshToken string) (*models.AuthSession, error) {
	out, err := c.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
			"SECRET_HASH":   c.secretHash(email),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}

	session, err := sessionFromAuth(out)
	if err != nil {
		return nil, err
	}
	if session.RefreshToken == "" {
		session.RefreshToken = refreshToken
	}
	return session, nil
}

func sessionFromAuth(out *cognitoidentityprovider.InitiateAuthOutput) (*models.AuthSession, error) {
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("%w: %s", ErrChallengeRequired, out.ChallengeName)
	}
	result := out.AuthenticationResult
	return &models.AuthSession{
		AccessToken:  aws.ToString(result.AccessToken),
		IDToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		ExpiresIn:    result.ExpiresIn,
		TokenType:    aws.ToString(result.TokenType),
	}, nil
}

// SignOut invalidates every token issued to the user.
func (c *CognitoIdentity) SignOut(ctx context.Context, accessToken string) error {
	_, err := c.client.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}
	return nil
}

func (c *CognitoIdentity) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.client.ForgotPassword(ctx, &cognitoidentityprovider.ForgotPasswordInput{
		ClientId:   aws.String(c.clientID),
		Username:   aws.String(email),
		SecretHash: aws.String(c.secretHash(email)),
	})
	if err != nil {
		return fmt.Errorf("error initiating forgot password: %w", err)
	}
	return nil
}

func (c *CognitoIdentity) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := c.client.ConfirmForgotPassword(ctx, &cognitoidentityprovider.ConfirmForgotPasswordInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
		SecretHash:       aws.String(c.secretHash(email)),
	})
	if err != nil {
		return fmt.Errorf("error confirming forgot password: %w", err)
	}
	return nil
}

// GetUser resolves an access token to the signed-in user.
func (c *CognitoIdentity) GetUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	out, err := c.client.GetUser(ctx, &cognitoidentityprovider.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	identity := &models.Identity{Username: aws.ToString(out.Username)}
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "email":
			identity.Email = aws.ToString(attr.Value)
		case "nickname":
			identity.Nickname = aws.ToString(attr.Value)
		}
	}
	if identity.Nickname == "" && identity.Email != "" {
		identity.Nickname = utils.ExtractNameFromEmail(identity.Email)
	}
	return identity, nil
}
