package app

import (
	"context"

	"github.com/rs/zerolog"

	"web3-quiz-service/internal/domain"
	"web3-quiz-service/internal/validation"
)

// SignupSuccessMessage is returned once the provider accepted a sign-up.
const SignupSuccessMessage = "Signup successful. Please check your email and follow the verification link. After verifying, return here or you'll be redirected automatically."

// SignUpRequest is the sign-up form.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Confirm  string `json:"confirm" validate:"eqfield=Password"`
}

// SignInRequest is the email/password login form.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpResult tells the client which id to remember locally.
type SignUpResult struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// AuthService wraps the identity provider flows and keeps the identity cache
// and the profile collection in step with them.
type AuthService struct {
	provider   IdentityProvider
	cache      *IdentityCache
	profiles   ProfileRepository
	redirectTo string
	log        zerolog.Logger
}

func NewAuthService(provider IdentityProvider, cache *IdentityCache, profiles ProfileRepository, redirectTo string, log zerolog.Logger) *AuthService {
	return &AuthService{
		provider:   provider,
		cache:      cache,
		profiles:   profiles,
		redirectTo: redirectTo,
		log:        log,
	}
}

// SignUp registers the user with the provider, then records a profile row.
// A failed profile insert is logged but does not fail the sign-up.
func (a *AuthService) SignUp(ctx context.Context, req SignUpRequest) (SignUpResult, error) {
	if err := validation.Struct(req); err != nil {
		return SignUpResult{}, err
	}

	id, err := a.provider.SignUp(ctx, req.Email, req.Password, req.Name, a.redirectTo)
	if err != nil {
		return SignUpResult{}, err
	}

	// Without a provider id the email doubles as the user id.
	userID := id.ID
	if userID == "" {
		userID = req.Email
	}
	if err := a.profiles.CreateUser(ctx, domain.UserProfile{UserID: userID, Name: req.Name, Email: req.Email}); err != nil {
		a.log.Error().Err(err).Str("user", userID).Msg("insert user data")
	}
	return SignUpResult{UserID: userID, Message: SignupSuccessMessage}, nil
}

// SignIn authenticates with email and password and caches the identity.
func (a *AuthService) SignIn(ctx context.Context, req SignInRequest) (AuthSession, error) {
	if err := validation.Struct(req); err != nil {
		return AuthSession{}, err
	}
	sess, err := a.provider.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return AuthSession{}, err
	}
	a.cache.Remember(ctx, sess.AccessToken, sess.User)
	return sess, nil
}

// SignOut ends the provider session. Local identity is cleared even when the
// provider call fails.
func (a *AuthService) SignOut(ctx context.Context, token string) {
	if token != "" {
		if err := a.provider.SignOut(ctx, token); err != nil {
			a.log.Error().Err(err).Msg("sign out")
		}
	}
	a.cache.Invalidate(ctx, token)
}

// OAuthURL is where the browser goes to start an OAuth sign-in.
func (a *AuthService) OAuthURL(provider string) string {
	return a.provider.OAuthURL(provider, a.redirectTo)
}

// Current resolves the identity behind token.
func (a *AuthService) Current(ctx context.Context, token string) (domain.Identity, error) {
	return a.cache.Current(ctx, token)
}
