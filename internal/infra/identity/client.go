package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
)

// Client talks to a GoTrue-compatible auth API (/auth/v1/...).
//
// When a JWT secret is configured, access tokens are verified locally and
// CurrentUser does not call the provider.
type Client struct {
	baseURL   string
	anonKey   string
	jwtSecret []byte
	http      *http.Client
}

func NewClient(baseURL, anonKey, jwtSecret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    httpClient,
	}
	if jwtSecret != "" {
		c.jwtSecret = []byte(jwtSecret)
	}
	return c
}

var _ app.IdentityProvider = (*Client)(nil)

type userDTO struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u userDTO) identity() domain.Identity {
	return domain.Identity{ID: u.ID, Email: u.Email, Metadata: u.UserMetadata}
}

type tokenDTO struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         *userDTO `json:"user"`
}

type errorDTO struct {
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ProviderError is a non-2xx answer from the auth API.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// StatusCode is the HTTP status the auth API answered with.
func (e *ProviderError) StatusCode() int {
	return e.Status
}

func (c *Client) CurrentUser(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrNoIdentity
	}
	if c.jwtSecret != nil {
		return c.verify(token)
	}

	var user userDTO
	err := c.do(ctx, http.MethodGet, "/auth/v1/user", token, nil, &user)
	var perr *ProviderError
	if errors.As(err, &perr) && (perr.Status == http.StatusUnauthorized || perr.Status == http.StatusForbidden) {
		return domain.Identity{}, domain.ErrNoIdentity
	}
	if err != nil {
		return domain.Identity{}, err
	}
	if user.ID == "" {
		return domain.Identity{}, domain.ErrNoIdentity
	}
	return user.identity(), nil
}

type supabaseClaims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

func (c *Client) verify(token string) (domain.Identity, error) {
	claims := &supabaseClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return domain.Identity{}, domain.ErrNoIdentity
	}
	return domain.Identity{ID: claims.Subject, Email: claims.Email, Metadata: claims.UserMetadata}, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, name, redirectTo string) (domain.Identity, error) {
	path := "/auth/v1/signup"
	if redirectTo != "" {
		path += "?" + url.Values{"redirect_to": {redirectTo}}.Encode()
	}
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]any{"name": name},
	}

	// Depending on email confirmation settings the API answers with either
	// a bare user or a session wrapping one.
	var out struct {
		userDTO
		User *userDTO `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, path, "", body, &out); err != nil {
		return domain.Identity{}, err
	}
	if out.User != nil {
		return out.User.identity(), nil
	}
	return out.userDTO.identity(), nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (app.AuthSession, error) {
	var tok tokenDTO
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &tok); err != nil {
		return app.AuthSession{}, err
	}
	if tok.AccessToken == "" || tok.User == nil {
		return app.AuthSession{}, fmt.Errorf("sign in: empty session in response")
	}
	return app.AuthSession{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		User:         tok.User.identity(),
	}, nil
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", token, nil, nil)
}

func (c *Client) OAuthURL(provider, redirectTo string) string {
	q := url.Values{"provider": {provider}}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else if c.anonKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProviderError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(status int, raw []byte) string {
	var e errorDTO
	if err := json.Unmarshal(raw, &e); err == nil {
		switch {
		case e.Message != "":
			return e.Message
		case e.ErrorDescription != "":
			return e.ErrorDescription
		case e.Error != "":
			return e.Error
		}
	}
	return fmt.Sprintf("auth request failed with status %d", status)
}
