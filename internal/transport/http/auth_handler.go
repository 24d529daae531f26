package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"web3-quiz-service/internal/app"
)

type AuthHandler struct {
	auth *app.AuthService
}

func NewAuthHandler(auth *app.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req app.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFail(w, r, http.StatusBadRequest, ErrInvalidPayload, "invalid request body", nil)
		return
	}
	res, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setUserCookie(w, res.UserID)
	writeJSON(w, r, http.StatusCreated, res)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req app.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFail(w, r, http.StatusBadRequest, ErrInvalidPayload, "invalid request body", nil)
		return
	}
	sess, err := h.auth.SignIn(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    sess.AccessToken,
		Path:     "/",
		MaxAge:   sess.ExpiresIn,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	setUserCookie(w, sess.User.ID)
	writeJSON(w, r, http.StatusOK, sess)
}

// Logout always clears the local cookies, whatever the provider says.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.SignOut(r.Context(), AccessToken(r))
	for _, name := range []string{AccessTokenCookie, UserIDCookie} {
		http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"signedOut": true})
}

// OAuth sends the browser to the provider's authorize page.
func (h *AuthHandler) OAuth(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	if provider == "" {
		provider = "google"
	}
	http.Redirect(w, r, h.auth.OAuthURL(provider), http.StatusFound)
}

// Me returns the current identity, or null when nobody is signed in.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := h.auth.Current(r.Context(), AccessToken(r))
	if err != nil {
		if app.IsNoIdentity(err) {
			writeJSON(w, r, http.StatusOK, nil)
			return
		}
		writeError(w, r, err)
		return
	}
	setUserCookie(w, id.ID)
	writeJSON(w, r, http.StatusOK, id)
}

func setUserCookie(w http.ResponseWriter, userID string) {
	if userID == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{Name: UserIDCookie, Value: userID, Path: "/", SameSite: http.SameSiteLaxMode})
}
