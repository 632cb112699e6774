package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"socialhub/internal/auth"
	"socialhub/internal/models"
)

type FormSpec struct {
	Fields []string `json:"fields"`
	Next   string   `json:"next,omitempty"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
	Next      string       `json:"next"`
}

var (
	signupFields = []string{"username", "email", "first_name", "last_name", "password1", "password2"}
	loginFields  = []string{"username", "password"}
)

func (h *Handlers) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, FormSpec{Fields: signupFields})
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	formSpec := FormSpec{Fields: signupFields}

	var req models.SignupRequest
	err := h.decodeForm(w, r, &req, func(form url.Values) {
		req = models.SignupRequest{
			Username:  form.Get("username"),
			Email:     form.Get("email"),
			FirstName: form.Get("first_name"),
			LastName:  form.Get("last_name"),
			Password1: form.Get("password1"),
			Password2: form.Get("password2"),
		}
	})
	if err == nil {
		err = h.validate(req)
	}
	if err != nil {
		h.formError(w, r, formSpec, err)
		return
	}

	user, err := h.AuthService.Signup(r.Context(), req)
	if err != nil {
		h.formError(w, r, formSpec, err)
		return
	}

	if WantsJSON(r) {
		writeJSON(w, user, http.StatusCreated)
		return
	}
	h.setFlash(w, "success", "Account created successfully!")
	redirect(w, r, "/login/")
}

func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, FormSpec{Fields: loginFields, Next: safeNext(r.URL.Query().Get("next"), "")})
}

// Login authenticates the user and starts a session. Unknown users and
// wrong passwords get the same answer.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	err := h.decodeForm(w, r, &req, func(form url.Values) {
		req = models.LoginRequest{
			Username: form.Get("username"),
			Password: form.Get("password"),
			Next:     form.Get("next"),
		}
	})
	if err == nil {
		err = h.validate(req)
	}
	if req.Next == "" {
		req.Next = r.URL.Query().Get("next")
	}
	next := safeNext(req.Next, "/")

	if err != nil {
		h.formError(w, r, FormSpec{Fields: loginFields, Next: next}, err)
		return
	}

	user, session, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrAuthentication) && !WantsJSON(r) {
			h.renderPage(w, r, http.StatusUnauthorized, FormSpec{Fields: loginFields, Next: next},
				Flash{Level: "error", Message: "Invalid credentials."})
			return
		}
		h.handleError(w, r, err)
		return
	}

	h.setSessionCookie(w, session)
	h.Logger.Info("user logged in", zap.String("user_id", user.UserID))

	if WantsJSON(r) {
		writeJSON(w, LoginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt, User: user, Next: next}, http.StatusOK)
		return
	}
	redirect(w, r, next)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	if err := h.AuthService.Logout(r.Context(), identity); err != nil {
		h.Logger.Warn("failed to revoke session", zap.Error(err))
	}

	h.clearSessionCookie(w)

	if WantsJSON(r) {
		writeJSON(w, Flash{Level: "info", Message: "You have logged out."}, http.StatusOK)
		return
	}
	h.setFlash(w, "info", "You have logged out.")
	redirect(w, r, "/login/")
}
