package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qaforum/apiserver/internal/services"
	"github.com/qaforum/apiserver/internal/store"
	"github.com/qaforum/apiserver/types"
)

// AuthHandler provides login, logout and registration endpoints.
type AuthHandler struct {
	userService *services.UserService
	sessions    *Sessions
	render      *Renderer
	logger      *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, sessions *Sessions, render *Renderer, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
		render:      render,
		logger:      logger,
	}
}

// AuthRouter registers author routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Get("/login/", handler.LoginForm)
	// Only POST is served; any other method is reported as a missing page.
	r.HandleFunc("/login/create/", handler.Login)
	r.Get("/register/", handler.RegisterForm)
	r.Post("/register/", handler.Register)
	r.Get("/logout/", handler.Logout)
	r.Post("/logout/", handler.Logout)
	r.Get("/me/", handler.Me)
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Envelope
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Envelope
	User types.User `json:"user"`
}

// FormResponse wraps a form descriptor.
type FormResponse struct {
	Envelope
	Form FormDescriptor `json:"form"`
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FormResponse{
		Form: FormDescriptor{
			Action: pathLoginCreate,
			Method: http.MethodPost,
			Fields: []string{"username", "password"},
		},
	})
}

// Login verifies credentials and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	form, err := readForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Authenticate(r.Context(), form.Get("username"), form.Get("password"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidLoginForm):
			h.loginFailed(w, r, http.StatusBadRequest, types.MsgLoginInvalidForm)
		case errors.Is(err, services.ErrInvalidCredentials):
			h.loginFailed(w, r, http.StatusUnauthorized, types.MsgLoginInvalid)
		default:
			h.logger.Error("authenticate", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
		}
		return
	}

	token, expires, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.Error("issue session token", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}
	h.sessions.SetCookie(w, token, expires)

	writeRedirect(w, http.StatusOK, pathQuestionList, LoginResponse{
		Envelope: Envelope{Redirect: pathQuestionList},
		Token:    token,
		User:     user,
	})
}

func (h *AuthHandler) loginFailed(w http.ResponseWriter, r *http.Request, status int, key string) {
	writeRedirect(w, status, pathLogin, Envelope{
		Notices:  []NoticeResponse{h.render.Notice(r, types.NoticeError, key)},
		Redirect: pathLogin,
	})
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FormResponse{
		Form: FormDescriptor{
			Action: pathRegister,
			Method: http.MethodPost,
			Fields: []string{"username", "first_name", "last_name", "email", "password", "password2"},
		},
	})
}

// Register creates a user account. It does not log the user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegistrationForm{
		Username:  form.Get("username"),
		FirstName: form.Get("first_name"),
		LastName:  form.Get("last_name"),
		Email:     form.Get("email"),
		Password:  form.Get("password"),
		Password2: form.Get("password2"),
	})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, Envelope{FieldErrors: h.render.FieldErrors(r, verr)})
			return
		}
		h.logger.Error("register user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	writeRedirect(w, http.StatusCreated, pathQuestionList, RegisterResponse{
		Envelope: Envelope{
			Notices:  []NoticeResponse{h.render.Notice(r, types.NoticeSuccess, types.MsgRegistered)},
			Redirect: pathQuestionList,
		},
		User: user,
	})
}

// Logout ends the session held in the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	writeRedirect(w, http.StatusOK, pathQuestionList, Envelope{
		Notices:  []NoticeResponse{h.render.Notice(r, types.NoticeInfo, types.MsgLoggedOut)},
		Redirect: pathQuestionList,
	})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	viewer := ViewerFromContext(r.Context())
	if !viewer.Authenticated() {
		writeLoginRequired(w, r, h.render)
		return
	}

	user, err := h.userService.GetByID(r.Context(), viewer.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeLoginRequired(w, r, h.render)
			return
		}
		h.logger.Error("load user", "user_id", viewer.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// writeLoginRequired answers 401 and points the client at the login page.
func writeLoginRequired(w http.ResponseWriter, r *http.Request, render *Renderer) {
	writeJSON(w, http.StatusUnauthorized, Envelope{
		Notices:  []NoticeResponse{render.Notice(r, types.NoticeError, types.MsgLoginRequired)},
		Redirect: pathLogin,
	})
}
