package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"prepdeck/internal/apiclient"
	"prepdeck/internal/form"
	"prepdeck/internal/middleware"
	"prepdeck/internal/render"
	"prepdeck/internal/session"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	base
}

// NewAuth creates a new Auth handler group.
func NewAuth(d Deps) *Auth {
	return &Auth{base: newBase(d)}
}

func signInForm() *form.Form {
	return form.New(
		form.Field{
			Name:     "email",
			Label:    "Email",
			Kind:     form.Email,
			Required: true,
			Validate: form.Rule("email", "Invalid email format"),
		},
		form.Field{
			Name:     "password",
			Label:    "Password",
			Kind:     form.Password,
			Required: true,
			Validate: form.Rule("min=6", "Password must be at least 6 characters long"),
		},
	)
}

func signUpForm() *form.Form {
	return form.New(
		form.Field{
			Name:     "firstName",
			Label:    "First name",
			Kind:     form.Text,
			Required: true,
			Validate: form.Rule("min=3", "First name must be at least 3 characters long"),
		},
		form.Field{
			Name:     "lastName",
			Label:    "Last name",
			Kind:     form.Text,
			Required: true,
			Validate: form.Rule("min=3", "Last name must be at least 3 characters long"),
		},
		form.Field{
			Name:     "phone",
			Label:    "Phone",
			Kind:     form.Tel,
			Required: true,
			Validate: form.Rule("min=10", "Phone must be at least 10 characters long"),
		},
		form.Field{
			Name:     "email",
			Label:    "Email",
			Kind:     form.Email,
			Required: true,
			Validate: form.Rule("email", "Invalid email format"),
		},
		form.Field{
			Name:     "password",
			Label:    "Password",
			Kind:     form.Password,
			Required: true,
			Validate: form.Rule("min=6", "Password must be at least 6 characters long"),
		},
	)
}

// SignInPage renders the login form.
func (a *Auth) SignInPage(w http.ResponseWriter, r *http.Request) {
	a.authPage(w, r, "signin", "Sign In", signInForm(), 0, "")
}

// SignInSubmit processes the login form.
func (a *Auth) SignInSubmit(w http.ResponseWriter, r *http.Request) {
	f := signInForm()
	f.Bind(formValues(r))

	var res *apiclient.AuthResult
	err := f.Submit(r.Context(), func(ctx context.Context, v form.Values) error {
		var err error
		res, err = a.client(r).SignIn(ctx, apiclient.Credentials{
			Email:    v.Get("email"),
			Password: v.Raw("password"),
		})
		return err
	})
	if err != nil {
		a.authFailed(w, r, "signin", "Sign In", f, err)
		return
	}
	a.signedIn(w, r, "signin", "Sign In", f, res)
}

// SignUpPage renders the registration form.
func (a *Auth) SignUpPage(w http.ResponseWriter, r *http.Request) {
	a.authPage(w, r, "signup", "Sign Up", signUpForm(), 0, "")
}

// SignUpSubmit registers an account and signs it in.
func (a *Auth) SignUpSubmit(w http.ResponseWriter, r *http.Request) {
	f := signUpForm()
	f.Bind(formValues(r))

	var res *apiclient.AuthResult
	err := f.Submit(r.Context(), func(ctx context.Context, v form.Values) error {
		var err error
		res, err = a.client(r).SignUp(ctx, apiclient.Registration{
			FirstName: v.Get("firstName"),
			LastName:  v.Get("lastName"),
			Phone:     v.Get("phone"),
			Email:     v.Get("email"),
			Password:  v.Raw("password"),
		})
		return err
	})
	if err != nil {
		a.authFailed(w, r, "signup", "Sign Up", f, err)
		return
	}
	a.signedIn(w, r, "signup", "Sign Up", f, res)
}

// signedIn stores the backend token in a new session and returns the user
// to the page that sent them to sign in.
func (a *Auth) signedIn(w http.ResponseWriter, r *http.Request, page, title string, f *form.Form, res *apiclient.AuthResult) {
	user := res.User
	if _, err := a.Sessions.Create(r.Context(), w, &session.Data{Token: res.Token, User: &user}); err != nil {
		slog.Error("session create failed", "error", err)
		a.authPage(w, r, page, title, f, http.StatusInternalServerError, "Could not start your session, please try again.")
		return
	}
	slog.Info("user signed in", "email", user.Email, "role", user.Role)
	middleware.Redirect(w, r, middleware.SafeRedirect(r.URL.Query().Get(middleware.PrevURLParam)))
}

func (a *Auth) authFailed(w http.ResponseWriter, r *http.Request, page, title string, f *form.Form, err error) {
	switch {
	case errors.Is(err, form.ErrInvalid):
		a.authPage(w, r, page, title, f, http.StatusUnprocessableEntity, "")
	case errors.Is(err, form.ErrBusy):
		w.WriteHeader(http.StatusNoContent)
	default:
		logFailure(r, page, err)
		a.authPage(w, r, page, title, f, statusFor(err), apiclient.UserMessage(err))
	}
}

func (a *Auth) authPage(w http.ResponseWriter, r *http.Request, page, title string, f *form.Form, status int, msg string) {
	data := map[string]any{
		"Form":    f,
		"PrevURL": r.URL.Query().Get(middleware.PrevURLParam),
	}
	if msg != "" {
		data["Error"] = msg
	}
	a.Renderer.Page(w, r, page, &render.PageData{Title: title, Status: status, Data: data})
}

// SignOut ends the backend session, then drops the local one.
func (a *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	if err := a.client(r).SignOut(ctx); err != nil {
		logFailure(r, "backend signout", err)
	}
	if err := a.State.Clear(ctx, middleware.SessionIDFromCtx(r.Context())); err != nil {
		slog.Warn("clear session state failed", "error", err)
	}
	if err := a.Sessions.Destroy(ctx, w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	middleware.Redirect(w, r, "/signin")
}
