package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/cavos-labs/forma-app/internal/api"
	"github.com/cavos-labs/forma-app/internal/i18n"
	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/metrics"
	"github.com/cavos-labs/forma-app/internal/session"
	"github.com/cavos-labs/forma-app/internal/upstream"

	"github.com/gin-gonic/gin"
)

// AuthClient is the slice of the upstream API the auth flow uses.
type AuthClient interface {
	SignIn(ctx context.Context, req upstream.SignInRequest) (*upstream.AuthResponse, error)
	SignUp(ctx context.Context, req upstream.SignUpRequest) (*upstream.AuthResponse, error)
	SignOut(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) (*upstream.BasicResponse, error)
	ResetPassword(ctx context.Context, req upstream.ResetPasswordRequest) (*upstream.BasicResponse, error)
}

// authHandler owns the browser's identity: it exchanges credentials with the
// upstream API and binds the result to a server-side session via the cookie.
type authHandler struct {
	client   AuthClient
	sessions *session.Manager

	// onSignOut drops per-session view state held by the feature handlers.
	onSignOut []func(sessionID string)
}

type signInForm struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// SignInResponse tells the client where to land: active gyms go to the
// dashboard, inactive ones to pricing.
type SignInResponse struct {
	Success  bool           `json:"success"`
	User     *upstream.User `json:"user,omitempty"`
	Gym      *upstream.Gym  `json:"gym,omitempty"`
	Redirect string         `json:"redirect"`
}

// SignIn godoc
// @Summary      Sign in
// @Description  Authenticates against the gym API and starts a session. With
// @Description  rememberMe the session persists across gateway restarts;
// @Description  without it the session lives only in process memory.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      signInForm  true  "Credentials"
// @Success      200          {object}  SignInResponse
// @Failure      400          {object}  api.ValidationErrorResponse
// @Failure      401          {object}  api.ErrorResponse
// @Router       /auth/signin [post]
func (h *authHandler) SignIn(c *gin.Context) {
	var form signInForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if fields := api.Validate(form); fields != nil {
		c.JSON(http.StatusBadRequest, api.ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	resp, err := h.client.SignIn(c.Request.Context(), upstream.SignInRequest{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		metrics.RecordSignIn("failure")
		var ue *upstream.Error
		if errors.As(err, &ue) && ue.StatusCode >= 400 && ue.StatusCode < 500 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ue.Message})
			return
		}
		logger.WithError(err).Error("sign-in request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": i18n.T(i18n.ES, "error.unexpected")})
		return
	}
	if !resp.Success || resp.User == nil || resp.Gym == nil {
		metrics.RecordSignIn("failure")
		msg := resp.Error
		if msg == "" {
			msg = "Invalid credentials"
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}

	s, token, err := h.sessions.Create(c.Request.Context(), *resp.User, *resp.Gym, form.RememberMe)
	if err != nil {
		logger.WithError(err).Error("session creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start session"})
		return
	}

	metrics.RecordSignIn("success")
	metrics.ActiveSessions.WithLabelValues(string(s.Scope())).Inc()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, session.CookieMaxAge(form.RememberMe), "/", "", false, true)

	redirect := "/pricing"
	if resp.Gym.IsActive {
		redirect = "/dashboard"
	}
	c.JSON(http.StatusOK, SignInResponse{
		Success:  true,
		User:     resp.User,
		Gym:      resp.Gym,
		Redirect: redirect,
	})
}

type signUpForm struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	GymName    string `json:"gymName" validate:"required"`
	GymAddress string `json:"gymAddress" validate:"required"`
	GymPhone   string `json:"gymPhone"`
	GymEmail   string `json:"gymEmail" validate:"omitempty,email"`
	MonthlyFee string `json:"monthlyFee" validate:"required"`
	SinpePhone string `json:"sinpePhone" validate:"required"`
}

// SignUp godoc
// @Summary      Sign up
// @Description  Registers a new gym and its owner. The account starts
// @Description  inactive until checkout completes.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registration  body      signUpForm  true  "Registration"
// @Success      201           {object}  upstream.AuthResponse
// @Failure      400           {object}  api.ValidationErrorResponse
// @Failure      502           {object}  api.ErrorResponse
// @Router       /auth/signup [post]
func (h *authHandler) SignUp(c *gin.Context) {
	var form signUpForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if fields := api.Validate(form); fields != nil {
		c.JSON(http.StatusBadRequest, api.ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	resp, err := h.client.SignUp(c.Request.Context(), upstream.SignUpRequest{
		Email:      form.Email,
		Password:   form.Password,
		FirstName:  form.FirstName,
		LastName:   form.LastName,
		GymName:    form.GymName,
		GymAddress: form.GymAddress,
		GymPhone:   form.GymPhone,
		GymEmail:   form.GymEmail,
		MonthlyFee: form.MonthlyFee,
		SinpePhone: form.SinpePhone,
	})
	if err != nil {
		var ue *upstream.Error
		if errors.As(err, &ue) && ue.StatusCode >= 400 && ue.StatusCode < 500 {
			c.JSON(ue.StatusCode, gin.H{"error": ue.Message})
			return
		}
		logger.WithError(err).Error("sign-up request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": i18n.T(i18n.ES, "error.unexpected")})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SignOut godoc
// @Summary      Sign out
// @Description  Ends the session and expires the cookie. The cookie is
// @Description  cleared even when the upstream call fails.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  api.MessageResponse
// @Router       /auth/signout [post]
func (h *authHandler) SignOut(c *gin.Context) {
	if token, err := c.Cookie(session.CookieName); err == nil && token != "" {
		if s, err := h.sessions.Resolve(c.Request.Context(), token); err == nil {
			if err := h.client.SignOut(c.Request.Context()); err != nil {
				logger.WithError(err).Error("upstream sign-out failed")
			}
			if err := h.sessions.Delete(c.Request.Context(), s); err != nil {
				logger.WithError(err).Error("session deletion failed")
			}
			metrics.ActiveSessions.WithLabelValues(string(s.Scope())).Dec()
			for _, forget := range h.onSignOut {
				forget(s.ID)
			}
		}
	}

	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Signed out"})
}

type forgotPasswordForm struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword godoc
// @Summary      Request password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        email  body      forgotPasswordForm  true  "Account email"
// @Success      200    {object}  upstream.BasicResponse
// @Failure      400    {object}  api.ValidationErrorResponse
// @Failure      502    {object}  api.ErrorResponse
// @Router       /auth/forgot-password [post]
func (h *authHandler) ForgotPassword(c *gin.Context) {
	var form forgotPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if fields := api.Validate(form); fields != nil {
		c.JSON(http.StatusBadRequest, api.ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	resp, err := h.client.ForgotPassword(c.Request.Context(), form.Email)
	if err != nil {
		logger.WithError(err).Error("forgot-password request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": i18n.T(i18n.ES, "error.unexpected")})
		return
	}
	c.JSON(http.StatusOK, resp)
}

type resetPasswordForm struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
	Password     string `json:"password" validate:"required,min=8"`
}

// ResetPassword godoc
// @Summary      Reset password
// @Description  Completes a password reset. The recovery tokens from the
// @Description  reset link are forwarded opaquely.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        reset  body      resetPasswordForm  true  "Recovery tokens and new password"
// @Success      200    {object}  upstream.BasicResponse
// @Failure      400    {object}  api.ValidationErrorResponse
// @Failure      502    {object}  api.ErrorResponse
// @Router       /auth/reset-password [post]
func (h *authHandler) ResetPassword(c *gin.Context) {
	var form resetPasswordForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if fields := api.Validate(form); fields != nil {
		c.JSON(http.StatusBadRequest, api.ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	resp, err := h.client.ResetPassword(c.Request.Context(), upstream.ResetPasswordRequest{
		AccessToken:  form.AccessToken,
		RefreshToken: form.RefreshToken,
		Password:     form.Password,
	})
	if err != nil {
		var ue *upstream.Error
		if errors.As(err, &ue) && ue.StatusCode >= 400 && ue.StatusCode < 500 {
			c.JSON(ue.StatusCode, gin.H{"error": ue.Message})
			return
		}
		logger.WithError(err).Error("reset-password request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": i18n.T(i18n.ES, "error.unexpected")})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MeResponse is the signed-in operator plus their stored preferences.
type MeResponse struct {
	User  upstream.User `json:"user"`
	Gym   upstream.Gym  `json:"gym"`
	Prefs session.Prefs `json:"prefs"`
}

// Me godoc
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  MeResponse
// @Failure      401  {object}  api.ErrorResponse
// @Router       /app/me [get]
func (h *authHandler) Me(c *gin.Context) {
	s, _ := session.FromContext(c)
	c.JSON(http.StatusOK, MeResponse{
		User:  s.User,
		Gym:   s.Gym,
		Prefs: session.PrefsFromContext(c),
	})
}

type prefsForm struct {
	Language string `json:"language" validate:"required,oneof=es en"`
	Theme    string `json:"theme" validate:"required,oneof=dark light"`
}

// UpdatePrefs godoc
// @Summary      Update preferences
// @Description  Stores the operator's language and theme. Preferences
// @Description  outlive sign-out.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        prefs  body      prefsForm  true  "Preferences"
// @Success      200    {object}  session.Prefs
// @Failure      400    {object}  api.ValidationErrorResponse
// @Router       /app/prefs [put]
func (h *authHandler) UpdatePrefs(c *gin.Context) {
	s, _ := session.FromContext(c)

	var form prefsForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if fields := api.Validate(form); fields != nil {
		c.JSON(http.StatusBadRequest, api.ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: fields,
		})
		return
	}

	p := session.Prefs{Language: form.Language, Theme: form.Theme}
	if err := h.sessions.SavePrefs(c.Request.Context(), s, p); err != nil {
		logger.WithError(err).Error("saving preferences failed", "session_id", s.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save preferences"})
		return
	}
	c.JSON(http.StatusOK, p)
}
