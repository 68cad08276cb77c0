package handler

import (
	"errors"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
)

const RefreshCookieName = "refresh_token"

type AuthHandler struct {
	registerUC   *auth.RegisterUserUsecase // 会員登録usecase
	loginUC      *auth.LoginUsecase        // ログインusecase
	refreshUC    *auth.RefreshUsecase
	logoutUC     *auth.LogoutUsecase
	validator    validator.AuthValidator
	refreshTTL   time.Duration // refresh/csrf cookie の有効期限
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(
	cfg config.Config,
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	refreshUC *auth.RefreshUsecase,
	logoutUC *auth.LogoutUsecase,
	v validator.AuthValidator,
	refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		refreshUC:    refreshUC,
		logoutUC:     logoutUC,
		validator:    v,
		refreshTTL:   refreshTTL,
		cookieSecure: cfg.CookieSecure,
	}
}

// /register のリクエストボディ。
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/login のリクエストボディ。usernameにメールも可
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type csrfTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

// authMWはlogoutに付けるJWT + token_version
func (h *AuthHandler) RegisterRoutes(g *echo.Group, authMW ...echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/auth/login", h.Login)
	g.POST("/auth/refresh", h.Refresh, middleware.CSRFDoubleSubmit())
	logoutMW := append([]echo.MiddlewareFunc{}, authMW...)
	g.POST("/auth/logout", h.Logout, append(logoutMW, middleware.CSRFDoubleSubmit())...)
	g.GET("/csrf-token", h.CSRFToken)
}

// POST /register
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.validator.ValidateRegister(req.Username, req.Email, req.Password); err != nil {
		return writeError(c, err)
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// POST /auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}
	if err := h.validator.ValidateLogin(login, req.Password); err != nil {
		return writeError(c, err)
	}

	// User-Agentを取得（refreshtokenに紐付ける）
	out, side, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Login:     login,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	h.setRefreshCookie(c, side.PlainRefreshToken)
	if _, err := h.issueCSRF(c); err != nil {
		return writeError(c, err)
	}

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, out)
}

// POST /auth/refresh（Double Submit済み）
func (h *AuthHandler) Refresh(c echo.Context) error {
	ck, err := c.Cookie(RefreshCookieName)
	if err != nil || h.validator.ValidateRefresh(ck.Value) != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid refresh token"})
	}

	out, err := h.refreshUC.Execute(c.Request().Context(), auth.RefreshInput{
		PlainRefreshToken: ck.Value,
		UserAgent:         c.Request().UserAgent(),
	})
	if err != nil {
		//失効させたのでCookieも消す
		h.clearRefreshCookie(c)
		return writeAuthError(c, err)
	}

	h.setRefreshCookie(c, out.PlainRefreshToken)
	return c.JSON(http.StatusOK, out.Token)
}

// POST /auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	plain := ""
	if ck, err := c.Cookie(RefreshCookieName); err == nil {
		plain = ck.Value
	}

	if err := h.logoutUC.Execute(c.Request().Context(), userID, plain); err != nil {
		return writeError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

// GET /csrf-token
func (h *AuthHandler) CSRFToken(c echo.Context) error {
	token, err := h.issueCSRF(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, csrfTokenResponse{CSRFToken: token})
}

// auth usecaseのエラーをHTTPに
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidUsername):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error", Fields: map[string]string{"username": err.Error()}})
	case errors.Is(err, auth.ErrInvalidEmailFormat):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error", Fields: map[string]string{"email": err.Error()}})
	case errors.Is(err, auth.ErrPasswordTooShort):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error", Fields: map[string]string{"password": err.Error()}})
	case errors.Is(err, auth.ErrUsernameAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "username already exists"})
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "email already exists"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, auth.ErrUserInactive):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "user is inactive"})
	case errors.Is(err, auth.ErrInvalidRefresh):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid refresh token"})
	case errors.Is(err, auth.ErrSecurityIncident):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "security incident"})
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
	}
	return writeError(c, err)
}

// refreshtoken をCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    plainRefresh,
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.refreshTTL),
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// csrftokenをCookieにセット（JSから読むのでHttpOnlyなし）
func (h *AuthHandler) issueCSRF(c echo.Context) (string, error) {
	token, err := auth.GenerateSecureToken(32)
	if err != nil {
		return "", err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.refreshTTL),
	})
	return token, nil
}
