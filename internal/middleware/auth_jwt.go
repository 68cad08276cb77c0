package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"storefront/internal/config"
	"storefront/internal/domain/model"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

var errBadClaims = errors.New("bad claims")

// アクセストークンから取り出したログイン者
type Principal struct {
	UserID       int64
	Role         model.Role
	TokenVersion int
}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

// API用のbearer JWT検証。失敗は全部401 "unauthorized"
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request())
			if !ok {
				return unauthorizedJSON(c)
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				return unauthorizedJSON(c)
			}

			p, err := principalFromClaims(claims)
			if err != nil {
				return unauthorizedJSON(c)
			}

			setPrincipal(c, p)
			return next(c)
		}
	}
}

// Authorizationが無ければ匿名で通す。あれば AuthJWT と同じ検証
func OptionalAuthJWT(cfg config.Config) echo.MiddlewareFunc {
	strict := AuthJWT(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withAuth := strict(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			return withAuth(c)
		}
	}
}

// AuthJWTの後でだけ使える
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	id, ok := c.Get(CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return Principal{}, false
	}
	role, _ := c.Get(CtxUserRoleKey).(string)
	tv, ok := c.Get(CtxTokenVersionKey).(int)
	if !ok {
		return Principal{}, false
	}
	return Principal{UserID: id, Role: model.Role(role), TokenVersion: tv}, true
}

func setPrincipal(c echo.Context, p Principal) {
	c.Set(CtxUserIDKey, p.UserID)
	c.Set(CtxUserRoleKey, string(p.Role))
	c.Set(CtxTokenVersionKey, p.TokenVersion)
}

// "Bearer xxx" のxxx
func bearerToken(r *http.Request) (string, bool) {
	scheme, tok, found := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// sub(文字列 or 数値) / role / tv
func principalFromClaims(claims jwt.MapClaims) (Principal, error) {
	id, err := claimInt64(claims["sub"])
	if err != nil || id <= 0 {
		return Principal{}, errBadClaims
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return Principal{}, errBadClaims
	}
	tv, err := claimInt64(claims["tv"])
	if err != nil || tv < 0 {
		return Principal{}, errBadClaims
	}
	return Principal{UserID: id, Role: model.Role(role), TokenVersion: int(tv)}, nil
}

func claimInt64(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	}
	return 0, errBadClaims
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func unauthorizedJSON(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
}
