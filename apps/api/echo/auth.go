package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/account"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
)

const (
	contextClaimsKey  = "callerToken"
	contextProfileKey = "callerProfile"
)

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the identity provider and verified here with the
// shared secret; role resolution always goes through the stored profile,
// never through token contents.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Email        string `json:"email,omitempty"`
}

// newAppJWTConfig returns the JWT auth middleware config.
func newAppJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextClaimsKey,
		Claims:        new(Claims),
	}
}

// GetProfileClaims builds the Claims for a known profile. Exposed for tests
// and for the admin tooling that mints tokens locally.
func GetProfileClaims(conf *core.Config, p account.Profile, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   p.UID,
			Audience:  "Academia",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Email:        p.Email,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextClaimsKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// callerMiddleware resolves the verified token subject into a stored Profile,
// creating a pending one on first sight.
func callerMiddleware(svc *account.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			p, err := svc.EnsureProfile(ctx.Request().Context(), claims.Subject, claims.Email)
			if err != nil {
				return errors.Wrap(err, "resolving caller profile")
			}
			ctx.Set(contextProfileKey, p)
			return next(ctx)
		}
	}
}

func getContextProfile(ctx echo.Context) (account.Profile, error) {
	if p, ok := ctx.Get(contextProfileKey).(account.Profile); ok {
		return p, nil
	}
	return account.Profile{}, errUnauthorized
}

func getContextCaller(ctx echo.Context) (authz.Caller, error) {
	p, err := getContextProfile(ctx)
	if err != nil {
		return authz.Caller{}, err
	}
	return p.Caller(), nil
}
