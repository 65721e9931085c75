package echoapi

import (
	"context"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/escolaware/horario/core"
	"github.com/escolaware/horario/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config. The signing key
	// and expiration deltas are filled in by ConfigureAuth.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextUserKey = "user"

	appName                string
	expirationDelta        time.Duration
	refreshExpirationDelta time.Duration

	// userCache keeps context-user lookups off the DB for a short while.
	userCache = cache.New(30*time.Second, time.Minute)
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Nome         string `json:"nome,omitempty"`
	Email        string `json:"email,omitempty"`
	Perfil       string `json:"perfil,omitempty"`
	CanEdit      bool   `json:"can_edit,omitempty"` // direção | vice-direção
}

// ConfigureAuth wires the JWT settings from config and returns the auth
// middleware to protect endpoint groups with.
func ConfigureAuth(conf *core.Config) echo.MiddlewareFunc {
	appJWTConfig.SigningKey = []byte(conf.SecretKey)
	appName = conf.AppName
	expirationDelta = conf.Server.JWTExpirationDelta
	refreshExpirationDelta = conf.Server.JWTRefreshExpirationDelta
	return middleware.JWTWithConfig(appJWTConfig)
}

func GetUserClaims(usr user.User, origIat ...int64) *Claims {
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
			Issuer:    appName,
			Subject:   strconv.Itoa(usr.ID),
			ExpiresAt: now.Add(expirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Nome:         usr.Nome,
		Email:        usr.Email,
		Perfil:       string(usr.Perfil),
		CanEdit:      usr.CanEdit(),
	}
}

func authenticate(ctx context.Context, email, pwd string, svc *user.Service) (*Claims, user.User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, user.User{}, errAuthenticationFailed
		}
		return nil, user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, user.User{}, errAuthenticationFailed
	}
	return GetUserClaims(usr), usr, nil
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey.([]byte))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc *user.Service, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	if usr, ok := userCache.Get(claims.Subject); ok {
		ctx.Set(contextUserKey, usr)
		return usr.(user.User), nil
	}

	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return user.User{}, errUnauthorized
	}
	usr, err := svc.GetByID(ctx.Request().Context(), uid)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	userCache.SetDefault(claims.Subject, usr)
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func refreshToken(ctx echo.Context, svc *user.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	usr, err := getContextUser(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(refreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetUserClaims(usr, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
