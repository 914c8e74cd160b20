package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/micheleparry/GovIdea/app/display/internal/conf"
	"github.com/micheleparry/GovIdea/app/radar/pkg/model"
)

const (
	defaultJwtKey     = "default-secret"
	tokenTTL          = 24 * time.Hour
	minPasswordLength = 8
)

var (
	errAuthFailed   = errors.Unauthorized("AUTH_FAILED", "invalid username or password")
	errInvalidToken = errors.Unauthorized("INVALID_TOKEN", "invalid or expired token")
)

// UserRepo 用户仓库，用户名重复时返回 Conflict 错误
type UserRepo interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// UserUseCase 用户注册、登录与令牌校验
type UserUseCase struct {
	repo   UserRepo
	log    *log.Helper
	jwtKey []byte
	now    func() time.Time
}

func NewUserUseCase(repo UserRepo, auth *conf.Auth, logger log.Logger) *UserUseCase {
	jwtKey := defaultJwtKey
	if auth != nil && auth.JwtKey != "" {
		jwtKey = auth.JwtKey
	}
	return &UserUseCase{
		repo:   repo,
		log:    log.NewHelper(logger),
		jwtKey: []byte(jwtKey),
		now:    time.Now,
	}
}

// Register 使用 bcrypt 保存密码哈希
func (uc *UserUseCase) Register(ctx context.Context, username, password string) (*model.User, error) {
	if err := requireFields("INVALID_USER", field{"username", username}, field{"password", password}); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, errors.BadRequest("INVALID_USER", "password must be at least 8 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{Username: username, PasswordHash: string(hashed)}
	if err := uc.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 校验密码并签发 24 小时有效的 JWT
func (uc *UserUseCase) Login(ctx context.Context, username, password string) (string, error) {
	u, err := uc.repo.GetUserByUsername(ctx, username)
	if errors.IsNotFound(err) {
		return "", errAuthFailed
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", errAuthFailed
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(uc.now()),
		ExpiresAt: jwt.NewNumericDate(uc.now().Add(tokenTTL)),
	})
	return token.SignedString(uc.jwtKey)
}

// Authenticate 解析令牌并返回对应用户
func (uc *UserUseCase) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	if tokenString == "" {
		return nil, errInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return uc.jwtKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(uc.now))
	if err != nil || claims.Subject == "" {
		return nil, errInvalidToken
	}

	u, err := uc.repo.GetUser(ctx, claims.Subject)
	if errors.IsNotFound(err) {
		return nil, errInvalidToken
	}
	return u, err
}
