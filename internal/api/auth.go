package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fitclub/internal/config"
	"fitclub/internal/database"
	"fitclub/internal/domain"
	"fitclub/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type ctxKey int

const (
	ctxKeyAdmin ctxKey = iota
	ctxKeyUser
)

// JWTAuth проверяет пароли администраторов и выпускает токены для
// админки. Токены подписываются HS256 одним секретом из конфигурации.
type JWTAuth struct {
	repo   domain.Repository
	secret []byte
	ttl    time.Duration
}

func NewJWTAuth(repo domain.Repository, cfg config.AdminConfig) *JWTAuth {
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTAuth{repo: repo, secret: []byte(cfg.JWTSecret), ttl: ttl}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login проверяет учётные данные и возвращает подписанный токен.
func (a *JWTAuth) Login(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	admin, err := a.repo.GetAdminByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, database.ErrAdminNotFound) {
			return "", nil, database.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !admin.IsActive {
		return "", nil, database.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", nil, database.ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   admin.ID,
		"email": admin.Email,
		"role":  admin.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(a.ttl).Unix(),
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", nil, err
	}
	admin.PasswordHash = ""
	return signed, admin, nil
}

// verify разбирает токен и возвращает администратора из БД: отключённый
// администратор теряет доступ сразу, а не по истечении токена.
func (a *JWTAuth) verify(ctx context.Context, tokenString string) (*models.AdminUser, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, database.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, database.ErrInvalidCredentials
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, database.ErrInvalidCredentials
	}

	admin, err := a.repo.GetAdminByID(ctx, int64(sub))
	if err != nil || !admin.IsActive {
		return nil, database.ErrInvalidCredentials
	}
	return admin, nil
}

// Middleware пропускает только запросы с действительным токеном в
// Authorization: Bearer.
func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		admin, err := a.verify(r.Context(), strings.TrimPrefix(header, prefix))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyAdmin, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func adminFromContext(ctx context.Context) *models.AdminUser {
	admin, _ := ctx.Value(ctxKeyAdmin).(*models.AdminUser)
	return admin
}

func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(ctxKeyUser).(*models.User)
	return user
}
