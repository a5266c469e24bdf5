package middleware

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	authCookieName = "auth_token"
	authCookieTTL  = 7 * 24 * time.Hour
	ownerSubject   = "owner"
)

// AuthMiddleware защищает API трекера сессией владельца на подписанном JWT.
// Трекер однопользовательский: пароль один и задаётся конфигурацией;
// пустой пароль отключает аутентификацию целиком.
type AuthMiddleware struct {
	secretKey    []byte
	passwordHash []byte
}

// NewAuthMiddleware создаёт middleware с указанным ключом подписи и паролем
// владельца. Пустой ключ заменяется случайным (сессии не переживут перезапуск).
func NewAuthMiddleware(secret, ownerPassword string) (*AuthMiddleware, error) {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		key = randomKey
	}

	a := &AuthMiddleware{secretKey: key}

	if ownerPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(ownerPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash owner password: %w", err)
		}
		a.passwordHash = hash
	}

	return a, nil
}

// Enabled сообщает, требуется ли аутентификация.
func (a *AuthMiddleware) Enabled() bool {
	return len(a.passwordHash) > 0
}

// CheckPassword проверяет пароль владельца.
func (a *AuthMiddleware) CheckPassword(password string) bool {
	if !a.Enabled() {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

// Middleware пропускает запрос дальше только с действительным cookie сессии.
// При отключённой аутентификации запросы проходят без проверки.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		if !a.validToken(cookie.Value) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SetAuthCookie выпускает токен сессии владельца и устанавливает его в cookie.
func (a *AuthMiddleware) SetAuthCookie(w http.ResponseWriter) error {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(authCookieTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secretKey)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(authCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (a *AuthMiddleware) validToken(tokenString string) bool {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secretKey, nil
	})
	if err != nil || !token.Valid {
		return false
	}
	return claims.Subject == ownerSubject
}
