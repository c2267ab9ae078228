package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"AssistantHubPlatform/pkg/errors"
)

// Claims сведения из токена, пригодные только для отображения
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired сообщает, что срок токена по его собственным данным истек
func (c *Claims) Expired(now time.Time) bool {
	return c != nil && c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// TokenClaims разбирает токен без проверки подписи.
// Токен для клиента непрозрачен: ошибка разбора не влияет на сессию.
func (s *Session) TokenClaims() (*Claims, error) {
	token := s.Token()
	if token == "" {
		return nil, errors.New(errors.ErrUnauthenticated, "нет активной сессии")
	}
	return ParseClaims(token)
}

// ParseClaims извлекает зарегистрированные поля JWT без проверки подписи
func ParseClaims(token string) (*Claims, error) {
	registered := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, registered); err != nil {
		return nil, errors.Wrap(err, errors.ErrParse, "токен не является JWT")
	}

	claims := &Claims{
		Subject: registered.Subject,
		Issuer:  registered.Issuer,
	}
	if registered.IssuedAt != nil {
		t := registered.IssuedAt.Time
		claims.IssuedAt = &t
	}
	if registered.ExpiresAt != nil {
		t := registered.ExpiresAt.Time
		claims.ExpiresAt = &t
	}
	return claims, nil
}
