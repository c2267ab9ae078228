package domain

import (
	"time"
)

// Role роль пользователя платформы
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid проверяет, что роль известна
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User представляет аутентифицированного пользователя сессии.
// Запись приходит от бэкенда при входе и хранится вместе с токеном.
type User struct {
	ID               int64           `json:"id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	Role             Role            `json:"role"`
	Permissions      map[string]bool `json:"permissions"`
	LastLogin        *time.Time      `json:"last_login,omitempty"`
	SetupCompleted   bool            `json:"initial_setup_completed"`
	OrganizationLogo string          `json:"organization_logo,omitempty"`
}

// IsEmpty сообщает, что запись пользователя не содержит идентификации
func (u *User) IsEmpty() bool {
	return u == nil || (u.ID == 0 && u.Username == "" && u.Email == "")
}

// IsAdmin сообщает, что пользователь администратор
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Clone возвращает глубокую копию записи
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.Permissions != nil {
		clone.Permissions = make(map[string]bool, len(u.Permissions))
		for k, v := range u.Permissions {
			clone.Permissions[k] = v
		}
	}
	clone.LastLogin = normalizeTime(u.LastLogin)
	return &clone
}

// normalizeTime копирует время в UTC без монотонных показаний,
// в том же виде, в каком оно читается из JSON
func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	normalized := t.UTC().Round(0)
	return &normalized
}

// UserPatch частичное обновление записи пользователя.
// nil поля не меняются; Permissions заменяются целиком, если заданы.
type UserPatch struct {
	Username         *string         `json:"username,omitempty"`
	Email            *string         `json:"email,omitempty"`
	Role             *Role           `json:"role,omitempty"`
	Permissions      map[string]bool `json:"permissions,omitempty"`
	LastLogin        *time.Time      `json:"last_login,omitempty"`
	SetupCompleted   *bool           `json:"initial_setup_completed,omitempty"`
	OrganizationLogo *string         `json:"organization_logo,omitempty"`
}

// Apply выполняет поверхностное слияние патча с записью
func (p UserPatch) Apply(u *User) {
	if u == nil {
		return
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Permissions != nil {
		u.Permissions = make(map[string]bool, len(p.Permissions))
		for k, v := range p.Permissions {
			u.Permissions[k] = v
		}
	}
	if p.LastLogin != nil {
		u.LastLogin = normalizeTime(p.LastLogin)
	}
	if p.SetupCompleted != nil {
		u.SetupCompleted = *p.SetupCompleted
	}
	if p.OrganizationLogo != nil {
		u.OrganizationLogo = *p.OrganizationLogo
	}
}

// PatchFromUser строит патч, переносящий все поля серверной записи.
// ID не переносится: идентичность пользователя внутри сессии не меняется.
func PatchFromUser(u User) UserPatch {
	role := u.Role
	setup := u.SetupCompleted
	patch := UserPatch{
		Username:         &u.Username,
		Email:            &u.Email,
		Role:             &role,
		SetupCompleted:   &setup,
		OrganizationLogo: &u.OrganizationLogo,
		LastLogin:        u.LastLogin,
	}
	if u.Permissions != nil {
		patch.Permissions = u.Permissions
	} else {
		patch.Permissions = map[string]bool{}
	}
	return patch
}
