package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
)

const (
	profilePath        = "/api/auth/profile"
	completeSetupPath  = "/api/auth/complete-setup"
	organizationLogo   = "/api/auth/organization-logo"
	changePasswordPath = "/api/auth/change-password"

	// MaxLogoSize максимальный размер файла логотипа
	MaxLogoSize = 2 << 20
	// MinPasswordLength минимальная длина нового пароля
	MinPasswordLength = 8
)

// ProfileUpdate изменяемые поля профиля; nil поля не отправляются
type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// ProfileClient редактирование профиля текущего пользователя
type ProfileClient struct {
	base
}

// NewProfileClient создает клиент профиля
func NewProfileClient(deps Deps) *ProfileClient {
	return &ProfileClient{base: newBase(deps)}
}

// UpdateProfile сохраняет профиль и переносит подтвержденную запись в сессию
func (c *ProfileClient) UpdateProfile(ctx context.Context, update ProfileUpdate) (*domain.User, error) {
	if update.Username == nil && update.Email == nil {
		return nil, errors.New(errors.ErrValidation, "нет полей для обновления")
	}
	if update.Username != nil {
		if err := c.validator.ValidateStringLength(strings.TrimSpace(*update.Username), "username", 3, 64); err != nil {
			return nil, invalid(err)
		}
	}
	if update.Email != nil {
		if err := c.validator.ValidateEmail(*update.Email); err != nil {
			return nil, invalid(err)
		}
	}

	var user domain.User
	if err := c.put(ctx, profilePath, update, &user); err != nil {
		return nil, err
	}

	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	// Бэкенд может вернуть только конверт без записи: тогда переносим отправленные поля
	patch := domain.UserPatch{Username: update.Username, Email: update.Email}
	if !user.IsEmpty() {
		patch = domain.PatchFromUser(user)
	}
	if err := c.session.UpdateUser(ctx, patch); err != nil {
		return nil, err
	}
	return c.session.User(), nil
}

// CompleteSetup отмечает начальную настройку завершенной
func (c *ProfileClient) CompleteSetup(ctx context.Context) error {
	if err := c.post(ctx, completeSetupPath, nil, nil); err != nil {
		return err
	}
	if err := cancelled(ctx); err != nil {
		return err
	}
	done := true
	return c.session.UpdateUser(ctx, domain.UserPatch{SetupCompleted: &done})
}

// UploadOrganizationLogo загружает логотип организации в виде data URI
func (c *ProfileClient) UploadOrganizationLogo(ctx context.Context, dataURI string) error {
	if !strings.HasPrefix(dataURI, "data:image/") || !strings.Contains(dataURI, ";base64,") {
		return errors.New(errors.ErrValidation, "логотип должен быть data URI изображения в base64")
	}

	if err := c.post(ctx, organizationLogo, map[string]string{"logo": dataURI}, nil); err != nil {
		return err
	}
	if err := cancelled(ctx); err != nil {
		return err
	}
	return c.session.UpdateUser(ctx, domain.UserPatch{OrganizationLogo: &dataURI})
}

// LogoDataURI читает файл изображения и кодирует его в data URI
func LogoDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrValidation, fmt.Sprintf("ошибка чтения файла %s", path))
	}
	if len(data) == 0 {
		return "", errors.New(errors.ErrValidation, "файл логотипа пуст")
	}
	if len(data) > MaxLogoSize {
		return "", errors.New(errors.ErrValidation, fmt.Sprintf("файл логотипа больше %d байт", MaxLogoSize))
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.New(errors.ErrValidation, fmt.Sprintf("файл не является изображением: %s", contentType))
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ChangePassword меняет пароль пользователя
func (c *ProfileClient) ChangePassword(ctx context.Context, current, next string) error {
	if current == "" {
		return errors.New(errors.ErrValidation, "текущий пароль обязателен")
	}
	if err := c.validator.ValidateStringLength(next, "new password", MinPasswordLength, 128); err != nil {
		return invalid(err)
	}
	if current == next {
		return errors.New(errors.ErrValidation, "новый пароль совпадает с текущим")
	}

	body := map[string]string{"current_password": current, "new_password": next}
	return c.post(ctx, changePasswordPath, body, nil)
}
