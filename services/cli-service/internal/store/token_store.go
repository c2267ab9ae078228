package store

import (
	"context"
	"encoding/json"
	"fmt"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
)

// Ключи записей сессии в хранилище
const (
	TokenKey = "token"
	UserKey  = "user"
)

// SchemaVersion версия формата сохраненной записи пользователя.
// Записи с другой версией считаются поврежденными.
const SchemaVersion = 1

// ErrCorrupt сохраненное состояние не читается; считается отсутствующим
var ErrCorrupt = errors.New(errors.ErrValidation, "сохраненная сессия повреждена")

// userRecord формат записи пользователя в хранилище
type userRecord struct {
	Version int          `json:"version"`
	User    *domain.User `json:"user"`
}

// Credentials пара токен + пользователь, прочитанная из хранилища
type Credentials struct {
	Token string
	User  *domain.User
}

// TokenStore сохраняет bearer токен и запись пользователя между запусками
type TokenStore struct {
	storage Storage
}

// NewTokenStore создает хранилище токенов поверх Storage
func NewTokenStore(storage Storage) *TokenStore {
	return &TokenStore{storage: storage}
}

// Save сохраняет токен и пользователя. Формат токена не проверяется.
// Load вернет пользователя в виде user.Clone(): время входа в UTC.
func (ts *TokenStore) Save(ctx context.Context, token string, user *domain.User) error {
	if token == "" {
		return errors.New(errors.ErrValidation, "токен не может быть пустым")
	}
	if user == nil {
		return errors.New(errors.ErrValidation, "пользователь не может быть пустым")
	}

	data, err := json.Marshal(userRecord{Version: SchemaVersion, User: user.Clone()})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сериализации пользователя")
	}

	// Пользователя пишем первым: токен без пользователя при сбое все равно не даст сессию
	if err := ts.storage.Set(ctx, UserKey, string(data)); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сохранения пользователя")
	}
	if err := ts.storage.Set(ctx, TokenKey, token); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сохранения токена")
	}
	return nil
}

// SaveUser перезаписывает только запись пользователя
func (ts *TokenStore) SaveUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New(errors.ErrValidation, "пользователь не может быть пустым")
	}
	data, err := json.Marshal(userRecord{Version: SchemaVersion, User: user.Clone()})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сериализации пользователя")
	}
	if err := ts.storage.Set(ctx, UserKey, string(data)); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сохранения пользователя")
	}
	return nil
}

// Load читает токен и пользователя.
// Возвращает (nil, nil), если записей нет, и (nil, ErrCorrupt), если состояние
// частичное или не читается. Наполовину заполненные учетные данные не возвращаются.
func (ts *TokenStore) Load(ctx context.Context) (*Credentials, error) {
	token, hasToken, err := ts.storage.Get(ctx, TokenKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка чтения токена")
	}
	rawUser, hasUser, err := ts.storage.Get(ctx, UserKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка чтения пользователя")
	}

	if !hasToken && !hasUser {
		return nil, nil
	}
	if !hasToken || !hasUser || token == "" {
		return nil, ErrCorrupt.WithDetails("сохранена только часть сессии")
	}

	var record userRecord
	if err := json.Unmarshal([]byte(rawUser), &record); err != nil {
		return nil, ErrCorrupt.WithDetails(fmt.Sprintf("запись пользователя не является JSON: %v", err))
	}
	if record.Version != SchemaVersion {
		return nil, ErrCorrupt.WithDetails(fmt.Sprintf("неизвестная версия записи: %d", record.Version))
	}
	if record.User.IsEmpty() {
		return nil, ErrCorrupt.WithDetails("запись пользователя пуста")
	}

	return &Credentials{Token: token, User: record.User}, nil
}

// Clear удаляет обе записи
func (ts *TokenStore) Clear(ctx context.Context) error {
	if err := ts.storage.Delete(ctx, TokenKey, UserKey); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка очистки сессии")
	}
	return nil
}
