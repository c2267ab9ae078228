package gateway

import (
	"encoding/json"

	"AssistantHubPlatform/pkg/errors"
)

// Envelope общий конверт ответа бэкенда: {success, data?, error?, message?}
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`

	// Status HTTP статус ответа
	Status int `json:"-"`
	// Raw тело ответа целиком: часть эндпоинтов кладет поля рядом с success
	Raw json.RawMessage `json:"-"`
}

// backendMessage сообщение бэкенда об ошибке, если оно есть
func (e *Envelope) backendMessage() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// DecodeData разбирает поле data в v. Без data разбирается тело целиком.
func DecodeData(env *Envelope, v interface{}) error {
	if env == nil {
		return errors.New(errors.ErrParse, "пустой ответ сервера")
	}

	payload := env.Data
	if len(payload) == 0 || string(payload) == "null" {
		payload = env.Raw
	}
	if len(payload) == 0 {
		return errors.New(errors.ErrParse, "ответ сервера не содержит данных")
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return errors.Wrap(err, errors.ErrParse, "ошибка разбора данных ответа").WithStatus(env.Status)
	}
	return nil
}
