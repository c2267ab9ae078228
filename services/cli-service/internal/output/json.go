package output

import (
	"encoding/json"
	"fmt"

	"AssistantHubPlatform/pkg/errors"
)

// JSONOutput конверт машинного вывода команды, повторяет форму ответов бэкенда
type JSONOutput struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// NewJSONOutput создает новый JSON вывод
func NewJSONOutput(data interface{}, err error) *JSONOutput {
	out := &JSONOutput{Success: err == nil, Data: data}
	if err != nil {
		failure := errors.Failure(err)
		out.Error = failure.Error
		out.Code = string(failure.Code)
	}
	return out
}

// Render возвращает JSON строку с отступами
func (jo *JSONOutput) Render() (string, error) {
	data, err := json.MarshalIndent(jo, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}
