package output

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"

	"AssistantHubPlatform/pkg/errors"
)

// YAMLOutput представляет YAML вывод
type YAMLOutput struct {
	Success bool        `yaml:"success"`
	Data    interface{} `yaml:"data,omitempty"`
	Error   string      `yaml:"error,omitempty"`
	Code    string      `yaml:"code,omitempty"`
}

// NewYAMLOutput создает новый YAML вывод. Данные сначала проходят через
// JSON, чтобы ключи совпадали с json тегами доменных типов.
func NewYAMLOutput(data interface{}, err error) *YAMLOutput {
	out := &YAMLOutput{Success: err == nil, Data: toGeneric(data)}
	if err != nil {
		failure := errors.Failure(err)
		out.Error = failure.Error
		out.Code = string(failure.Code)
	}
	return out
}

// Render возвращает YAML строку
func (yo *YAMLOutput) Render() (string, error) {
	data, err := yaml.Marshal(yo)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

func toGeneric(data interface{}) interface{} {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return data
	}
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return data
	}
	return generic
}
