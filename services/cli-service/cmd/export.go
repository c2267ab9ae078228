package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"AssistantHubPlatform/pkg/errors"
)

// envNames переменные окружения, которые читает LoadConfig
var envNames = map[string]string{
	"environment":       "ASSISTANTHUB_ENV",
	"api.base_url":      "ASSISTANTHUB_API_URL",
	"api.timeout":       "ASSISTANTHUB_API_TIMEOUT",
	"session.backend":   "ASSISTANTHUB_SESSION_BACKEND",
	"session.dir":       "ASSISTANTHUB_SESSION_DIR",
	"session.namespace": "ASSISTANTHUB_SESSION_NAMESPACE",
	"redis.addr":        "ASSISTANTHUB_REDIS_ADDR",
	"redis.password":    "ASSISTANTHUB_REDIS_PASSWORD",
	"database.url":      "ASSISTANTHUB_DATABASE_URL",
	"logger.level":      "ASSISTANTHUB_LOG_LEVEL",
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export [yaml|json|env]",
		Short: "Экспорт конфигурации",
		Long: `Экспортирует текущую конфигурацию консоли.

Поддерживаемые форматы:
- yaml: YAML формат (по умолчанию)
- json: JSON формат
- env: переменные окружения ASSISTANTHUB_*

Примеры:
  assistanthub config export json
  assistanthub config export env --file .env
  assistanthub config export yaml --include api,session`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"yaml", "json", "env"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "yaml"
			if len(args) > 0 {
				format = strings.ToLower(args[0])
			}
			file, _ := cmd.Flags().GetString("file")
			include, _ := cmd.Flags().GetStringSlice("include")
			exclude, _ := cmd.Flags().GetStringSlice("exclude")
			showSecrets, _ := cmd.Flags().GetBool("show-secrets")

			cfg, err := opts.rawConfig()
			if err != nil {
				return opts.handleError(cmd, nil, err)
			}

			values := filterConfig(configValues(cfg, showSecrets), include, exclude)
			out, err := exportConfig(values, format)
			if err != nil {
				return opts.handleError(cmd, nil, err)
			}

			if file != "" {
				if err := writeToFile(file, []byte(out)); err != nil {
					return opts.handleError(cmd, nil, err)
				}
				return opts.message(cmd, "Конфигурация экспортирована: "+file)
			}
			_, err = fmt.Fprint(opts.stdout, out)
			return err
		},
	}

	exportCmd.Flags().StringP("file", "f", "", "файл для вывода (по умолчанию stdout)")
	exportCmd.Flags().StringSlice("include", nil, "включить только указанные секции")
	exportCmd.Flags().StringSlice("exclude", nil, "исключить указанные секции")
	exportCmd.Flags().BoolP("show-secrets", "x", false, "экспортировать пароли без маски")

	return exportCmd
}

// filterConfig оставляет параметры выбранных секций; include важнее exclude
func filterConfig(values map[string]string, include, exclude []string) map[string]string {
	delete(values, "path")

	inSections := func(key string, sections []string) bool {
		section := strings.SplitN(key, ".", 2)[0]
		for _, s := range sections {
			if s == section {
				return true
			}
		}
		return false
	}

	result := make(map[string]string, len(values))
	for key, value := range values {
		switch {
		case len(include) > 0:
			if inSections(key, include) {
				result[key] = value
			}
		case len(exclude) > 0:
			if !inSections(key, exclude) {
				result[key] = value
			}
		default:
			result[key] = value
		}
	}
	return result
}

func exportConfig(values map[string]string, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(nestConfig(values), "", "  ")
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInternal, "ошибка сериализации JSON")
		}
		return string(data) + "\n", nil
	case "yaml", "yml":
		data, err := yaml.Marshal(nestConfig(values))
		if err != nil {
			return "", errors.Wrap(err, errors.ErrInternal, "ошибка сериализации YAML")
		}
		return string(data), nil
	case "env":
		return exportConfigEnv(values), nil
	default:
		return "", errors.New(errors.ErrValidation, "неподдерживаемый формат экспорта: "+format)
	}
}

// nestConfig превращает ключи section.field во вложенные секции
func nestConfig(values map[string]string) map[string]interface{} {
	result := make(map[string]interface{})
	for key, value := range values {
		parts := strings.SplitN(key, ".", 2)
		if len(parts) == 1 {
			result[key] = value
			continue
		}
		section, ok := result[parts[0]].(map[string]interface{})
		if !ok {
			section = make(map[string]interface{})
			result[parts[0]] = section
		}
		section[parts[1]] = value
	}
	return result
}

// exportConfigEnv выводит только параметры, у которых есть переменная окружения
func exportConfigEnv(values map[string]string) string {
	var lines []string
	for key, value := range values {
		name, ok := envNames[key]
		if !ok || value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s=%q", name, value))
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// writeToFile записывает экспорт; файл может содержать пароли
func writeToFile(filename string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "не удалось создать директорию")
	}
	if err := os.WriteFile(filename, data, 0600); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "не удалось записать файл "+filename)
	}
	return nil
}
