package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Бэкенды хранения сессии
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config представляет конфигурацию консоли
type Config struct {
	// Окружение: dev включает консольный формат логов
	Environment string `yaml:"environment" json:"environment"`

	// API настройки
	API struct {
		BaseURL string `yaml:"base_url" json:"base_url"`
		Timeout int    `yaml:"timeout" json:"timeout"`
	} `yaml:"api" json:"api"`

	// Хранение сессии
	Session struct {
		Backend   string `yaml:"backend" json:"backend"`
		Dir       string `yaml:"dir" json:"dir"`
		Namespace string `yaml:"namespace" json:"namespace"`
	} `yaml:"session" json:"session"`

	// Redis для бэкенда redis
	Redis struct {
		Addr     string `yaml:"addr" json:"addr"`
		Password string `yaml:"password" json:"-"`
		DB       int    `yaml:"db" json:"db"`
	} `yaml:"redis" json:"redis"`

	// PostgreSQL для бэкенда postgres
	Database struct {
		URL string `yaml:"url" json:"-"`
	} `yaml:"database" json:"database"`

	// Логирование
	Logger struct {
		Level string `yaml:"level" json:"level"`
	} `yaml:"logger" json:"logger"`

	// Настройки вывода
	Output struct {
		Format string `yaml:"format" json:"format"` // table, json, yaml
		Colors bool   `yaml:"colors" json:"colors"`
	} `yaml:"output" json:"output"`

	// Уведомления
	Notify struct {
		TTL int `yaml:"ttl" json:"ttl"`
	} `yaml:"notify" json:"notify"`

	// Локальный сервер статуса
	StatusServer struct {
		Addr string `yaml:"addr" json:"addr"`
	} `yaml:"status_server" json:"status_server"`

	// Путь к файлу конфигурации
	Path string `yaml:"-" json:"-"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	config := &Config{}
	config.Environment = "prod"

	config.API.BaseURL = "http://localhost:8000"
	config.API.Timeout = 30

	config.Session.Backend = BackendFile
	config.Session.Namespace = "default"

	config.Redis.Addr = "localhost:6379"

	config.Logger.Level = "warn"

	config.Output.Format = "table"
	config.Output.Colors = true

	config.Notify.TTL = 5

	config.StatusServer.Addr = "127.0.0.1:9464"

	return config
}

// HomeDir возвращает рабочую директорию консоли.
// ASSISTANTHUB_HOME имеет приоритет над домашней директорией пользователя.
func HomeDir() (string, error) {
	if home := os.Getenv("ASSISTANTHUB_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("ошибка получения домашней директории: %w", err)
	}
	return filepath.Join(home, ".assistanthub"), nil
}

// GetConfigPath возвращает путь к файлу конфигурации
func GetConfigPath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// LoadConfig загружает конфигурацию: значения по умолчанию, файл, переменные окружения.
// Отсутствующий файл не является ошибкой.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	config.Path = path

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("ошибка парсинга конфигурации: %w", err)
			}
		}
	}

	if err := loadConfigFromEnv(config); err != nil {
		return nil, err
	}

	if config.Session.Dir == "" {
		home, err := HomeDir()
		if err != nil {
			return nil, err
		}
		config.Session.Dir = filepath.Join(home, "session")
	}

	return config, nil
}

func loadConfigFromEnv(config *Config) error {
	if v := os.Getenv("ASSISTANTHUB_ENV"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("ASSISTANTHUB_API_URL"); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv("ASSISTANTHUB_API_TIMEOUT"); v != "" {
		timeout, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("некорректный ASSISTANTHUB_API_TIMEOUT: %w", err)
		}
		config.API.Timeout = timeout
	}
	if v := os.Getenv("ASSISTANTHUB_SESSION_BACKEND"); v != "" {
		config.Session.Backend = v
	}
	if v := os.Getenv("ASSISTANTHUB_SESSION_DIR"); v != "" {
		config.Session.Dir = v
	}
	if v := os.Getenv("ASSISTANTHUB_SESSION_NAMESPACE"); v != "" {
		config.Session.Namespace = v
	}
	if v := os.Getenv("ASSISTANTHUB_REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("ASSISTANTHUB_REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("ASSISTANTHUB_DATABASE_URL"); v != "" {
		config.Database.URL = v
	}
	if v := os.Getenv("ASSISTANTHUB_LOG_LEVEL"); v != "" {
		config.Logger.Level = v
	}
	return nil
}

// Save сохраняет конфигурацию в файл
func (c *Config) Save() error {
	if c.Path == "" {
		return fmt.Errorf("путь к файлу конфигурации не указан")
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		return fmt.Errorf("ошибка создания директории: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("ошибка сериализации конфигурации: %w", err)
	}

	// Файл может содержать пароли Redis и PostgreSQL
	if err := os.WriteFile(c.Path, data, 0600); err != nil {
		return fmt.Errorf("ошибка записи файла конфигурации: %w", err)
	}

	return nil
}

// InitConfig создает файл конфигурации по умолчанию
func InitConfig(path string) (*Config, error) {
	config := DefaultConfig()
	config.Path = path

	if err := config.Save(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate проверяет валидность конфигурации
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API BaseURL не может быть пустым")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("API BaseURL должен начинаться с http:// или https://: %s", c.API.BaseURL)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("API таймаут должен быть положительным числом")
	}

	switch c.Session.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("для бэкенда redis нужен redis.addr")
		}
	case BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("для бэкенда postgres нужен database.url")
		}
	default:
		return fmt.Errorf("неизвестный бэкенд сессии: %s", c.Session.Backend)
	}

	validFormats := map[string]bool{
		"table": true,
		"json":  true,
		"yaml":  true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("неверный формат вывода: %s", c.Output.Format)
	}

	if c.Notify.TTL <= 0 {
		return fmt.Errorf("notify.ttl должен быть положительным числом")
	}

	return nil
}

// Timeout возвращает таймаут HTTP запросов
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.Timeout) * time.Second
}

// NotifyTTL возвращает время показа уведомления
func (c *Config) NotifyTTL() time.Duration {
	return time.Duration(c.Notify.TTL) * time.Second
}

// Set устанавливает значение по ключу вида section.field
func (c *Config) Set(key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s: ожидается число, получено %q", key, value)
		}
		return n, nil
	}

	switch key {
	case "environment":
		c.Environment = value
	case "api.base_url":
		c.API.BaseURL = strings.TrimRight(value, "/")
	case "api.timeout":
		n, err := atoi()
		if err != nil {
			return err
		}
		c.API.Timeout = n
	case "session.backend":
		c.Session.Backend = value
	case "session.dir":
		c.Session.Dir = value
	case "session.namespace":
		c.Session.Namespace = value
	case "redis.addr":
		c.Redis.Addr = value
	case "redis.password":
		c.Redis.Password = value
	case "redis.db":
		n, err := atoi()
		if err != nil {
			return err
		}
		c.Redis.DB = n
	case "database.url":
		c.Database.URL = value
	case "logger.level":
		c.Logger.Level = value
	case "output.format":
		c.Output.Format = value
	case "output.colors":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: ожидается true/false, получено %q", key, value)
		}
		c.Output.Colors = b
	case "notify.ttl":
		n, err := atoi()
		if err != nil {
			return err
		}
		c.Notify.TTL = n
	case "status_server.addr":
		c.StatusServer.Addr = value
	default:
		return fmt.Errorf("неизвестный ключ конфигурации: %s", key)
	}

	return nil
}
