package client

import (
	"context"
	"sync"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
)

// Catalog локальная копия списка сервисов на время работы экрана.
// Переключение применяется сразу и откатывается при ошибке.
type Catalog struct {
	client *ServicesClient

	mu      sync.Mutex
	items   []domain.Service
	loaded  bool
	pending map[string]bool
}

// NewCatalog создает пустой каталог
func NewCatalog(client *ServicesClient) *Catalog {
	return &Catalog{client: client, pending: make(map[string]bool)}
}

// Load загружает список сервисов
func (c *Catalog) Load(ctx context.Context) error {
	services, err := c.client.List(ctx)
	if err != nil {
		return err
	}
	if err := cancelled(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = services
	c.loaded = true
	return nil
}

// Loaded сообщает, что список загружен
func (c *Catalog) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Items возвращает копию списка
func (c *Catalog) Items() []domain.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]domain.Service, len(c.items))
	copy(items, c.items)
	return items
}

// Find возвращает сервис из локальной копии
func (c *Catalog) Find(id string) (domain.Service, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return domain.Service{}, false
}

func (c *Catalog) index(id string) int {
	for i := range c.items {
		if c.items[i].ServiceID == id {
			return i
		}
	}
	return -1
}

// Toggle переключает сервис оптимистично. Повторное переключение того же
// сервиса до ответа отклоняется.
func (c *Catalog) Toggle(ctx context.Context, id string) (domain.Service, error) {
	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return domain.Service{}, errors.New(errors.ErrNotFound, "сервис не найден: "+id)
	}
	if c.pending[id] {
		c.mu.Unlock()
		return domain.Service{}, errors.New(errors.ErrConflict, "переключение сервиса уже выполняется")
	}
	c.pending[id] = true
	previous := c.items[i]
	c.items[i].Active = !previous.Active
	c.mu.Unlock()

	updated, err := c.client.Toggle(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)

	i = c.index(id)
	if err != nil {
		// Откат восстанавливает копию бэкенда даже после отмены
		if i >= 0 {
			c.items[i].Active = previous.Active
		}
		return previous, err
	}
	if err := cancelled(ctx); err != nil {
		return previous, err
	}
	if i < 0 {
		return *updated, nil
	}
	// Ответ без записи оставляет оптимистичное значение
	if updated.ServiceID != "" {
		c.items[i] = *updated
	}
	return c.items[i], nil
}

// Create создает сервис и перечитывает список
func (c *Catalog) Create(ctx context.Context, input domain.ServiceInput) (*domain.Service, error) {
	service, err := c.client.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	// Перечитываем только после подтверждения создания
	if err := c.Load(ctx); err != nil {
		return service, err
	}
	return service, nil
}

// Delete удаляет сервис и убирает его из локальной копии
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := c.client.Delete(ctx, id); err != nil {
		return err
	}
	if err := cancelled(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
	return nil
}
