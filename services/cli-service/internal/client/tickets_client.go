package client

import (
	"context"
	"sort"

	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/endpoints"
)

// UnassignedKey ключ группы сервисов без известного проекта
const UnassignedKey = "unassigned"

// ProjectGroup проект со связанными сервисами и вебхуками
type ProjectGroup struct {
	Project  domain.Project   `json:"project"`
	Services []domain.Service `json:"services"`
	Webhooks []domain.Webhook `json:"webhooks"`
}

// TicketsClient ассистенты, проекты и задачи трекера
type TicketsClient struct {
	base
}

// NewTicketsClient создает клиент задач
func NewTicketsClient(deps Deps) *TicketsClient {
	return &TicketsClient{base: newBase(deps)}
}

// ListAssistants возвращает ассистентов AI провайдера
func (c *TicketsClient) ListAssistants(ctx context.Context) ([]domain.Assistant, error) {
	endpoint, err := c.endpoint(endpoints.Assistants)
	if err != nil {
		return nil, err
	}
	var assistants []domain.Assistant
	if err := c.get(ctx, endpoint, &assistants); err != nil {
		return nil, err
	}
	return assistants, nil
}

// ListProjects возвращает проекты трекера
func (c *TicketsClient) ListProjects(ctx context.Context) ([]domain.Project, error) {
	endpoint, err := c.endpoint(endpoints.Projects)
	if err != nil {
		return nil, err
	}
	var projects []domain.Project
	if err := c.get(ctx, endpoint, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ListTickets возвращает задачи проекта
func (c *TicketsClient) ListTickets(ctx context.Context, projectKey string) ([]domain.Ticket, error) {
	endpoint, err := c.endpoint(endpoints.Tickets, projectKey)
	if err != nil {
		return nil, err
	}
	var tickets []domain.Ticket
	if err := c.get(ctx, endpoint, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// GroupByProject связывает сервисы и вебхуки с проектами.
// Проект сервиса берется из самого сервиса, иначе из его ассистента.
// Сервисы без известного проекта и их вебхуки попадают в группу UnassignedKey,
// туда же попадают вебхуки без сервиса. Группы идут в порядке projects,
// группа UnassignedKey последней и только если не пуста.
func GroupByProject(services []domain.Service, webhooks []domain.Webhook, assistants []domain.Assistant, projects []domain.Project) []ProjectGroup {
	assistantProject := make(map[string]string, len(assistants))
	for _, assistant := range assistants {
		if assistant.ProjectKey != "" {
			assistantProject[assistant.ID] = assistant.ProjectKey
		}
	}

	groups := make([]ProjectGroup, len(projects))
	byKey := make(map[string]*ProjectGroup, len(projects))
	for i, project := range projects {
		groups[i] = ProjectGroup{Project: project, Services: []domain.Service{}, Webhooks: []domain.Webhook{}}
		if _, seen := byKey[project.Key]; !seen {
			byKey[project.Key] = &groups[i]
		}
	}
	unassigned := ProjectGroup{
		Project:  domain.Project{Key: UnassignedKey, Name: "Без проекта"},
		Services: []domain.Service{},
		Webhooks: []domain.Webhook{},
	}

	serviceGroup := make(map[string]*ProjectGroup, len(services))
	for _, service := range services {
		key := service.ProjectKey
		if key == "" {
			key = assistantProject[service.AssistantID]
		}
		group, ok := byKey[key]
		if !ok {
			group = &unassigned
		}
		group.Services = append(group.Services, service)
		serviceGroup[service.ServiceID] = group
	}

	for _, webhook := range webhooks {
		group, ok := serviceGroup[webhook.ServiceID]
		if !ok {
			group = &unassigned
		}
		group.Webhooks = append(group.Webhooks, webhook)
	}

	for i := range groups {
		sortGroup(&groups[i])
	}
	sortGroup(&unassigned)

	if len(unassigned.Services) > 0 || len(unassigned.Webhooks) > 0 {
		groups = append(groups, unassigned)
	}
	return groups
}

func sortGroup(group *ProjectGroup) {
	sort.SliceStable(group.Services, func(i, j int) bool {
		return group.Services[i].ServiceName < group.Services[j].ServiceName
	})
	sort.SliceStable(group.Webhooks, func(i, j int) bool {
		return group.Webhooks[i].Name < group.Webhooks[j].Name
	})
}
