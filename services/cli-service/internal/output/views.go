package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"AssistantHubPlatform/services/cli-service/internal/client"
	"AssistantHubPlatform/services/cli-service/internal/domain"
)

func activeStyle(active bool) (string, RowStyle) {
	if active {
		return StatusIcon("active") + " активен", StyleSuccess
	}
	return StatusIcon("inactive") + " выключен", StyleError
}

// ServicesTable таблица сервисов
func ServicesTable(services []domain.Service) *TableData {
	table := NewTableData("ID", "Название", "Ассистент", "Проект", "Статус", "Обновлен")
	table.Empty = "Сервисов нет"
	for _, s := range services {
		status, style := activeStyle(s.Active)
		assistant := s.AssistantName
		if assistant == "" {
			assistant = s.AssistantID
		}
		table.AddRowWithStyle(style, s.ServiceID, s.ServiceName, OrDash(assistant), OrDash(s.ProjectKey), status, FormatTime(s.LastUpdated))
	}
	return table
}

// ServiceDetails карточка одного сервиса
func ServiceDetails(s domain.Service) *TableData {
	table := NewTableData("Поле", "Значение")
	status, style := activeStyle(s.Active)
	table.AddRow("ID", s.ServiceID)
	table.AddRow("Название", s.ServiceName)
	table.AddRow("Ассистент", OrDash(s.AssistantID))
	table.AddRow("Проект", OrDash(s.ProjectKey))
	table.AddRowWithStyle(style, "Статус", status)
	table.AddRow("Обновлен", FormatTime(s.LastUpdated))
	if len(s.Config) > 0 {
		table.AddRow("Конфигурация", Truncate(string(s.Config), 80))
	}
	return table
}

// WebhooksTable таблица вебхуков
func WebhooksTable(webhooks []domain.Webhook) *TableData {
	table := NewTableData("ID", "Название", "URL", "Сервис", "События", "Статус", "Срабатывал")
	table.Empty = "Вебхуков нет"
	for _, w := range webhooks {
		status, style := activeStyle(w.Active)
		table.AddRowWithStyle(style, w.ID, w.Name, Truncate(w.URL, 48), OrDash(w.ServiceID),
			OrDash(strings.Join(w.Events, ",")), status, FormatTime(w.LastTrigger))
	}
	return table
}

// WebhookTestTable результат тестовой отправки
func WebhookTestTable(result domain.WebhookTestResult) *TableData {
	table := NewTableData("Доставлен", "HTTP", "Время", "Ответ")
	style := StyleError
	if result.Delivered {
		style = StyleSuccess
	}
	code := "-"
	if result.StatusCode > 0 {
		code = strconv.Itoa(result.StatusCode)
	}
	table.AddRowWithStyle(style, StatusIcon(strconv.FormatBool(result.Delivered)), code,
		fmt.Sprintf("%d мс", result.DurationMs), OrDash(Truncate(result.Response, 60)))
	return table
}

// OriginsTable таблица запросов cross-origin доступа
func OriginsTable(requests []domain.OriginRequest) *TableData {
	table := NewTableData("ID", "Сервис", "Origin", "Статус", "Запрошен", "Причина")
	table.Empty = "Запросов нет"
	for _, r := range requests {
		style := StyleWarning
		switch r.Status {
		case domain.OriginApproved:
			style = StyleSuccess
		case domain.OriginRejected:
			style = StyleError
		}
		service := r.ServiceName
		if service == "" {
			service = r.ServiceID
		}
		table.AddRowWithStyle(style, r.ID, service, r.Origin, StatusIcon(r.Status)+" "+r.Status,
			FormatTime(r.RequestedAt), OrDash(r.Reason))
	}
	return table
}

// TicketsTable таблица задач трекера
func TicketsTable(tickets []domain.Ticket) *TableData {
	table := NewTableData("Ключ", "Статус", "Тема", "Сервис", "Создана")
	table.Empty = "Задач нет"
	for _, t := range tickets {
		table.AddRow(t.Key, t.Status, Truncate(t.Summary, 60), OrDash(t.ServiceID), FormatTime(t.CreatedAt))
	}
	return table
}

// AssistantsTable таблица ассистентов
func AssistantsTable(assistants []domain.Assistant) *TableData {
	table := NewTableData("ID", "Название", "Проект")
	table.Empty = "Ассистентов нет"
	for _, a := range assistants {
		table.AddRow(a.ID, a.Name, OrDash(a.ProjectKey))
	}
	return table
}

// ProjectGroupsTable сводка проектов со связанными сервисами и вебхуками
func ProjectGroupsTable(groups []client.ProjectGroup) *TableData {
	table := NewTableData("Проект", "Название", "Сервисы", "Вебхуки")
	table.Empty = "Проектов нет"
	for _, g := range groups {
		services := make([]string, 0, len(g.Services))
		for _, s := range g.Services {
			services = append(services, s.ServiceName)
		}
		style := StyleDefault
		if g.Project.Key == client.UnassignedKey {
			style = StyleWarning
		}
		table.AddRowWithStyle(style, g.Project.Key, OrDash(g.Project.Name),
			OrDash(strings.Join(services, ", ")), strconv.Itoa(len(g.Webhooks)))
	}
	return table
}

// UsersTable таблица пользователей
func UsersTable(users []domain.User) *TableData {
	table := NewTableData("ID", "Логин", "Email", "Роль", "Последний вход")
	table.Empty = "Пользователей нет"
	for _, u := range users {
		style := StyleDefault
		if u.IsAdmin() {
			style = StyleInfo
		}
		table.AddRowWithStyle(style, strconv.FormatInt(u.ID, 10), u.Username, OrDash(u.Email), string(u.Role), FormatTime(u.LastLogin))
	}
	return table
}

// ProfileTable карточка текущего пользователя
func ProfileTable(u domain.User) *TableData {
	table := NewTableData("Поле", "Значение")
	table.AddRow("ID", strconv.FormatInt(u.ID, 10))
	table.AddRow("Логин", u.Username)
	table.AddRow("Email", OrDash(u.Email))
	table.AddRow("Роль", string(u.Role))
	if u.SetupCompleted {
		table.AddRowWithStyle(StyleSuccess, "Настройка", "✓ завершена")
	} else {
		table.AddRowWithStyle(StyleWarning, "Настройка", "⚠ не завершена")
	}
	table.AddRow("Последний вход", FormatTime(u.LastLogin))
	if u.OrganizationLogo != "" {
		table.AddRow("Логотип", Truncate(u.OrganizationLogo, 40))
	}
	if len(u.Permissions) > 0 {
		granted := make([]string, 0, len(u.Permissions))
		for name, ok := range u.Permissions {
			if ok {
				granted = append(granted, name)
			}
		}
		sort.Strings(granted)
		table.AddRow("Права", OrDash(strings.Join(granted, ", ")))
	}
	return table
}

// APITokensTable сохраненные токены, секреты уже замаскированы
func APITokensTable(tokens domain.APITokens) *TableData {
	table := NewTableData("Токен", "Значение")
	table.AddRow("Трекер URL", OrDash(tokens.IssueTrackerURL))
	table.AddRow("Трекер email", OrDash(tokens.IssueTrackerEmail))
	table.AddRow("Трекер токен", OrDash(tokens.IssueTrackerToken))
	table.AddRow("AI провайдер", OrDash(tokens.AIProviderToken))
	return table
}

// KeyValueTable таблица из пар ключ-значение в порядке ключей
func KeyValueTable(values map[string]string) *TableData {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := NewTableData("Параметр", "Значение")
	for _, k := range keys {
		table.AddRow(k, OrDash(values[k]))
	}
	return table
}
