// Package docs holds the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Вход по email и паролю", "responses": {"200": {"description": "token and user"}, "401": {"description": "invalid credentials"}}}},
        "/leaderboard": {"get": {"tags": ["leaderboard"], "summary": "Таблица лидеров", "responses": {"200": {"description": "entries, avgScore, highScore"}}}},
        "/admin/users": {"post": {"tags": ["admin"], "summary": "Создать аккаунт", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}, "422": {"description": "validation failed"}}}},
        "/admin/teams": {
            "get": {"tags": ["admin"], "summary": "Список команд", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "teams with progress"}}},
            "post": {"tags": ["admin"], "summary": "Создать команду", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}, "409": {"description": "duplicate id or name"}}}
        },
        "/admin/teams/import": {"post": {"tags": ["admin"], "summary": "Импорт команд из .xlsx / .csv", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "created/updated counters"}, "422": {"description": "missing columns or invalid rows"}}}},
        "/admin/teams/{teamID}": {
            "get": {"tags": ["admin"], "summary": "Команда", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "team"}, "404": {"description": "not found"}}},
            "put": {"tags": ["admin"], "summary": "Изменить команду", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "team"}}},
            "delete": {"tags": ["admin"], "summary": "Удалить команду", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "deleted"}}}
        },
        "/admin/teams/{teamID}/mentor": {
            "put": {"tags": ["admin"], "summary": "Назначить ментора", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "team"}, "409": {"description": "mentor at capacity"}}},
            "delete": {"tags": ["admin"], "summary": "Снять ментора", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "team"}}}
        },
        "/admin/teams/{teamID}/submissions/{round}/status": {"put": {"tags": ["admin"], "summary": "Сменить статус заявки", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "submission"}}}},
        "/admin/mentors": {
            "get": {"tags": ["admin"], "summary": "Менторы", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "mentors with team counts"}}},
            "post": {"tags": ["admin"], "summary": "Создать ментора", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}}}
        },
        "/admin/mentors/auto-assign": {"post": {"tags": ["admin"], "summary": "Распределить менторов", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "assigned and unassigned teams"}}}},
        "/admin/leaderboard": {"put": {"tags": ["admin"], "summary": "Заменить таблицу лидеров", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "leaderboard"}, "422": {"description": "scores out of range"}}}},
        "/admin/leaderboard/import": {"post": {"tags": ["admin"], "summary": "Импорт таблицы лидеров", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "leaderboard"}, "422": {"description": "missing columns"}}}},
        "/admin/analytics": {"get": {"tags": ["admin"], "summary": "Сводная статистика", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "stats"}}}},
        "/judge/teams": {"get": {"tags": ["judge"], "summary": "Активные команды", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "teams"}}}},
        "/judge/teams/{teamID}/submissions/{round}/review": {"put": {"tags": ["judge"], "summary": "Оценить заявку", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "submission"}, "404": {"description": "no submission for round"}}}},
        "/mentor/teams": {"get": {"tags": ["mentor"], "summary": "Мои команды", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "teams"}}}},
        "/mentor/teams/{teamID}/feedback": {
            "get": {"tags": ["mentor"], "summary": "Отзывы команды", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "feedback"}}},
            "post": {"tags": ["mentor"], "summary": "Оставить отзыв", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "feedback"}, "403": {"description": "not your team"}}}
        },
        "/team/dashboard": {"get": {"tags": ["team"], "summary": "Дашборд команды", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "dashboard"}}}},
        "/team/notifications": {"get": {"tags": ["team"], "summary": "Уведомления", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "notifications"}}}},
        "/team/notifications/read-all": {"post": {"tags": ["team"], "summary": "Прочитать все", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "count"}, "503": {"description": "read-state unavailable"}}}},
        "/team/notifications/{notificationID}/read": {"post": {"tags": ["team"], "summary": "Прочитать уведомление", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "marked"}, "404": {"description": "unknown notification"}}}},
        "/team/submissions/{round}": {"post": {"tags": ["team"], "summary": "Загрузить файлы раунда", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "submission"}, "409": {"description": "round closed"}}}},
        "/team/feedback": {"get": {"tags": ["team"], "summary": "Отзывы о команде", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "feedback"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Hackathon Portal API",
	Description:      "Команды, заявки по раундам, менторы, таблица лидеров и уведомления.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
