// Package docs содержит описание HTTP API в формате Swagger 2.0 для /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Регистрация",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/register.Request"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Вход",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.AuthResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Текущий пользователь",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.MeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/auth/refresh": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Обновление токена",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Выход",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/auth/change-password": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Смена пароля",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/changepassword.Request"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/auth/forgot-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Запрос кода восстановления пароля",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/forgotpassword.Request"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/auth/verify-reset-code": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Проверка кода восстановления",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/verifyresetcode.Request"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.ResetTokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/auth/reset-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Сброс пароля",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/resetpassword.Request"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/account/user/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Профиль",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Изменение профиля",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Удаление учётной записи",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/account/user/me/deactivate": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["account"],
                "summary": "Деактивация учётной записи",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/cards": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cards"],
                "summary": "Список карт",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.CardsResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cards"],
                "summary": "Добавление карты",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.CardResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/cards/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["cards"],
                "summary": "Удаление карты",
                "parameters": [{"type": "integer", "in": "path", "name": "id", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/locations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "Список адресов",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.LocationsResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "Добавление адреса",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.LocationResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/orders": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Список заказов",
                "parameters": [
                    {"type": "integer", "in": "query", "name": "limit"},
                    {"type": "integer", "in": "query", "name": "offset"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.OrdersResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Оформление заказа",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.OrderResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/admin/users": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Список пользователей",
                "parameters": [
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "role", "type": "string", "enum": ["USER", "ADMIN", "BUSINESS"]},
                    {"in": "query", "name": "isActive", "type": "boolean"},
                    {"in": "query", "name": "sortBy", "type": "string"},
                    {"in": "query", "name": "order", "type": "string", "enum": ["asc", "desc"]},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "offset", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.UsersResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/admin/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Пользователь по id",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.UserResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Изменение пользователя",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/updateuser.Request"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.UserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Удаление пользователя",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/admin/stats/system": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Сводка по пользователям",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.StatsResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/health": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Состояние сервиса", "responses": {"200": {"description": "OK"}}}
        },
        "/api/health/database": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Состояние базы данных", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/health/ping": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Ping", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "response.Response": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "message": {"type": "string", "example": "invalid request body"}
            }
        },
        "response.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "city": {"type": "string"},
                "address": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "avatarUrl": {"type": "string"},
                "companyName": {"type": "string"},
                "bin": {"type": "string"},
                "role": {"type": "string", "enum": ["USER", "ADMIN", "BUSINESS"]},
                "balance": {"type": "number"},
                "isActive": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "response.AuthResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/response.User"}
            }
        },
        "response.TokenResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "token": {"type": "string"}}
        },
        "response.MeResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "user": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "string"},
                        "email": {"type": "string"},
                        "role": {"type": "string"},
                        "isActive": {"type": "boolean"}
                    }
                }
            }
        },
        "response.UserResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "user": {"$ref": "#/definitions/response.User"}}
        },
        "response.Card": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "last4": {"type": "string"},
                "maskedNumber": {"type": "string"},
                "cardHolderName": {"type": "string"},
                "expiryMonth": {"type": "string"},
                "expiryYear": {"type": "string"},
                "cardType": {"type": "string"},
                "isDefault": {"type": "boolean"},
                "createdAt": {"type": "string"}
            }
        },
        "response.CardResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "card": {"$ref": "#/definitions/response.Card"}}
        },
        "response.CardsResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "cards": {"type": "array", "items": {"$ref": "#/definitions/response.Card"}}}
        },
        "response.Location": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "label": {"type": "string"},
                "address": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "createdAt": {"type": "string"}
            }
        },
        "response.LocationResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "location": {"$ref": "#/definitions/response.Location"}}
        },
        "response.LocationsResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "locations": {"type": "array", "items": {"$ref": "#/definitions/response.Location"}}}
        },
        "models.OrderItem": {
            "type": "object",
            "properties": {"name": {"type": "string"}, "quantity": {"type": "integer"}, "price": {"type": "number"}}
        },
        "response.Order": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "restaurantName": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.OrderItem"}},
                "deliveryAddress": {"type": "string"},
                "total": {"type": "number"},
                "status": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "response.OrderResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "order": {"$ref": "#/definitions/response.Order"}}
        },
        "response.OrdersResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "orders": {"type": "array", "items": {"$ref": "#/definitions/response.Order"}}}
        },
        "register.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "confirmPassword": {"type": "string"},
                "phone": {"type": "string"},
                "city": {"type": "string"}
            }
        },
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "response.ResetTokenResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}, "resetToken": {"type": "string"}, "expiresIn": {"type": "integer", "example": 900}}
        },
        "response.Pagination": {
            "type": "object",
            "properties": {"total": {"type": "integer"}, "limit": {"type": "integer"}, "offset": {"type": "integer"}}
        },
        "response.UsersResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "users": {"type": "array", "items": {"$ref": "#/definitions/response.User"}},
                "pagination": {"$ref": "#/definitions/response.Pagination"}
            }
        },
        "response.RoleStat": {
            "type": "object",
            "properties": {"role": {"type": "string"}, "total": {"type": "integer"}, "active": {"type": "integer"}}
        },
        "response.StatsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "totalUsers": {"type": "integer"},
                "activeUsers": {"type": "integer"},
                "roles": {"type": "array", "items": {"$ref": "#/definitions/response.RoleStat"}}
            }
        },
        "forgotpassword.Request": {
            "type": "object",
            "required": ["email"],
            "properties": {"email": {"type": "string"}}
        },
        "verifyresetcode.Request": {
            "type": "object",
            "required": ["email", "code"],
            "properties": {"email": {"type": "string"}, "code": {"type": "string", "example": "042517"}}
        },
        "resetpassword.Request": {
            "type": "object",
            "required": ["resetToken", "newPassword", "confirmPassword"],
            "properties": {
                "resetToken": {"type": "string"},
                "newPassword": {"type": "string"},
                "confirmPassword": {"type": "string"}
            }
        },
        "updateuser.Request": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "city": {"type": "string"},
                "role": {"type": "string", "enum": ["USER", "ADMIN", "BUSINESS"]},
                "isActive": {"type": "boolean"}
            }
        },
        "changepassword.Request": {
            "type": "object",
            "required": ["currentPassword", "newPassword", "confirmPassword"],
            "properties": {
                "currentPassword": {"type": "string"},
                "newPassword": {"type": "string"},
                "confirmPassword": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo сведения об API для шаблона.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Foodshare API",
	Description:      "Регистрация, вход и ресурсы пользователя платформы foodshare",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
