// Package swagger holds the OpenAPI document served at /swagger/.
package swagger

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
    "paths": {
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/orders": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Register an order",
                "parameters": [
                    {"name": "order", "in": "body", "required": true, "schema": {"$ref": "#/definitions/web.CreateOrderRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/web.CreateOrderRequest"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/web.errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/web.errorResponse"}}
                }
            }
        },
        "/api/orders/{id}/pay": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Submit a tokenized card payment",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "bundle", "in": "body", "required": true, "schema": {"$ref": "#/definitions/web.PayRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.Result"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/web.errorResponse"}}
                }
            }
        },
        "/api/orders/{id}/notices": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "summary": "List user notices for an order",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.NoticesResponse"}}
                }
            }
        },
        "/api/subscriptions/{id}/cancelled": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "summary": "Propagate a subscription cancellation",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.errorResponse"}}
                }
            }
        },
        "/api/features/{feature}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "summary": "Query gateway feature support",
                "parameters": [
                    {"name": "feature", "in": "path", "type": "string", "required": true},
                    {"name": "subscription_id", "in": "query", "type": "string", "required": true},
                    {"name": "default", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.FeatureSupportResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "app.Result": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string", "enum": ["success", "fail"]},
                "redirect": {"type": "string"}
            }
        },
        "web.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "number": {"type": "string"},
                "user_id": {"type": "string"},
                "email": {"type": "string"},
                "currency": {"type": "string"},
                "total": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "customer": {"$ref": "#/definitions/web.CustomerRequest"},
                "subscription": {"$ref": "#/definitions/web.SubscriptionRequest"}
            }
        },
        "web.CustomerRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "zip": {"type": "string"},
                "country": {"type": "string"},
                "registered_at": {"type": "string", "format": "date-time"}
            }
        },
        "web.SubscriptionRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "period": {"type": "string", "enum": ["day", "week", "month", "year"]},
                "interval": {"type": "integer"},
                "recurring_total": {"type": "integer"},
                "trial_period": {"type": "string"},
                "trial_end": {"type": "string", "format": "date-time"},
                "payment_method": {"type": "string"}
            }
        },
        "web.PayRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "fingerprint": {"type": "string"}
            }
        },
        "web.NoticesResponse": {
            "type": "object",
            "properties": {
                "notices": {"type": "array", "items": {"type": "string"}}
            }
        },
        "web.FeatureSupportResponse": {
            "type": "object",
            "properties": {
                "feature": {"type": "string"},
                "supported": {"type": "boolean"}
            }
        },
        "web.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Brickgate API",
	Description:      "Tokenized-card payment gateway adapter for Brick subscriptions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
