// Package docs registers the OpenAPI description of the order HTTP API
// served under /swagger.
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
    "security": [{"BearerAuth": []}],
    "paths": {
        "/order": {
            "get": {
                "summary": "List own orders, newest first",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "orders"}, "401": {"description": "unauthorized"}}
            },
            "post": {
                "summary": "Create an order from a cart",
                "consumes": ["application/json", "multipart/form-data"],
                "parameters": [
                    {"name": "Idempotency-Key", "in": "header", "type": "string"},
                    {"name": "body", "in": "body", "schema": {"$ref": "#/definitions/CreateOrderRequest"}}
                ],
                "responses": {
                    "200": {"description": "replayed order"},
                    "201": {"description": "created order"},
                    "400": {"description": "validation error"},
                    "409": {"description": "request with this key in flight"}
                }
            }
        },
        "/order/last": {
            "get": {
                "summary": "Most recent own order with items",
                "responses": {"200": {"description": "order"}, "404": {"description": "no orders found"}}
            }
        },
        "/order/{id}": {
            "get": {
                "summary": "Own order with items",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "order"}, "404": {"description": "not found"}}
            }
        },
        "/order/pay/{id}": {
            "post": {
                "summary": "Pay own order",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "paid order"}, "404": {"description": "not found"}, "409": {"description": "already paid"}}
            }
        },
        "/order/complete/{id}": {
            "put": {
                "summary": "Mark own order completed",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "completed order"}, "404": {"description": "not found"}, "409": {"description": "already completed"}}
            }
        },
        "/order/admin": {
            "get": {
                "summary": "List all orders",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "orders"}, "403": {"description": "forbidden"}}
            }
        },
        "/order/admin/{id}": {
            "get": {
                "summary": "Order with items and customer email",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "order"}, "404": {"description": "not found"}}
            }
        },
        "/order/admin/confirm/{id}": {
            "put": {
                "summary": "Confirm an order",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "confirmed order"}, "404": {"description": "not found"}, "409": {"description": "already confirmed (strict mode)"}}
            }
        },
        "/order/admin/cancel/{id}": {
            "put": {
                "summary": "Cancel an order",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "cancelled order"}, "404": {"description": "not found"}, "409": {"description": "already cancelled (strict mode)"}}
            }
        },
        "/order/admin/pay/{id}": {
            "post": {
                "summary": "Record payment as admin",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "paid order"}, "404": {"description": "not found"}, "409": {"description": "already paid"}}
            }
        }
    },
    "definitions": {
        "CreateOrderItem": {
            "type": "object",
            "required": ["product_id", "name", "category", "quantity", "unit_price"],
            "properties": {
                "product_id": {"type": "string"},
                "name": {"type": "string"},
                "category": {"type": "string"},
                "quantity": {"type": "integer", "minimum": 1, "maximum": 2147483647},
                "unit_price": {"type": "string", "description": "non-negative, at most two decimal places"}
            }
        },
        "CreateOrderRequest": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/CreateOrderItem"}},
                "shipping_address": {"type": "string"},
                "payment_method": {"type": "string", "enum": ["delivery", "pickup"]}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Storefront order API",
	Description:      "Order creation, pricing and lifecycle transitions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
