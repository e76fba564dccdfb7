// Package swagger holds the API documents served under /swagger by each service.
package swagger

import "github.com/swaggo/swag"

const ordersTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/delivery-events": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Create a delivery event",
                "parameters": [
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Event",
                        "schema": {
                            "$ref": "#/definitions/catalog.DeliveryEventRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.DeliveryEvent"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/items": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "The acting profile becomes the owner.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Create an item",
                "parameters": [
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Item",
                        "schema": {
                            "$ref": "#/definitions/catalog.CreateItemRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.Item"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/items/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Get an item",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Item ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.Item"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "Item not found",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/items/{id}/active": {
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Owner only.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Activate or deactivate an item",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Item ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Active flag",
                        "schema": {
                            "$ref": "#/definitions/catalog.SetActiveRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.Item"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Not the owner",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Item not found",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/options/default": {
            "put": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Used for items without their own options.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Set default item options",
                "parameters": [
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Options",
                        "schema": {
                            "$ref": "#/definitions/catalog.ItemOptions"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.ItemOptions"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "List orders",
                "parameters": [
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "role",
                        "in": "query",
                        "required": false,
                        "description": "any, buyer or seller",
                        "type": "string"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "description": "Order status",
                        "type": "string"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "description": "Page size, at most 100",
                        "type": "integer"
                    },
                    {
                        "name": "offset",
                        "in": "query",
                        "required": false,
                        "description": "Offset",
                        "type": "integer"
                    },
                    {
                        "name": "sort",
                        "in": "query",
                        "required": false,
                        "description": "asc or desc by creation time",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.OrderListResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Prices the requested items, reserves stock and opens the order for the acting buyer profile",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Create an order",
                "parameters": [
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false,
                        "description": "Replays the first response for the same key",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Order creation request",
                        "schema": {
                            "$ref": "#/definitions/orders.CreateOrderRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Order created",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Items can not be ordered together",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Items missing or inactive",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/webhook/confirm-payment": {
            "post": {
                "description": "Verifies the Stripe-Signature header and marks the order in metadata.order_id paid",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "webhooks"
                ],
                "summary": "Payment gateway webhook",
                "parameters": [
                    {
                        "name": "Stripe-Signature",
                        "in": "header",
                        "required": true,
                        "description": "t=<unix>,v1=<hmac>",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/SuccessResponse"
                        }
                    },
                    "401": {
                        "description": "Bad signature",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Participants only",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Get an order",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Not a participant",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Order not found",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/accept": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Seller only. Payment details default to the accepted option matching the buyer's choice.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Accept an order",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "description": "Payment details and delivery date",
                        "schema": {
                            "$ref": "#/definitions/orders.AcceptOrderRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "409": {
                        "description": "Order is not pending",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/buyer-delivery-confirmed": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Buyer confirms delivery",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Not the buyer",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Not accepted or already confirmed",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/buyer-payment-confirmed": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Does not mark the order paid.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Buyer confirms payment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Not the buyer",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Not accepted or already confirmed",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/cancel": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Buyer or seller. Releases the reserved stock.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Cancel an order",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Not a participant",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Order is finalized",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/checkout": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Buyer only. Creates a payment intent once; later calls return the same intent.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Check out an order",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "Idempotency-Key",
                        "in": "header",
                        "required": false,
                        "description": "Replays the first response for the same key",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.CheckoutResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "409": {
                        "description": "Order not payable",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "502": {
                        "description": "Payment gateway failure",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/delivery-date": {
            "patch": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Move the delivery date",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "RFC 3339 or YYYY-MM-DD",
                        "schema": {
                            "$ref": "#/definitions/orders.DeliveryDateRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid date",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Not the seller",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/reject": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Seller only. Reserved stock stays with the order.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Reject an order",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Not the seller",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Order is not pending",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/seller-delivery-confirmed": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Seller confirms delivery",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Not the seller",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Not accepted or already confirmed",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/orders/{id}/seller-payment-confirmed": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Marks the order paid.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "orders"
                ],
                "summary": "Seller confirms payment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Order ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/orders.Order"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "401": {
                        "description": "Not the seller",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Not accepted or already confirmed",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/pickup-locations": {
            "post": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Create a pickup location",
                "parameters": [
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "description": "Location",
                        "schema": {
                            "$ref": "#/definitions/catalog.PickupLocationRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.PickupLocation"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/sellers/{id}/delivery-events": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "List a seller's delivery events",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Seller profile ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/catalog.DeliveryEvent"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/sellers/{id}/items": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "description": "Inactive items are only listed for their owner.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "List a seller's items",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Seller profile ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "required": false,
                        "description": "Page size",
                        "type": "integer"
                    },
                    {
                        "name": "offset",
                        "in": "query",
                        "required": false,
                        "description": "Offset",
                        "type": "integer"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/catalog.Item"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        },
        "/api/v1/sellers/{id}/options": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "Get a seller's default item options",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Seller profile ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/catalog.ItemOptions"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "404": {
                        "description": "No default options",
                        "schema": {
                            "$ref": "#/definitions/errors.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/v1/sellers/{id}/pickup-locations": {
            "get": {
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "catalog"
                ],
                "summary": "List a seller's pickup locations",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "description": "Seller profile ID",
                        "type": "string"
                    },
                    {
                        "name": "X-Profile-ID",
                        "in": "header",
                        "required": true,
                        "description": "Acting profile",
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/SuccessResponse"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/catalog.PickupLocation"
                                            }
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "SuccessResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "trace_id": {
                    "type": "string"
                }
            }
        },
        "catalog.CreateItemRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "price": {
                    "type": "string",
                    "example": "12.50"
                },
                "discount_brackets": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/catalog.DiscountBracket"
                    }
                },
                "use_in_stock": {
                    "type": "boolean"
                },
                "in_stock": {
                    "type": "integer"
                },
                "item_options": {
                    "$ref": "#/definitions/catalog.ItemOptions"
                }
            },
            "required": [
                "name"
            ]
        },
        "catalog.DeliveryEvent": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "owner_profile_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "title": {
                    "type": "string"
                },
                "starts_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "catalog.DeliveryEventRequest": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "starts_at": {
                    "type": "string",
                    "format": "date-time"
                }
            },
            "required": [
                "title",
                "starts_at"
            ]
        },
        "catalog.DiscountBracket": {
            "type": "object",
            "properties": {
                "minimum_quantity": {
                    "type": "integer"
                },
                "price": {
                    "type": "string",
                    "example": "12.50"
                }
            }
        },
        "catalog.Item": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "owner_profile_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "name": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "price": {
                    "type": "string",
                    "example": "12.50"
                },
                "discount_brackets": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/catalog.DiscountBracket"
                    }
                },
                "in_stock": {
                    "type": "integer"
                },
                "sold": {
                    "type": "integer"
                },
                "use_in_stock": {
                    "type": "boolean"
                },
                "active": {
                    "type": "boolean"
                },
                "item_options": {
                    "$ref": "#/definitions/catalog.ItemOptions"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "catalog.ItemOptions": {
            "type": "object",
            "properties": {
                "accepted_payment_options": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/catalog.PaymentOption"
                    }
                },
                "shipping_options": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/catalog.ShippingOption"
                    }
                },
                "require_accept": {
                    "type": "boolean"
                },
                "base_currency": {
                    "type": "string"
                },
                "home_delivery_price": {
                    "type": "string",
                    "example": "12.50"
                }
            }
        },
        "catalog.PaymentOption": {
            "type": "object",
            "properties": {
                "kind": {
                    "type": "string"
                },
                "details": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                }
            }
        },
        "catalog.PickupLocation": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "owner_profile_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "label": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "catalog.PickupLocationRequest": {
            "type": "object",
            "properties": {
                "label": {
                    "type": "string"
                },
                "address": {
                    "type": "string"
                }
            },
            "required": [
                "label",
                "address"
            ]
        },
        "catalog.SetActiveRequest": {
            "type": "object",
            "properties": {
                "active": {
                    "type": "boolean"
                }
            },
            "required": [
                "active"
            ]
        },
        "catalog.ShippingOption": {
            "type": "object",
            "properties": {
                "label": {
                    "type": "string"
                },
                "price": {
                    "type": "string",
                    "example": "12.50"
                }
            }
        },
        "errors.ErrorBody": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "details": {}
            }
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "$ref": "#/definitions/errors.ErrorBody"
                },
                "trace_id": {
                    "type": "string"
                }
            }
        },
        "orders.AcceptOrderRequest": {
            "type": "object",
            "properties": {
                "payment_details": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "estimated_delivery_date": {
                    "type": "string"
                }
            }
        },
        "orders.CheckoutResponse": {
            "type": "object",
            "properties": {
                "order": {
                    "$ref": "#/definitions/orders.Order"
                },
                "payment": {
                    "$ref": "#/definitions/orders.PaymentIntent"
                }
            }
        },
        "orders.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/orders.OrderItemRequest"
                    }
                },
                "payment_option": {
                    "type": "string"
                },
                "shipping_label": {
                    "type": "string"
                },
                "home_delivery": {
                    "type": "boolean"
                },
                "delivery_event_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "pickup_location_id": {
                    "type": "string",
                    "format": "uuid"
                }
            }
        },
        "orders.DeliveryDateRequest": {
            "type": "object",
            "properties": {
                "estimated_delivery_date": {
                    "type": "string"
                }
            },
            "required": [
                "estimated_delivery_date"
            ]
        },
        "orders.LineItem": {
            "type": "object",
            "properties": {
                "item": {
                    "$ref": "#/definitions/catalog.Item"
                },
                "quantity": {
                    "type": "integer"
                },
                "unit_price": {
                    "type": "string",
                    "example": "12.50"
                },
                "line_total": {
                    "type": "string",
                    "example": "12.50"
                }
            }
        },
        "orders.Order": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string",
                    "format": "uuid"
                },
                "buyer_profile_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "seller_profile_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/orders.LineItem"
                    }
                },
                "items_price_total": {
                    "type": "string",
                    "example": "12.50"
                },
                "shipping_price": {
                    "type": "string",
                    "example": "12.50"
                },
                "home_delivery_price": {
                    "type": "string",
                    "example": "12.50"
                },
                "transaction_fee": {
                    "type": "string",
                    "example": "12.50"
                },
                "total_price": {
                    "type": "string",
                    "example": "12.50"
                },
                "base_currency": {
                    "type": "string"
                },
                "shipping_selected": {
                    "type": "string"
                },
                "home_delivery": {
                    "type": "boolean"
                },
                "payment_option_selected": {
                    "type": "string"
                },
                "payment_details": {
                    "$ref": "#/definitions/catalog.PaymentOption"
                },
                "status": {
                    "type": "string"
                },
                "require_accept": {
                    "type": "boolean"
                },
                "paid": {
                    "type": "boolean"
                },
                "finalized": {
                    "type": "boolean"
                },
                "seller_confirmed_delivery": {
                    "type": "boolean"
                },
                "buyer_confirmed_delivery": {
                    "type": "boolean"
                },
                "seller_confirmed_payment": {
                    "type": "boolean"
                },
                "buyer_confirmed_payment": {
                    "type": "boolean"
                },
                "has_review": {
                    "type": "boolean"
                },
                "is_escrow": {
                    "type": "boolean"
                },
                "estimated_delivery_date": {
                    "type": "string",
                    "format": "date-time"
                },
                "transaction_data_external": {
                    "$ref": "#/definitions/orders.PaymentIntent"
                },
                "delivery_event_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "pickup_location_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "updated_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "orders.OrderItemRequest": {
            "type": "object",
            "properties": {
                "item_id": {
                    "type": "string",
                    "format": "uuid"
                },
                "quantity": {
                    "type": "integer"
                }
            }
        },
        "orders.OrderListResponse": {
            "type": "object",
            "properties": {
                "orders": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/orders.Order"
                    }
                },
                "total": {
                    "type": "integer"
                },
                "limit": {
                    "type": "integer"
                },
                "offset": {
                    "type": "integer"
                }
            }
        },
        "orders.PaymentIntent": {
            "type": "object",
            "properties": {
                "payment_intent_id": {
                    "type": "string"
                },
                "client_secret": {
                    "type": "string"
                },
                "customer_id": {
                    "type": "string"
                },
                "ephemeral_key": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// OrdersInfo describes the orders API. Keep it in step with the handler annotations.
var OrdersInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8082",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Market Orders API",
	Description:      "Catalog and order lifecycle for multi-profile marketplaces",
	InfoInstanceName: "orders",
	SwaggerTemplate:  ordersTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(OrdersInfo.InstanceName(), OrdersInfo)
}
