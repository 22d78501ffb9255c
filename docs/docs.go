// Package docs registers the OpenAPI description served at /swagger.
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
		"/api/register": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Register a new user",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.authResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.registerRequest"
						}
					}
				]
			}
		},
		"/api/login": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Login",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.authResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.loginRequest"
						}
					}
				]
			}
		},
		"/api/user": {
			"get": {
				"tags": [
					"auth"
				],
				"summary": "Current user",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.userResponse"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"patch": {
				"tags": [
					"auth"
				],
				"summary": "Update profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.userResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.updateProfileRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/user/role": {
			"post": {
				"tags": [
					"auth"
				],
				"summary": "Choose role",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.userResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.chooseRoleRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/care-requests": {
			"get": {
				"tags": [
					"care-requests"
				],
				"summary": "List the caller's care requests",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.careRequestListResponse"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"post": {
				"tags": [
					"care-requests"
				],
				"summary": "Open a care request",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.careRequestResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "string",
						"description": "Idempotency key to prevent duplicate submissions",
						"name": "Idempotency-Key",
						"in": "header"
					},
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.createCareRequestRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/care-requests/{id}": {
			"get": {
				"tags": [
					"care-requests"
				],
				"summary": "Get a care request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.careRequestResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Care request id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			},
			"patch": {
				"tags": [
					"care-requests"
				],
				"summary": "Edit a care request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.careRequestResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"422": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Care request id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.editCareRequestRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/care-requests/{id}/match": {
			"post": {
				"tags": [
					"care-requests"
				],
				"summary": "Match a provider to a pending request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.careRequestResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Care request id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.matchRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/care-requests/{id}/respond": {
			"post": {
				"tags": [
					"care-requests"
				],
				"summary": "Accept or decline a match",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.careRequestResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Care request id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.respondRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/care-requests/{id}/cancel": {
			"post": {
				"tags": [
					"care-requests"
				],
				"summary": "Cancel a care request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.careRequestResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Care request id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/care-requests/{id}/complete": {
			"post": {
				"tags": [
					"care-requests"
				],
				"summary": "Mark an accepted request as completed",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.careRequestResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "Care request id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/providers": {
			"get": {
				"tags": [
					"providers"
				],
				"summary": "List online providers",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.availableProvidersResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "number",
						"description": "Reference latitude",
						"name": "lat",
						"in": "query"
					},
					{
						"type": "number",
						"description": "Reference longitude",
						"name": "lon",
						"in": "query"
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/api/provider-status": {
			"post": {
				"tags": [
					"providers"
				],
				"summary": "Set own availability",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/handler.providerStatusResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"in": "body",
						"name": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/handler.providerStatusRequest"
						}
					}
				],
				"security": [
					{
						"BearerAuth": []
					}
				]
			}
		},
		"/ws": {
			"get": {
				"tags": [
					"realtime"
				],
				"summary": "Open the realtime channel",
				"parameters": [
					{
						"type": "string",
						"description": "JWT issued by /api/login",
						"name": "token",
						"in": "query",
						"required": true
					}
				],
				"responses": {
					"101": {
						"description": "Switching Protocols"
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/handler.errorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"handler.errorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				}
			}
		},
		"handler.registerRequest": {
			"type": "object",
			"required": [
				"username",
				"password"
			],
			"properties": {
				"username": {
					"type": "string"
				},
				"password": {
					"type": "string"
				},
				"displayName": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"phoneNumber": {
					"type": "string"
				}
			}
		},
		"handler.loginRequest": {
			"type": "object",
			"required": [
				"username",
				"password"
			],
			"properties": {
				"username": {
					"type": "string"
				},
				"password": {
					"type": "string"
				}
			}
		},
		"handler.chooseRoleRequest": {
			"type": "object",
			"required": [
				"role"
			],
			"properties": {
				"role": {
					"type": "string",
					"enum": [
						"SEEKER",
						"PROVIDER"
					]
				}
			}
		},
		"handler.updateProfileRequest": {
			"type": "object",
			"properties": {
				"displayName": {
					"type": "string"
				},
				"bio": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"phoneNumber": {
					"type": "string"
				},
				"hourlyRate": {
					"type": "number"
				}
			}
		},
		"handler.userResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"username": {
					"type": "string"
				},
				"role": {
					"type": "string"
				},
				"displayName": {
					"type": "string"
				},
				"email": {
					"type": "string"
				},
				"phoneNumber": {
					"type": "string"
				},
				"isVerified": {
					"type": "boolean"
				},
				"rating": {
					"type": "number"
				},
				"totalReviews": {
					"type": "integer"
				},
				"hourlyRate": {
					"type": "number"
				},
				"bio": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				}
			}
		},
		"handler.authResponse": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/handler.userResponse"
				}
			}
		},
		"handler.coordinates": {
			"type": "object",
			"properties": {
				"lat": {
					"type": "number"
				},
				"lon": {
					"type": "number"
				}
			}
		},
		"handler.createCareRequestRequest": {
			"type": "object",
			"required": [
				"description"
			],
			"properties": {
				"description": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"coordinates": {
					"$ref": "#/definitions/handler.coordinates"
				},
				"durationMinutes": {
					"type": "integer"
				},
				"scheduledFor": {
					"type": "string"
				}
			}
		},
		"handler.editCareRequestRequest": {
			"type": "object",
			"properties": {
				"description": {
					"type": "string"
				},
				"location": {
					"type": "string"
				},
				"coordinates": {
					"$ref": "#/definitions/handler.coordinates"
				},
				"durationMinutes": {
					"type": "integer"
				},
				"scheduledFor": {
					"type": "string"
				}
			}
		},
		"handler.matchRequest": {
			"type": "object",
			"required": [
				"providerId"
			],
			"properties": {
				"providerId": {
					"type": "integer"
				}
			}
		},
		"handler.respondRequest": {
			"type": "object",
			"required": [
				"decision"
			],
			"properties": {
				"decision": {
					"type": "string",
					"enum": [
						"ACCEPT",
						"DECLINE"
					]
				}
			}
		},
		"handler.careRequestResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"seekerId": {
					"type": "integer"
				},
				"providerId": {
					"type": "integer"
				},
				"description": {
					"type": "string"
				},
				"summary": {
					"type": "string"
				},
				"tags": {
					"type": "array",
					"items": {
						"type": "string"
					}
				},
				"status": {
					"type": "string",
					"enum": [
						"PENDING",
						"MATCHED",
						"ACCEPTED",
						"DECLINED",
						"COMPLETED",
						"CANCELLED"
					]
				},
				"durationMinutes": {
					"type": "integer"
				},
				"estimatedCost": {
					"type": "number"
				},
				"location": {
					"type": "string"
				},
				"coordinates": {
					"$ref": "#/definitions/handler.coordinates"
				},
				"scheduledFor": {
					"type": "string"
				},
				"createdAt": {
					"type": "string"
				},
				"updatedAt": {
					"type": "string"
				}
			}
		},
		"handler.careRequestListResponse": {
			"type": "object",
			"properties": {
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/handler.careRequestResponse"
					}
				},
				"count": {
					"type": "integer"
				}
			}
		},
		"handler.providerStatusRequest": {
			"type": "object",
			"required": [
				"isOnline"
			],
			"properties": {
				"isOnline": {
					"type": "boolean"
				},
				"lat": {
					"type": "number"
				},
				"lon": {
					"type": "number"
				}
			}
		},
		"handler.providerStatusResponse": {
			"type": "object",
			"properties": {
				"userId": {
					"type": "integer"
				},
				"isOnline": {
					"type": "boolean"
				},
				"location": {
					"$ref": "#/definitions/handler.coordinates"
				},
				"lastUpdated": {
					"type": "string"
				}
			}
		},
		"handler.availableProviderResponse": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"displayName": {
					"type": "string"
				},
				"bio": {
					"type": "string"
				},
				"isVerified": {
					"type": "boolean"
				},
				"rating": {
					"type": "number"
				},
				"totalReviews": {
					"type": "integer"
				},
				"hourlyRate": {
					"type": "number"
				},
				"location": {
					"$ref": "#/definitions/handler.coordinates"
				},
				"lastUpdated": {
					"type": "string"
				},
				"distance": {
					"type": "number"
				}
			}
		},
		"handler.availableProvidersResponse": {
			"type": "object",
			"properties": {
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/handler.availableProviderResponse"
					}
				},
				"count": {
					"type": "integer"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:		  "1.0",
	Host:			 "",
	BasePath:		 "/",
	Schemes:		  []string{},
	Title:			"CareNeighbour API",
	Description:	  "Matches care seekers with nearby providers and pushes lifecycle updates over a websocket.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:		"{{",
	RightDelim:	   "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
