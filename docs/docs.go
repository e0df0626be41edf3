// Package docs registers the Swagger spec served at /swagger.
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
        "/activities": {
            "get": {
                "produces": ["application/json"],
                "summary": "List all activities",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "$ref": "#/definitions/activities.Activity"
                            }
                        }
                    }
                }
            }
        },
        "/activities/{name}/signup": {
            "post": {
                "produces": ["application/json"],
                "summary": "Sign a student up for an activity",
                "parameters": [
                    {"type": "string", "description": "Activity name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Student email", "name": "email", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/activities.SignupResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/activities/{name}/unregister/{email}": {
            "delete": {
                "produces": ["application/json"],
                "summary": "Remove a student from an activity",
                "parameters": [
                    {"type": "string", "description": "Activity name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Student email", "name": "email", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/activities.UnregisterResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "activities.Activity": {
            "type": "object",
            "properties": {
                "description": {"type": "string"},
                "max_participants": {"type": "integer"},
                "participants": {"type": "array", "items": {"type": "string"}},
                "schedule": {"type": "string"}
            }
        },
        "activities.SignupResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "activities.UnregisterResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {"detail": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Mergington High School Activities API",
	Description:      "Sign students up for extracurricular activities.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
