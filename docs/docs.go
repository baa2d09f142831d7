// Package docs registers the swagger document served at /swagger.
// Keep it in step with the handler annotations when routes change.
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
        "/calls": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Calls"],
                "summary": "Start a standup call",
                "parameters": [
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/call.StartCallRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/call.StartCallResponse"}},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Team not found"},
                    "409": {"description": "No active sprint"},
                    "429": {"description": "Too many calls in progress"}
                }
            }
        },
        "/calls/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Calls"],
                "summary": "Get call",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/call.CallResponse"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/calls/{id}/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Calls"],
                "summary": "Get call summary",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/calls/{id}/state/{key}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Calls"],
                "summary": "Get raw call state",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"enum": ["status", "phase", "call_results", "overall_summary", "status_report", "mom", "egress", "room_events"], "type": "string", "name": "key", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Unknown key"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/teams/{team}/attendance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Teams"],
                "summary": "List attendance records",
                "parameters": [{"type": "string", "name": "team", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/call.AttendanceListResponse"}}
                }
            }
        },
        "/hooks/livekit": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Hooks"],
                "summary": "LiveKit webhook",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid signature"}
                }
            }
        },
        "/hooks/trigger": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Hooks"],
                "summary": "Scheduler trigger",
                "parameters": [
                    {"type": "string", "name": "X-Standup-Signature", "in": "header", "required": true},
                    {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/call.TriggerRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/call.StartCallResponse"}},
                    "401": {"description": "Invalid signature"}
                }
            }
        }
    },
    "definitions": {
        "call.StartCallRequest": {
            "type": "object",
            "required": ["team"],
            "properties": {
                "team": {"type": "string"},
                "aggressiveness": {"type": "integer", "minimum": 1, "maximum": 10}
            }
        },
        "call.TriggerRequest": {
            "type": "object",
            "required": ["team"],
            "properties": {
                "team": {"type": "string"},
                "aggressiveness": {"type": "integer", "minimum": 1, "maximum": 10},
                "scheduled_for": {"type": "string"}
            }
        },
        "call.StartCallResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string"},
                "room_name": {"type": "string"},
                "status_url": {"type": "string"}
            }
        },
        "call.CallResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "team": {"type": "string"},
                "project": {"type": "string"},
                "sprint_name": {"type": "string"},
                "room_name": {"type": "string"},
                "participants": {"type": "array", "items": {"type": "string"}},
                "aggressiveness": {"type": "integer"},
                "status": {"type": "string"},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "completed_at": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "call.AttendanceListResponse": {
            "type": "object",
            "properties": {
                "team": {"type": "string"},
                "records": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "name": {"type": "string"},
                            "consecutive_misses": {"type": "integer"},
                            "last_attendance": {"type": "string"},
                            "last_missed_at": {"type": "string"},
                            "action_required": {"type": "boolean"},
                            "suggested_action": {"type": "string"}
                        }
                    }
                }
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

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Standup Assistant API",
	Description:      "Starts AI-run daily standup calls and exposes their results.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
