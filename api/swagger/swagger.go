package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "OpsDesk API",
        "description": "Calendar scheduling and reconciliation service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Events", "description": "Locally authored calendar events"},
        {"name": "Tasks", "description": "Task collection and completion"},
        {"name": "Agenda", "description": "Merged day view and aggregates"},
        {"name": "Grid", "description": "Week and month grid geometry"},
        {"name": "Integrations", "description": "External calendar bridge"},
        {"name": "Content", "description": "Content pipeline board"},
        {"name": "Slots", "description": "Grid slot drafts"},
        {"name": "Export", "description": "Agenda downloads"}
    ],
    "paths": {
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events on a date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Events"],
                "summary": "Patch event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete event",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks on a date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create task",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTaskRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tasks/{id}": {
            "get": {
                "tags": ["Tasks"],
                "summary": "Get task",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Tasks"],
                "summary": "Patch task",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTaskRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete task",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/tasks/{id}/toggle": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Flip completed flag",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/agenda": {
            "get": {
                "tags": ["Agenda"],
                "summary": "Merged agenda for a date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "include_completed", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/agenda/overdue": {
            "get": {
                "tags": ["Agenda"],
                "summary": "Overdue tasks relative to a date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/agenda/stats": {
            "get": {
                "tags": ["Agenda"],
                "summary": "Aggregate task statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/week": {
            "get": {
                "tags": ["Grid"],
                "summary": "Monday-first week around a date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/month": {
            "get": {
                "tags": ["Grid"],
                "summary": "Six-week month grid around a date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grid/hours": {
            "get": {
                "tags": ["Grid"],
                "summary": "Visible hour rows",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/integrations/calendar": {
            "get": {
                "tags": ["Integrations"],
                "summary": "Connection state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Integrations"],
                "summary": "Disconnect the calendar bridge",
                "responses": {
                    "204": {"description": "Disconnected"},
                    "412": {"description": "Not connected"}
                }
            }
        },
        "/integrations/calendar/connect": {
            "post": {
                "tags": ["Integrations"],
                "summary": "Connect an external calendar feed",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConnectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Connected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Feed unreachable"}
                }
            }
        },
        "/integrations/calendar/sync": {
            "post": {
                "tags": ["Integrations"],
                "summary": "Trigger a sync pass",
                "responses": {
                    "200": {"description": "Synced", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "202": {"description": "Dropped, a pass was already running"},
                    "412": {"description": "Not connected"},
                    "502": {"description": "Sync failed"}
                }
            }
        },
        "/content/board": {
            "get": {
                "tags": ["Content"],
                "summary": "Content items grouped by workflow status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/content/{id}/transition": {
            "post": {
                "tags": ["Content"],
                "summary": "Move a content item to another status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/slots/draft": {
            "post": {
                "tags": ["Slots"],
                "summary": "Pre-filled form payload for a grid slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SlotDraftRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/agenda": {
            "get": {
                "tags": ["Export"],
                "summary": "Download the agenda for a date",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        }
    },
    "definitions": {
        "CreateEventRequest": {
            "type": "object",
            "required": ["title", "start_date", "event_type"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_date": {"type": "string", "example": "2026-03-10"},
                "start_time": {"type": "string", "example": "09:30"},
                "duration_minutes": {"type": "integer"},
                "event_type": {"type": "string", "enum": ["meeting", "call", "deadline", "work-block", "note", "content"]},
                "color": {"type": "string"},
                "location": {"type": "string"},
                "content_status": {"type": "string", "enum": ["draft", "ready", "published"]},
                "content_channel": {"type": "string"},
                "content_asset_type": {"type": "string"}
            }
        },
        "UpdateEventRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_date": {"type": "string"},
                "start_time": {"type": "string"},
                "duration_minutes": {"type": "integer"},
                "event_type": {"type": "string"},
                "color": {"type": "string"},
                "location": {"type": "string"},
                "content_status": {"type": "string"},
                "content_channel": {"type": "string"},
                "content_asset_type": {"type": "string"}
            }
        },
        "CreateTaskRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_date": {"type": "string"},
                "start_time": {"type": "string"},
                "priority": {"type": "string", "enum": ["low", "medium", "high", "urgent"]},
                "status": {"type": "string"},
                "order_index": {"type": "integer"},
                "project_id": {"type": "string"},
                "assignee_id": {"type": "string"},
                "duration_minutes": {"type": "integer"}
            }
        },
        "UpdateTaskRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "start_date": {"type": "string"},
                "start_time": {"type": "string"},
                "priority": {"type": "string"},
                "status": {"type": "string"},
                "completed": {"type": "boolean"},
                "order_index": {"type": "integer"},
                "project_id": {"type": "string"},
                "assignee_id": {"type": "string"},
                "duration_minutes": {"type": "integer"}
            }
        },
        "ConnectRequest": {
            "type": "object",
            "required": ["provider", "feed_url"],
            "properties": {
                "provider": {"type": "string"},
                "feed_url": {"type": "string"}
            }
        },
        "TransitionRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["draft", "ready", "published"]}
            }
        },
        "SlotDraftRequest": {
            "type": "object",
            "required": ["date", "kind"],
            "properties": {
                "date": {"type": "string"},
                "hour": {"type": "integer"},
                "kind": {"type": "string", "enum": ["event", "task", "block", "content"]}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
