package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Planner API",
        "description": "Role-based exam scheduling backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and account session"},
        {"name": "Exams", "description": "Exam proposal and scheduling lifecycle"},
        {"name": "Periods", "description": "Examination period management"},
        {"name": "Rooms", "description": "Examination room management"},
        {"name": "Courses", "description": "Course metadata and examination method"},
        {"name": "Users", "description": "Account management"},
        {"name": "Exports", "description": "Timetable exports"},
        {"name": "Imports", "description": "Bulk user import"},
        {"name": "Sync", "description": "University timetable synchronisation"},
        {"name": "Settings", "description": "Administrative maintenance"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Tokens issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Expired or revoked refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "responses": {"204": {"description": "Session revoked"}}
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "responses": {"204": {"description": "Password updated"}}
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/exams": {
            "get": {
                "tags": ["Exams"],
                "summary": "List exams visible to the caller",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "groupId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Exams"],
                "summary": "Propose an exam date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProposeExamRequest"}}
                ],
                "responses": {
                    "201": {"description": "Proposal created"},
                    "400": {"description": "Date outside the examination period"},
                    "409": {"description": "Exam already exists for the course and group"}
                }
            }
        },
        "/exams/missing": {
            "get": {
                "tags": ["Exams"],
                "summary": "Courses without a scheduled exam",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/exams/{id}": {
            "get": {
                "tags": ["Exams"],
                "summary": "Get exam by id",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Exams"],
                "summary": "Edit a scheduled exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateExamRequest"}}
                ],
                "responses": {"200": {"description": "Updated"}, "409": {"description": "Room or period conflict"}}
            }
        },
        "/exams/{id}/review": {
            "put": {
                "tags": ["Exams"],
                "summary": "Review an exam proposal",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewExamRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reviewed"},
                    "400": {"description": "Accepting requires room, assistant, start time and duration"},
                    "409": {"description": "Room conflict or invalid transition"}
                }
            }
        },
        "/exams/{id}/reschedule": {
            "put": {
                "tags": ["Exams"],
                "summary": "Reschedule a rejected exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleExamRequest"}}
                ],
                "responses": {"200": {"description": "Back to pending"}, "409": {"description": "Invalid transition"}}
            }
        },
        "/periods": {
            "get": {
                "tags": ["Periods"],
                "summary": "List examination periods",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Periods"],
                "summary": "Create examination period",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PeriodRequest"}}
                ],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Period already exists for the kind"}}
            }
        },
        "/periods/{id}": {
            "put": {
                "tags": ["Periods"],
                "summary": "Update examination period",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PeriodRequest"}}
                ],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Periods"],
                "summary": "Delete examination period",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Rooms"],
                "summary": "Create room",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RoomRequest"}}
                ],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/rooms/{id}": {
            "put": {
                "tags": ["Rooms"],
                "summary": "Update room",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Rooms"],
                "summary": "Delete room",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deleted"}}
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses visible to the caller",
                "parameters": [
                    {"name": "specialization", "in": "query", "type": "string"},
                    {"name": "studyYear", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course by id",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            }
        },
        "/courses/{id}/examination-method": {
            "put": {
                "tags": ["Courses"],
                "summary": "Choose examination method",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetExaminationMethodRequest"}}
                ],
                "responses": {"200": {"description": "Method set"}, "403": {"description": "Not the course coordinator"}}
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create user",
                "responses": {"201": {"description": "Created"}, "409": {"description": "Email already registered"}}
            }
        },
        "/users/professors": {
            "get": {
                "tags": ["Users"],
                "summary": "List professors",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get user by id",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            },
            "put": {
                "tags": ["Users"],
                "summary": "Update user",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "Updated"}}
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Deactivate user",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "Deactivated"}}
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a timetable export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {"202": {"description": "Job queued"}}
            }
        },
        "/exports/status/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Not the job owner"}}
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via signed token",
                "produces": ["application/octet-stream"],
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File stream"}, "403": {"description": "Invalid or expired token"}}
            }
        },
        "/exports/exam-table": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download the exam timetable directly",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File stream"}}
            }
        },
        "/imports/users": {
            "post": {
                "tags": ["Imports"],
                "summary": "Import group leader accounts from a workbook",
                "consumes": ["multipart/form-data"],
                "parameters": [{"name": "file", "in": "formData", "required": true, "type": "file"}],
                "responses": {"200": {"description": "Import report"}}
            }
        },
        "/imports/users/template": {
            "get": {
                "tags": ["Imports"],
                "summary": "Download the import template workbook",
                "produces": ["application/octet-stream"],
                "responses": {"200": {"description": "Template workbook"}}
            }
        },
        "/sync": {
            "post": {
                "tags": ["Sync"],
                "summary": "Synchronise professors and courses",
                "responses": {
                    "200": {"description": "Sync report"},
                    "502": {"description": "Timetable service failure"}
                }
            }
        },
        "/settings/reset": {
            "post": {
                "tags": ["Settings"],
                "summary": "Reset scheduling data",
                "responses": {"200": {"description": "Reset completed"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ProposeExamRequest": {
            "type": "object",
            "required": ["courseId", "date"],
            "properties": {
                "courseId": {"type": "string"},
                "date": {"type": "string", "example": "2025-06-10"}
            }
        },
        "ReviewExamRequest": {
            "type": "object",
            "required": ["decision"],
            "properties": {
                "decision": {"type": "string", "enum": ["ACCEPTED", "REJECTED"]},
                "roomId": {"type": "string"},
                "assistantId": {"type": "string"},
                "startTime": {"type": "string", "example": "10:00"},
                "durationMinutes": {"type": "integer"},
                "details": {"type": "string"}
            }
        },
        "RescheduleExamRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string", "example": "2025-06-20"}
            }
        },
        "UpdateExamRequest": {
            "type": "object",
            "required": ["roomId", "startTime", "durationMinutes"],
            "properties": {
                "date": {"type": "string"},
                "roomId": {"type": "string"},
                "assistantId": {"type": "string"},
                "startTime": {"type": "string"},
                "durationMinutes": {"type": "integer"},
                "details": {"type": "string"}
            }
        },
        "PeriodRequest": {
            "type": "object",
            "required": ["kind", "start", "end"],
            "properties": {
                "kind": {"type": "string", "enum": ["EXAM", "COLLOQUIUM"]},
                "start": {"type": "string", "example": "2025-06-01"},
                "end": {"type": "string", "example": "2025-06-30"}
            }
        },
        "RoomRequest": {
            "type": "object",
            "required": ["name", "building"],
            "properties": {
                "name": {"type": "string"},
                "building": {"type": "string"}
            }
        },
        "SetExaminationMethodRequest": {
            "type": "object",
            "required": ["method"],
            "properties": {
                "method": {"type": "string", "enum": ["EXAM", "COLLOQUIUM"]}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf", "xlsx"]},
                "status": {"type": "string", "enum": ["PENDING", "ACCEPTED", "REJECTED"]}
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
