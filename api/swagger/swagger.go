package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Degree Audit API",
        "description": "Degree-requirement satisfaction and transfer progress engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Plans", "description": "Student plan and plan course management"},
        {"name": "Progress", "description": "Progress computation"},
        {"name": "Audit", "description": "Constraint audits and exports"},
        {"name": "Programs", "description": "Programs and requirement sets"},
        {"name": "Equivalencies", "description": "Cross-institution transfer relations"},
        {"name": "System", "description": "Health and observability"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/plans": {
            "post": {
                "tags": ["Plans"],
                "summary": "Create a plan",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}": {
            "get": {
                "tags": ["Plans"],
                "summary": "Fetch one plan with its courses",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Plans"],
                "summary": "Update a plan header",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "delete": {
                "tags": ["Plans"],
                "summary": "Delete a plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/plans/{id}/courses": {
            "post": {
                "tags": ["Plans"],
                "summary": "Add a course to a plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/plans/{id}/courses/{courseId}": {
            "put": {
                "tags": ["Plans"],
                "summary": "Update a plan course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "delete": {
                "tags": ["Plans"],
                "summary": "Remove a course from a plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/plans/{id}/progress": {
            "get": {
                "tags": ["Progress"],
                "summary": "Compute degree progress for a plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "view", "in": "query", "required": false, "type": "string", "enum": ["all", "planned", "in_progress", "completed"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid view"},
                    "404": {"description": "Plan not found"},
                    "409": {"description": "No current requirement set"},
                    "422": {"description": "Invalid requirement model"}
                }
            }
        },
        "/plans/{id}/audit": {
            "get": {
                "tags": ["Audit"],
                "summary": "Constraint violation report for a plan",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "view", "in": "query", "required": false, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plans/{id}/audit/export": {
            "post": {
                "tags": ["Audit"],
                "summary": "Request an asynchronous audit export",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted"},
                    "503": {"description": "Exports disabled"}
                }
            }
        },
        "/export-jobs/{jobId}": {
            "get": {
                "tags": ["Audit"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "jobId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Audit"],
                "summary": "Download a completed export via signed token",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token"},
                    "409": {"description": "Export not ready"}
                }
            }
        },
        "/students/{studentId}/plans": {
            "get": {
                "tags": ["Plans"],
                "summary": "List a student's plans",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/programs/{id}": {
            "get": {
                "tags": ["Programs"],
                "summary": "Fetch one program",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/programs/{id}/requirements": {
            "get": {
                "tags": ["Programs"],
                "summary": "Fetch the current requirement set of a program, or the set for one term",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": false, "type": "string"},
                    {"name": "year", "in": "query", "required": false, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "No current requirement set"}
                }
            }
        },
        "/programs/{id}/requirement-sets": {
            "get": {
                "tags": ["Programs"],
                "summary": "List requirement set versions of a program",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/equivalencies": {
            "get": {
                "tags": ["Equivalencies"],
                "summary": "List transfer relations between two institutions",
                "parameters": [
                    {"name": "source", "in": "query", "required": true, "type": "string"},
                    {"name": "target", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Equivalencies"],
                "summary": "Register a transfer relation",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/equivalencies/resolve": {
            "get": {
                "tags": ["Equivalencies"],
                "summary": "Resolve relations touching one course",
                "parameters": [
                    {"name": "code", "in": "query", "required": true, "type": "string"},
                    {"name": "institution", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/equivalencies/{id}": {
            "delete": {
                "tags": ["Equivalencies"],
                "summary": "Delete a transfer relation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No content"}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated runtime metrics",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "view": {"type": "string", "enum": ["all", "planned", "in_progress", "completed"]}
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
