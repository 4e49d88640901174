package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Photostream API",
        "description": "Photo sharing REST API with JWT authentication",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Registration, login and token lifecycle"},
        {"name": "Photos", "description": "Photo feed, uploads, ratings and comments"},
        {"name": "Users", "description": "Public profiles and profile management"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email or username taken"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by email and password",
                "responses": {
                    "200": {"description": "Token pair"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh-token": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate the refresh token and issue a new pair",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Invalid or superseded refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke the current refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Profile"}
                }
            }
        },
        "/photos": {
            "get": {
                "tags": ["Photos"],
                "summary": "Photo feed with search, sort and pagination",
                "responses": {
                    "200": {"description": "Photo summaries"}
                }
            },
            "post": {
                "tags": ["Photos"],
                "summary": "Upload a photo",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid image"}
                }
            }
        },
        "/photos/{id}": {
            "get": {
                "tags": ["Photos"],
                "summary": "Photo detail with ratings and comments",
                "responses": {
                    "200": {"description": "Photo detail"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Photos"],
                "summary": "Update an owned photo",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated"},
                    "403": {"description": "Not the owner"}
                }
            },
            "delete": {
                "tags": ["Photos"],
                "summary": "Delete an owned photo",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Not the owner"}
                }
            }
        },
        "/photos/{id}/rate": {
            "post": {
                "tags": ["Photos"],
                "summary": "Add or replace the caller's rating",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Photo detail"}
                }
            }
        },
        "/photos/{id}/comment": {
            "post": {
                "tags": ["Photos"],
                "summary": "Comment on a photo",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Photo detail"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Public profile",
                "responses": {
                    "200": {"description": "Profile"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/users/{id}/photos": {
            "get": {
                "tags": ["Users"],
                "summary": "Photos uploaded by a user",
                "responses": {
                    "200": {"description": "Photo summaries"}
                }
            }
        },
        "/users/profile": {
            "put": {
                "tags": ["Users"],
                "summary": "Update own profile and avatar",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Profile"},
                    "409": {"description": "Email or username taken"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
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
        "Envelope": {
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
