// Package docs registers the OpenAPI description served under /swagger.
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
        "/api/auth/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue a token",
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/api/organizations": {
            "get": {"produces": ["application/json"], "tags": ["organizations"], "summary": "List organizations", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["organizations"], "summary": "Create organization", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/organizations/{orgId}/action-types": {
            "get": {"produces": ["application/json"], "tags": ["catalog"], "summary": "List action types", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["catalog"], "summary": "Create action type", "responses": {"201": {"description": "Created"}}}
        },
        "/api/organizations/{orgId}/mission-types": {
            "get": {"produces": ["application/json"], "tags": ["catalog"], "summary": "List mission types", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["catalog"], "summary": "Create mission type", "responses": {"201": {"description": "Created"}}}
        },
        "/api/organizations/{orgId}/ranks": {
            "get": {"produces": ["application/json"], "tags": ["catalog"], "summary": "List ranks", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["catalog"], "summary": "Create rank", "responses": {"201": {"description": "Created"}}}
        },
        "/api/organizations/{orgId}/users": {
            "get": {"produces": ["application/json"], "tags": ["users"], "summary": "List organization users", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["users"], "summary": "Register user", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/actions": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["actions"], "summary": "Capture an action", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/actions/{id}/approve": {
            "post": {"produces": ["application/json"], "tags": ["actions"], "summary": "Approve a pending action", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/api/actions/{id}/reject": {
            "post": {"produces": ["application/json"], "tags": ["actions"], "summary": "Reject a pending action", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}}
        },
        "/api/points/{userId}": {
            "get": {"produces": ["application/json"], "tags": ["points"], "summary": "Points and rank of a user", "responses": {"200": {"description": "OK"}}}
        },
        "/api/missions/{userId}": {
            "get": {"produces": ["application/json"], "tags": ["missions"], "summary": "Mission progress of a user", "responses": {"200": {"description": "OK"}}}
        },
        "/api/leaderboards/{orgId}": {
            "get": {"produces": ["application/json"], "tags": ["leaderboards"], "summary": "All-time leaderboard", "responses": {"200": {"description": "OK"}}}
        },
        "/api/leaderboards/{orgId}/monthly": {
            "get": {"produces": ["application/json"], "tags": ["leaderboards"], "summary": "Monthly leaderboard", "responses": {"200": {"description": "OK"}}}
        },
        "/api/events/feed": {
            "get": {"produces": ["application/json"], "tags": ["events"], "summary": "Activity feed", "responses": {"200": {"description": "OK"}}}
        },
        "/api/snapshots/{orgId}": {
            "get": {"produces": ["application/json"], "tags": ["snapshots"], "summary": "List leaderboard snapshots", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["snapshots"], "summary": "Take a monthly snapshot", "responses": {"201": {"description": "Created"}}}
        },
        "/health": {
            "get": {"produces": ["application/json"], "tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
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
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Gamifier API",
	Description:      "Employee gamification: actions, points, ranks, missions and leaderboards.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
