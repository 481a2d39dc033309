// Package docs holds the generated swagger definition served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "consumes": ["application/json"],
    "produces": ["application/json"],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "operationId": "healthCheck",
                "responses": {
                    "200": {"description": "Service status"}
                }
            }
        },
        "/sources": {
            "get": {
                "summary": "List feed sources",
                "operationId": "listSources",
                "responses": {
                    "200": {"description": "Registered sources"}
                }
            },
            "post": {
                "summary": "Register a feed source",
                "operationId": "createSource",
                "parameters": [
                    {
                        "name": "source",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/FeedSource"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created source"},
                    "400": {"description": "Invalid source definition"},
                    "409": {"description": "Source already exists"}
                }
            }
        },
        "/sources/{id}": {
            "get": {
                "summary": "Get one feed source",
                "operationId": "getSource",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "The source"},
                    "404": {"description": "Source not found"}
                }
            },
            "put": {
                "summary": "Update a feed source",
                "operationId": "updateSource",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {
                        "name": "source",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/FeedSource"}
                    }
                ],
                "responses": {
                    "200": {"description": "Updated source"},
                    "404": {"description": "Source not found"}
                }
            },
            "delete": {
                "summary": "Remove a feed source",
                "operationId": "deleteSource",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Source removed"},
                    "404": {"description": "Source not found"}
                }
            }
        },
        "/stories": {
            "get": {
                "summary": "Get the aggregated story pool",
                "operationId": "getStories",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "description": "Maximum articles to return"},
                    {"name": "offset", "in": "query", "type": "integer", "description": "Articles to skip"},
                    {"name": "search", "in": "query", "type": "string", "description": "Text search over title, snippet and categories"},
                    {"name": "source", "in": "query", "type": "string", "description": "Restrict to one source"},
                    {"name": "video", "in": "query", "type": "boolean", "description": "Only videos (true) or only articles (false)"}
                ],
                "responses": {
                    "200": {"description": "Filtered story pool"},
                    "400": {"description": "Invalid query parameters"}
                }
            }
        },
        "/stories/info": {
            "get": {
                "summary": "Get pool snapshot metadata",
                "operationId": "getPoolInfo",
                "responses": {
                    "200": {"description": "Article and image counts"},
                    "404": {"description": "No pool aggregated yet"}
                }
            }
        },
        "/stories/refresh": {
            "post": {
                "summary": "Rebuild the story pool now",
                "operationId": "refreshStories",
                "responses": {
                    "200": {"description": "Refresh result"}
                }
            }
        },
        "/stories/updates": {
            "get": {
                "summary": "Stream image backfill results as server-sent events",
                "operationId": "streamUpdates",
                "produces": ["text/event-stream"],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/poller/status": {
            "get": {
                "summary": "Get background poller status",
                "operationId": "getPollerStatus",
                "responses": {
                    "200": {"description": "Poller state and last run time"}
                }
            }
        }
    },
    "definitions": {
        "FeedSource": {
            "type": "object",
            "required": ["name", "feed_endpoint"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "display_url": {"type": "string"},
                "feed_endpoint": {"type": "string"},
                "is_active": {"type": "boolean"},
                "is_video_source": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Sonagg API",
	Description:      "Feed aggregation service with image resolution",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
