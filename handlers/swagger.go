package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
		c.String(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>staffdesk — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document covering the record and auth endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "staffdesk", "version": "v0.1.0" },
  "paths": {
    "/auth/setup": {
      "post": { "summary": "Create the superadmin account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "201": { "description": "account created" }, "409": { "description": "user already exists" } } }
    },
    "/auth/login": {
      "post": { "summary": "Exchange credentials for tokens", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/employees": {
      "get": { "summary": "List employees", "responses": { "200": { "description": "ordered employee records" } } },
      "post": { "summary": "Create or update an employee", "responses": { "200": { "description": "updated" }, "201": { "description": "created" } } }
    },
    "/api/employees/{id}": {
      "delete": { "summary": "Delete an employee (idempotent)", "responses": { "200": { "description": "deleted or already absent" } } }
    },
    "/api/attendance": {
      "get": { "summary": "List attendance records", "responses": { "200": { "description": "ordered attendance records" } } },
      "post": { "summary": "Create or update attendance keyed on (employeeId, date)", "responses": { "200": { "description": "updated" }, "201": { "description": "created" } } }
    },
    "/api/leaves": {
      "get": { "summary": "List leave requests", "responses": { "200": { "description": "ordered leave records" } } },
      "post": { "summary": "Create or update a leave request", "responses": { "200": { "description": "updated" }, "201": { "description": "created" } } }
    },
    "/api/leaves/{id}/status": {
      "put": { "summary": "Update only the status of a leave", "responses": { "200": { "description": "status updated" }, "404": { "description": "leave not found" } } }
    },
    "/api/notifications": {
      "get": { "summary": "List notifications", "responses": { "200": { "description": "ordered notifications" } } },
      "post": { "summary": "Create a notification", "responses": { "201": { "description": "created" } } }
    },
    "/ws": {
      "get": { "summary": "WebSocket: push-only change events", "responses": { "101": { "description": "switching protocols" } } }
    }
  }
}`
