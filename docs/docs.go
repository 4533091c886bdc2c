// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API支持",
            "email": "support@prepaena.ci"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/health": {"get": {"tags": ["系统"], "summary": "健康检查", "responses": {"200": {"description": "OK"}}}},
        "/api/plans": {"get": {"tags": ["订阅"], "summary": "订阅方案", "responses": {"200": {"description": "OK"}}}},
        "/api/visitors": {"post": {"tags": ["系统"], "summary": "记录访问", "responses": {"201": {"description": "Created"}}}},
        "/api/practice-tests": {"get": {"tags": ["测验"], "summary": "练习测试列表", "responses": {"200": {"description": "OK"}}}},
        "/api/quiz/daily": {"get": {"tags": ["测验"], "summary": "每日测验", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}},
        "/api/quiz/sessions": {"post": {"tags": ["测验"], "summary": "创建测验会话", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "402": {"description": "Payment Required"}, "422": {"description": "Unprocessable Entity"}}}},
        "/api/quiz/sessions/{id}": {"get": {"tags": ["测验"], "summary": "获取测验会话", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/quiz/sessions/{id}/start": {"post": {"tags": ["测验"], "summary": "开始测验", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/api/quiz/sessions/{id}/answer": {"post": {"tags": ["测验"], "summary": "作答当前题目", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/api/quiz/sessions/{id}/next": {"post": {"tags": ["测验"], "summary": "下一题", "responses": {"200": {"description": "OK"}}}},
        "/api/quiz/sessions/{id}/prev": {"post": {"tags": ["测验"], "summary": "上一题", "responses": {"200": {"description": "OK"}}}},
        "/api/quiz/sessions/{id}/finish": {"post": {"tags": ["测验"], "summary": "交卷", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/api/quiz/sessions/{id}/export": {"post": {"security": [{"BearerAuth": []}], "tags": ["测验"], "summary": "导出测验结果", "responses": {"200": {"description": "OK"}}}},
        "/api/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["用户"], "summary": "获取个人资料", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["用户"], "summary": "更新个人资料", "responses": {"200": {"description": "OK"}}}
        },
        "/api/subscription": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["订阅"], "summary": "当前订阅", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["订阅"], "summary": "订阅高级方案", "responses": {"201": {"description": "Created"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["订阅"], "summary": "取消订阅", "responses": {"200": {"description": "OK"}}}
        },
        "/api/progress": {"get": {"security": [{"BearerAuth": []}], "tags": ["成绩"], "summary": "学习进度", "responses": {"200": {"description": "OK"}}}},
        "/api/results/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["成绩"], "summary": "成绩详情", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/api/admin/questions": {"get": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "题目列表", "responses": {"200": {"description": "OK"}}}},
        "/api/admin/questions/import": {"post": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "导入题目", "responses": {"201": {"description": "Created"}}}},
        "/api/admin/practice-tests/cache/clear": {"post": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "清除练习测试缓存", "responses": {"200": {"description": "OK"}}}},
        "/api/admin/visitors/stats": {"get": {"security": [{"BearerAuth": []}], "tags": ["管理"], "summary": "访客统计", "responses": {"200": {"description": "OK"}}}}
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
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PrepaENA 后端 API",
	Description:      "PrepaENA 考试备考平台的后端服务：每日测验、练习测试、模拟考试与订阅。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
