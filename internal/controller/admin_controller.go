package controller

import (
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/service"
	"prepaena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	QuestionService *service.QuestionAdminService
	PracticeService *service.PracticeTestService
	VisitorService  *service.VisitorService
}

func NewAdminController(questions *service.QuestionAdminService, practice *service.PracticeTestService, visitors *service.VisitorService) *AdminController {
	return &AdminController{QuestionService: questions, PracticeService: practice, VisitorService: visitors}
}

// @Summary 题目列表
// @Tags 管理
// @Security BearerAuth
// @Produce json
// @Param subject query string false "科目"
// @Param level query string false "考试级别"
// @Param mode query string false "测验类型"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(50)
// @Success 200 {object} util.Response{data=service.QuestionPage}
// @Router /api/admin/questions [get]
func (c *AdminController) ListQuestions(ctx *gin.Context) {
	filter := quiz.Filter{Subject: ctx.Query("subject"), ExamLevel: ctx.Query("level")}
	if m := ctx.Query("mode"); m != "" {
		mode, err := quiz.ParseMode(m)
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		filter.Mode = mode
	}
	page := util.IntQuery(ctx.Query("page"), 1)
	limit := util.IntQuery(ctx.Query("limit"), 50)
	result, err := c.QuestionService.List(ctx.Request.Context(), filter, page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 导入题目
// @Description 请求体为YAML文档，顶层为 questions 列表
// @Tags 管理
// @Security BearerAuth
// @Accept plain
// @Produce json
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/admin/questions/import [post]
func (c *AdminController) ImportQuestions(ctx *gin.Context) {
	n, err := c.QuestionService.Import(ctx.Request.Context(), ctx.Request.Body)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"imported": n})
}

// @Summary 清除练习测试缓存
// @Tags 管理
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/admin/practice-tests/cache/clear [post]
func (c *AdminController) ClearPracticeCache(ctx *gin.Context) {
	c.PracticeService.ClearCache()
	util.Success(ctx, nil)
}

// @Summary 访客统计
// @Tags 管理
// @Security BearerAuth
// @Produce json
// @Param days query int false "天数" default(7)
// @Success 200 {object} util.Response{data=service.VisitorStats}
// @Router /api/admin/visitors/stats [get]
func (c *AdminController) VisitorStats(ctx *gin.Context) {
	stats, err := c.VisitorService.Stats(ctx.Request.Context(), util.IntQuery(ctx.Query("days"), 7))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
