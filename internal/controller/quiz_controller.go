package controller

import (
	"errors"
	"net/http"
	"prepaena_backend/internal/quiz"
	"prepaena_backend/internal/service"
	"prepaena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService     *service.QuizService
	PracticeService *service.PracticeTestService
}

func NewQuizController(quizService *service.QuizService, practiceService *service.PracticeTestService) *QuizController {
	return &QuizController{QuizService: quizService, PracticeService: practiceService}
}

type AnswerReq struct {
	Choice *int `json:"choice" binding:"required" example:"1"`
}

// respondSession also returns the session on a rejected transition so the
// client can render the results a timeout produced.
func respondSession(ctx *gin.Context, view *service.SessionView, err error) {
	if err == nil {
		util.Success(ctx, view)
		return
	}
	if view != nil && errors.Is(err, quiz.ErrInvalidTransition) {
		util.ErrorWithData(ctx, http.StatusConflict, err.Error(), view)
		return
	}
	respondError(ctx, err)
}

// @Summary 每日测验
// @Description 当天的题目（不含答案），同一天同一级别返回相同题目
// @Tags 测验
// @Produce json
// @Param level query string false "考试级别" default(CM)
// @Param subjects query string false "科目，逗号分隔"
// @Success 200 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/quiz/daily [get]
func (c *QuizController) Daily(ctx *gin.Context) {
	questions, date, err := c.QuizService.Daily(ctx.Request.Context(), ctx.Query("level"), util.SplitList(ctx.Query("subjects")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"date":      date,
		"questions": quiz.ViewsOf(questions),
	})
}

// @Summary 创建测验会话
// @Tags 测验
// @Accept json
// @Produce json
// @Param session body service.CreateSessionReq true "会话参数"
// @Success 201 {object} util.Response{data=service.SessionView}
// @Failure 400 {object} util.Response
// @Failure 402 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/quiz/sessions [post]
func (c *QuizController) CreateSession(ctx *gin.Context) {
	var req service.CreateSessionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.QuizService.CreateSession(ctx.Request.Context(), util.UserIDFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// @Summary 获取测验会话
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 404 {object} util.Response
// @Router /api/quiz/sessions/{id} [get]
func (c *QuizController) GetSession(ctx *gin.Context) {
	view, err := c.QuizService.Sessions().Get(ctx.Request.Context(), ctx.Param("id"), util.UserIDFromContext(ctx))
	respondSession(ctx, view, err)
}

// @Summary 开始测验
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 409 {object} util.Response
// @Router /api/quiz/sessions/{id}/start [post]
func (c *QuizController) Start(ctx *gin.Context) {
	view, err := c.QuizService.Sessions().Start(ctx.Request.Context(), ctx.Param("id"), util.UserIDFromContext(ctx))
	respondSession(ctx, view, err)
}

// @Summary 作答当前题目
// @Tags 测验
// @Accept json
// @Produce json
// @Param id path string true "会话ID"
// @Param answer body AnswerReq true "选项序号，从0开始"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/quiz/sessions/{id}/answer [post]
func (c *QuizController) Answer(ctx *gin.Context) {
	var req AnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	view, err := c.QuizService.Sessions().Answer(ctx.Request.Context(), ctx.Param("id"), util.UserIDFromContext(ctx), quiz.Choice(*req.Choice))
	respondSession(ctx, view, err)
}

// @Summary 下一题
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/quiz/sessions/{id}/next [post]
func (c *QuizController) Next(ctx *gin.Context) {
	view, err := c.QuizService.Sessions().Next(ctx.Request.Context(), ctx.Param("id"), util.UserIDFromContext(ctx))
	respondSession(ctx, view, err)
}

// @Summary 上一题
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Router /api/quiz/sessions/{id}/prev [post]
func (c *QuizController) Prev(ctx *gin.Context) {
	view, err := c.QuizService.Sessions().Prev(ctx.Request.Context(), ctx.Param("id"), util.UserIDFromContext(ctx))
	respondSession(ctx, view, err)
}

// @Summary 交卷
// @Tags 测验
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 409 {object} util.Response
// @Router /api/quiz/sessions/{id}/finish [post]
func (c *QuizController) Finish(ctx *gin.Context) {
	view, err := c.QuizService.Sessions().Finish(ctx.Request.Context(), ctx.Param("id"), util.UserIDFromContext(ctx))
	respondSession(ctx, view, err)
}

// @Summary 导出测验结果
// @Tags 测验
// @Security BearerAuth
// @Produce json
// @Param id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/quiz/sessions/{id}/export [post]
func (c *QuizController) Export(ctx *gin.Context) {
	url, err := c.QuizService.Export(ctx.Request.Context(), ctx.Param("id"), util.UserIDFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// @Summary 练习测试列表
// @Tags 测验
// @Produce json
// @Param level query string false "考试级别" default(CM)
// @Success 200 {object} util.Response{data=[]service.PracticeTest}
// @Router /api/practice-tests [get]
func (c *QuizController) PracticeTests(ctx *gin.Context) {
	tests, err := c.PracticeService.List(ctx.Request.Context(), ctx.Query("level"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, tests)
}
