package controller

import (
	"prepaena_backend/internal/model"
	"prepaena_backend/internal/service"
	"prepaena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AccountController serves the signed-in user's profile, plan and progress.
type AccountController struct {
	ProfileService      *service.ProfileService
	SubscriptionService *service.SubscriptionService
	ResultService       *service.ResultService
}

func NewAccountController(profiles *service.ProfileService, subs *service.SubscriptionService, results *service.ResultService) *AccountController {
	return &AccountController{ProfileService: profiles, SubscriptionService: subs, ResultService: results}
}

type SubscribeReq struct {
	Plan model.PlanID `json:"plan" binding:"required" example:"premium_monthly"`
}

// @Summary 订阅方案
// @Tags 订阅
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Plan}
// @Router /api/plans [get]
func (c *AccountController) Plans(ctx *gin.Context) {
	util.Success(ctx, c.SubscriptionService.Plans())
}

// @Summary 获取个人资料
// @Tags 用户
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.Profile}
// @Router /api/profile [get]
func (c *AccountController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	profile, err := c.ProfileService.Get(ctx.Request.Context(), user.UserID())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 更新个人资料
// @Tags 用户
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profile body service.UpdateProfileReq true "资料"
// @Success 200 {object} util.Response{data=model.Profile}
// @Router /api/profile [put]
func (c *AccountController) UpdateProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.UpdateProfileReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	profile, err := c.ProfileService.Update(ctx.Request.Context(), user.UserID(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// @Summary 当前订阅
// @Tags 订阅
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=service.SubscriptionStatus}
// @Router /api/subscription [get]
func (c *AccountController) GetSubscription(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	status, err := c.SubscriptionService.Current(ctx.Request.Context(), user.UserID())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary 订阅高级方案
// @Tags 订阅
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param plan body SubscribeReq true "方案"
// @Success 201 {object} util.Response{data=model.Subscription}
// @Failure 400 {object} util.Response
// @Router /api/subscription [post]
func (c *AccountController) Subscribe(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	var req SubscribeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	sub, err := c.SubscriptionService.Subscribe(ctx.Request.Context(), user.UserID(), user.Email, req.Plan)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, sub)
}

// @Summary 取消订阅
// @Tags 订阅
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/subscription [delete]
func (c *AccountController) CancelSubscription(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	if err := c.SubscriptionService.Cancel(ctx.Request.Context(), user.UserID(), user.Email); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 学习进度
// @Tags 成绩
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=service.Progress}
// @Router /api/progress [get]
func (c *AccountController) Progress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	progress, err := c.ResultService.Progress(ctx.Request.Context(), user.UserID())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// @Summary 成绩详情
// @Tags 成绩
// @Security BearerAuth
// @Produce json
// @Param id path string true "成绩ID"
// @Success 200 {object} util.Response{data=service.ResultDetail}
// @Failure 404 {object} util.Response
// @Router /api/results/{id} [get]
func (c *AccountController) Result(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	detail, err := c.ResultService.Result(ctx.Request.Context(), ctx.Param("id"), user.UserID())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}
