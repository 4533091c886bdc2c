package controller

import (
	"prepaena_backend/internal/service"
	"prepaena_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type VisitorController struct {
	VisitorService *service.VisitorService
}

func NewVisitorController(visitors *service.VisitorService) *VisitorController {
	return &VisitorController{VisitorService: visitors}
}

// @Summary 记录访问
// @Tags 系统
// @Accept json
// @Produce json
// @Param visit body service.RecordVisitReq true "页面"
// @Success 201 {object} util.Response
// @Router /api/visitors [post]
func (c *VisitorController) Record(ctx *gin.Context) {
	var req service.RecordVisitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	err := c.VisitorService.Record(ctx.Request.Context(), ctx.ClientIP(), ctx.Request.UserAgent(), util.UserIDFromContext(ctx), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}
