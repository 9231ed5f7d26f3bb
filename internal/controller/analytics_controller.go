package controller

import (
	"lms_assessment_backend/internal/service"
	"lms_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	Service *service.AnalyticsService
}

func NewAnalyticsController(svc *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Service: svc}
}

// @Summary 获取测验统计
// @Description 已定稿作答记录的均分、通过率、题目难度与作答次数分布
// @Tags 测验统计
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/analytics [get]
func (c *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	assessmentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	stats, err := c.Service.GetAnalytics(assessmentID)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
