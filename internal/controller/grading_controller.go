package controller

import (
	"strconv"

	"lms_assessment_backend/internal/service"
	"lms_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradingController struct {
	Grading *service.GradingService
	Rubrics *service.RubricService
}

func NewGradingController(grading *service.GradingService, rubrics *service.RubricService) *GradingController {
	return &GradingController{Grading: grading, Rubrics: rubrics}
}

// @Summary 获取待人工评分队列
// @Tags 人工评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/grading/pending [get]
func (c *GradingController) ListPendingManual(ctx *gin.Context) {
	assessmentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	page, limit := parsePage(ctx)

	queue, total, err := c.Grading.ListPendingManual(assessmentID, page, limit)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": queue, "total": total})
}

type gradeAttemptRequest struct {
	Responses []service.GradedResponseRequest `json:"responses" binding:"required"`
}

// @Summary 人工评分并定稿
// @Tags 人工评分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答记录ID"
// @Param body body gradeAttemptRequest true "评分信息"
// @Success 200 {object} util.Response
// @Router /api/teacher/attempts/{id}/grade [post]
func (c *GradingController) GradeAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req gradeAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Grading.GradeAttempt(user.UserID, attemptID, req.Responses)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// @Summary 创建评分细则
// @Tags 评分细则
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.RubricRequest true "细则信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/rubrics [post]
func (c *GradingController) CreateRubric(ctx *gin.Context) {
	var req service.RubricRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rubric, err := c.Rubrics.CreateRubric(req)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Created(ctx, rubric)
}

// @Summary 获取评分细则
// @Tags 评分细则
// @Produce json
// @Security BearerAuth
// @Param id path int true "细则ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/rubrics/{id} [get]
func (c *GradingController) GetRubric(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	rubric, err := c.Rubrics.GetRubric(id)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, rubric)
}

// @Summary 获取测验关联的评分细则列表
// @Tags 评分细则
// @Produce json
// @Security BearerAuth
// @Param assessmentId query int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/rubrics [get]
func (c *GradingController) ListRubrics(ctx *gin.Context) {
	assessmentID, err := strconv.Atoi(ctx.Query("assessmentId"))
	if err != nil || assessmentID < 1 {
		util.BadRequest(ctx, "invalid assessmentId")
		return
	}

	rubrics, err2 := c.Rubrics.ListRubrics(uint(assessmentID))
	if err2 != nil {
		util.FailFromError(ctx, err2)
		return
	}

	util.Success(ctx, rubrics)
}

// @Summary 更新评分细则
// @Tags 评分细则
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "细则ID"
// @Param body body service.RubricRequest true "细则信息"
// @Success 200 {object} util.Response
// @Router /api/teacher/rubrics/{id} [put]
func (c *GradingController) UpdateRubric(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.RubricRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rubric, err := c.Rubrics.UpdateRubric(id, req)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, rubric)
}

// @Summary 删除评分细则
// @Tags 评分细则
// @Produce json
// @Security BearerAuth
// @Param id path int true "细则ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/rubrics/{id} [delete]
func (c *GradingController) DeleteRubric(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.Rubrics.DeleteRubric(id); err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// @Summary 按细则试算得分
// @Tags 评分细则
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "细则ID"
// @Param body body service.RubricEvaluationRequest true "各条目得分"
// @Success 200 {object} util.Response
// @Router /api/teacher/rubrics/{id}/evaluate [post]
func (c *GradingController) EvaluateRubric(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.RubricEvaluationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	total, err := c.Rubrics.Evaluate(id, req)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"total": total})
}
