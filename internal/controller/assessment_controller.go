package controller

import (
	"strconv"

	"lms_assessment_backend/internal/service"
	"lms_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func parsePage(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// @Summary 创建测验
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AssessmentRequest true "测验信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.CreateAssessment(req)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Created(ctx, a)
}

// @Summary 获取测验列表
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "课程ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments [get]
func (c *AssessmentController) ListAssessments(ctx *gin.Context) {
	courseID := uint(0)
	if idStr := ctx.Query("courseId"); idStr != "" {
		if id, err := strconv.Atoi(idStr); err == nil {
			courseID = uint(id)
		}
	}
	page, limit := parsePage(ctx)

	as, total, err := c.Service.ListAssessments(courseID, page, limit)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": as, "total": total})
}

// @Summary 获取测验详情
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	a, err := c.Service.GetAssessment(id)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, a)
}

// @Summary 更新测验
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param body body service.AssessmentRequest true "测验信息"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id} [put]
func (c *AssessmentController) UpdateAssessment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.UpdateAssessment(id, req)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, a)
}

// @Summary 删除测验
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.Service.DeleteAssessment(id); err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

type publishRequest struct {
	Publish bool `json:"publish"`
}

// @Summary 发布/下架测验
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param body body publishRequest true "发布状态"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/publish [post]
func (c *AssessmentController) PublishAssessment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req publishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.PublishAssessment(id, req.Publish)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, a)
}

// @Summary 添加题目
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/assessments/{id}/questions [post]
func (c *AssessmentController) AddQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.AddQuestion(id, req)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Created(ctx, q)
}

// @Summary 获取题目列表（含答案，教师端）
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/questions [get]
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	qs, err := c.Service.ListQuestions(id)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, qs)
}

// @Summary 更新题目
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param questionId path int true "题目ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/questions/{questionId} [put]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := parseID(ctx, "questionId")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.UpdateQuestion(id, questionID, req)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, q)
}

// @Summary 删除题目
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/questions/{questionId} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := parseID(ctx, "questionId")
	if !ok {
		return
	}

	if err := c.Service.DeleteQuestion(id, questionID); err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"deleted": questionID})
}

// @Summary 学生端：获取测验详情
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) GetPublishedAssessment(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	a, err := c.Service.GetAssessment(id)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}
	if !a.IsPublished {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, a)
}

// @Summary 学生端：获取题目列表（不含答案）
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id}/questions [get]
func (c *AssessmentController) ListLearnerQuestions(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	qs, err := c.Service.ListLearnerQuestions(id)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, qs)
}
