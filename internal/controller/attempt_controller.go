package controller

import (
	"strconv"

	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/internal/service"
	"lms_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Attempts *service.AttemptService
	Grading  *service.GradingService
	Storage  *service.StorageService
}

func NewAttemptController(attempts *service.AttemptService, grading *service.GradingService, storage *service.StorageService) *AttemptController {
	return &AttemptController{Attempts: attempts, Grading: grading, Storage: storage}
}

// @Summary 开始作答
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 201 {object} util.Response
// @Router /api/assessments/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	assessmentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	attempt, err := c.Attempts.StartAttempt(user.UserID, assessmentID)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

// @Summary 保存单题作答
// @Tags 测验作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答记录ID"
// @Param body body service.SaveResponseRequest true "答案"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/responses [put]
func (c *AttemptController) SaveResponse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req service.SaveResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.Attempts.SaveResponse(user.UserID, attemptID, req)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

type submitRequest struct {
	Answers []service.SaveResponseRequest `json:"answers"`
}

// @Summary 提交作答
// @Tags 测验作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答记录ID"
// @Param body body submitRequest true "最终答案（可为空，服务端合并已保存答案）"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req submitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Grading.SubmitAttempt(user.UserID, attemptID, req.Answers)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, attempt)
}

// @Summary 获取作答详情
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答记录ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	staff := user.Role == model.Teacher || user.Role == model.Admin
	detail, err := c.Attempts.GetAttempt(attemptID, user.UserID, staff)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}

// @Summary 获取我的作答记录
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id}/attempts [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	assessmentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	attempts, err := c.Attempts.ListAttempts(user.UserID, assessmentID)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, attempts)
}

// @Summary 教师端：获取测验的作答记录
// @Tags 人工评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Param status query string false "状态筛选"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/assessments/{id}/attempts [get]
func (c *AttemptController) ListAssessmentAttempts(ctx *gin.Context) {
	assessmentID, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	status := model.AttemptStatus(ctx.Query("status"))
	page, limit := parsePage(ctx)

	attempts, total, err := c.Attempts.ListAssessmentAttempts(assessmentID, status, page, limit)
	if err != nil {
		util.FailFromError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": attempts, "total": total})
}

// @Summary 上传作答附件
// @Tags 测验作答
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "附件文件"
// @Success 201 {object} util.Response
// @Router /api/attempts/attachments [post]
func (c *AttemptController) UploadAttachment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := c.Storage.UploadAttachment(ctx.Request.Context(), fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{
		"url":  url,
		"name": fileHeader.Filename,
		"size": strconv.FormatInt(fileHeader.Size, 10),
	})
}
