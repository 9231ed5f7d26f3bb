package app

import (
	"lms_assessment_backend/docs"
	"lms_assessment_backend/internal/config"
	"lms_assessment_backend/internal/middleware"
	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 学生端作答接口
		a.registerLearnerRoutes(authGroup, c)

		// 教师端管理接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerLearnerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/assessments/:id", c.assessment.GetPublishedAssessment)
	rg.GET("/assessments/:id/questions", c.assessment.ListLearnerQuestions)
	rg.POST("/assessments/:id/attempts", c.attempt.StartAttempt)
	rg.GET("/assessments/:id/attempts", c.attempt.ListMyAttempts)

	rg.GET("/attempts/:id", c.attempt.GetAttempt)
	rg.PUT("/attempts/:id/responses", c.attempt.SaveResponse)
	rg.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)
	rg.POST("/attempts/attachments", c.attempt.UploadAttachment)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/assessments", c.assessment.CreateAssessment)
		teacher.GET("/assessments", c.assessment.ListAssessments)
		teacher.GET("/assessments/:id", c.assessment.GetAssessment)
		teacher.PUT("/assessments/:id", c.assessment.UpdateAssessment)
		teacher.DELETE("/assessments/:id", c.assessment.DeleteAssessment)
		teacher.POST("/assessments/:id/publish", c.assessment.PublishAssessment)

		teacher.POST("/assessments/:id/questions", c.assessment.AddQuestion)
		teacher.GET("/assessments/:id/questions", c.assessment.ListQuestions)
		teacher.PUT("/assessments/:id/questions/:questionId", c.assessment.UpdateQuestion)
		teacher.DELETE("/assessments/:id/questions/:questionId", c.assessment.DeleteQuestion)

		teacher.GET("/assessments/:id/attempts", c.attempt.ListAssessmentAttempts)
		teacher.GET("/assessments/:id/grading/pending", c.grading.ListPendingManual)
		teacher.POST("/attempts/:id/grade", c.grading.GradeAttempt)
		teacher.GET("/assessments/:id/analytics", c.analytics.GetAnalytics)

		teacher.POST("/rubrics", c.grading.CreateRubric)
		teacher.GET("/rubrics", c.grading.ListRubrics)
		teacher.GET("/rubrics/:id", c.grading.GetRubric)
		teacher.PUT("/rubrics/:id", c.grading.UpdateRubric)
		teacher.DELETE("/rubrics/:id", c.grading.DeleteRubric)
		teacher.POST("/rubrics/:id/evaluate", c.grading.EvaluateRubric)
	}
}
