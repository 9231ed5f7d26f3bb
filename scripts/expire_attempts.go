// 手动批量过期超时作答脚本
//
// 服务端会在下一次触达时惰性地把超时的 in_progress 作答置为 expired，
// 长期无人触达的记录则一直停留在 in_progress。此脚本用于批量清理，
// 例如学期结束归档前执行一次。
//
// 用法: go run scripts/expire_attempts.go

package main

import (
	"log"
	"os"
	"time"

	"lms_assessment_backend/internal/config"
	"lms_assessment_backend/internal/model"
	"lms_assessment_backend/pkg/database"
	"lms_assessment_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	grace := time.Duration(cfg.Grading.ExpiryGraceSeconds) * time.Second
	if grace <= 0 {
		grace = 30 * time.Second
	}

	var assessments []model.Assessment
	if err := db.Where("time_limit > 0").Find(&assessments).Error; err != nil {
		log.Fatalf("查询测验失败: %v", err)
	}

	var total int64
	for _, a := range assessments {
		deadline := time.Now().Add(-time.Duration(a.TimeLimit)*time.Minute - grace)
		res := db.Model(&model.AssessmentAttempt{}).
			Where("assessment_id = ? AND status = ? AND started_at < ?",
				a.ID, model.AttemptInProgress, deadline).
			Update("status", model.AttemptExpired)
		if res.Error != nil {
			log.Fatalf("过期作答更新失败 (assessment %d): %v", a.ID, res.Error)
		}
		total += res.RowsAffected
	}

	log.Printf("已过期 %d 条超时作答记录", total)
}
