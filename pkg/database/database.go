package database

import (
	"fmt"
	"log"

	"lms_assessment_backend/internal/config"
	"lms_assessment_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	// TranslateError 把驱动的重复键错误翻译成 gorm.ErrDuplicatedKey，
	// StartAttempt 的重试循环依赖这一点。
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Assessment{},
		&model.Question{},
		&model.AssessmentAttempt{},
		&model.AssessmentResponse{},
		&model.Rubric{},
		&model.RubricCriterion{},
	)
}
