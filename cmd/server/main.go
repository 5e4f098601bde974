// Package main runs the attachment management HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/attachpro/backend/config"
	"github.com/attachpro/backend/internal/attendance"
	"github.com/attachpro/backend/internal/audit"
	"github.com/attachpro/backend/internal/auth"
	"github.com/attachpro/backend/internal/logbook"
	"github.com/attachpro/backend/internal/meetings"
	"github.com/attachpro/backend/internal/middleware"
	"github.com/attachpro/backend/internal/refine"
	"github.com/attachpro/backend/internal/reports"
	"github.com/attachpro/backend/internal/schools"
	"github.com/attachpro/backend/internal/students"
	"github.com/attachpro/backend/internal/worker"
	"github.com/attachpro/backend/pkg/database"
	"github.com/attachpro/backend/pkg/mailer"
	"github.com/attachpro/backend/pkg/queue"
	"github.com/attachpro/backend/pkg/redis"
	"github.com/attachpro/backend/pkg/response"
	"github.com/attachpro/backend/pkg/storage"
	"github.com/attachpro/backend/pkg/utils"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			UploadsBucket:        cfg.AWS.UploadsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	smtpMailer := mailer.NewSMTP(mailer.Config{
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SMTPHost:    cfg.Email.SMTPHost,
		SMTPPort:    cfg.Email.SMTPPort,
		SMTPUser:    cfg.Email.SMTPUser,
		SMTPPass:    cfg.Email.SMTPPass,
	}, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Audit trail
	auditRepo := audit.NewRepository(pool)
	recorder := audit.NewRecorder(auditRepo, logger)
	auditHandler := audit.NewHandler(auditRepo, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, smtpMailer, jobQueue, recorder, logger)

	// Schools
	schoolRepo := schools.NewRepository(pool, authRepo)
	schoolHandler := schools.NewHandler(schoolRepo, jobQueue, recorder, s3Client, logger)

	// Students and supervisors
	bulkHash, err := utils.HashPassword(cfg.Bulk.DefaultPassword)
	if err != nil {
		logger.Fatal("hash bulk password", zap.Error(err))
	}
	studentRepo := students.NewRepository(pool, authRepo)
	studentHandler := students.NewHandler(studentRepo, authRepo, schoolRepo, recorder, bulkHash, logger)

	// Meetings
	meetingRepo := meetings.NewRepository(pool)
	meetingHandler := meetings.NewHandler(meetingRepo, authRepo, studentRepo, recorder, logger)

	// Logbook with optional text refinement
	refiner := refine.NewClient(time.Duration(cfg.Refiner.DelayMs)*time.Millisecond, logger)
	logbookRepo := logbook.NewRepository(pool)
	logbookHandler := logbook.NewHandler(logbookRepo, studentRepo, refiner, s3Client, recorder, logger)

	// Attendance
	attendanceRepo := attendance.NewRepository(pool)
	attendanceHandler := attendance.NewHandler(attendanceRepo, studentRepo, logger)

	// Reports
	reportRepo := reports.NewRepository(pool)
	reportHandler := reports.NewHandler(reportRepo, studentRepo, logger)

	emailProcessor := worker.NewEmailProcessor(smtpMailer, jobQueue, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.Authenticate(jwtService, authRepo))
	{
		api.POST("/auth/change-password", authHandler.ChangePassword)

		// Schools (platform administration)
		api.POST("/schools", middleware.RequireSuperAdmin(), schoolHandler.Create)
		api.GET("/schools", middleware.RequireSuperAdmin(), schoolHandler.List)
		api.PATCH("/schools/:id/status", middleware.RequireSuperAdmin(), schoolHandler.UpdateStatus)

		// School self-service
		api.GET("/schools/me", middleware.RequirePermission(middleware.OpSchoolSelf), schoolHandler.GetMine)
		api.PATCH("/schools/me", middleware.RequirePermission(middleware.OpSchoolSelf), schoolHandler.UpdateMine)
		api.POST("/schools/me/logo", middleware.RequirePermission(middleware.OpSchoolSelf), schoolHandler.UploadLogo)

		// Students
		api.POST("/students", middleware.RequirePermission(middleware.OpStudentManage), studentHandler.Create)
		api.POST("/students/bulk", middleware.RequirePermission(middleware.OpStudentManage), studentHandler.BulkImport)
		api.GET("/students", middleware.RequirePermission(middleware.OpStudentManage), studentHandler.List)
		api.GET("/students/:id", middleware.RequirePermission(middleware.OpStudentManage), studentHandler.Get)
		api.PATCH("/students/:id/supervisors", middleware.RequirePermission(middleware.OpStudentManage), studentHandler.AssignSupervisors)
		api.GET("/students/me", studentHandler.Me)
		api.PATCH("/students/me", studentHandler.UpdateMe)

		// Supervisors
		api.POST("/supervisors", middleware.RequirePermission(middleware.OpSupervisorManage), studentHandler.CreateSupervisor)
		api.GET("/supervisors", middleware.RequirePermission(middleware.OpSupervisorManage), studentHandler.ListSupervisors)

		// Meetings
		api.POST("/meetings", middleware.RequirePermission(middleware.OpMeetingCreate), meetingHandler.Create)
		api.POST("/meetings/:id/respond", middleware.RequirePermission(middleware.OpMeetingRespond), meetingHandler.Respond)
		api.GET("/meetings", middleware.RequirePermission(middleware.OpMeetingList), meetingHandler.List)
		api.GET("/meetings/:id", middleware.RequirePermission(middleware.OpMeetingList), meetingHandler.Get)

		// Logbook
		api.POST("/logbook", middleware.RequirePermission(middleware.OpLogbookWrite), logbookHandler.Create)
		api.PATCH("/logbook/:id/review", middleware.RequirePermission(middleware.OpLogbookReview), logbookHandler.Review)
		api.GET("/logbook", middleware.RequirePermission(middleware.OpLogbookList), logbookHandler.List)

		// Attendance
		api.POST("/attendance/check-in", middleware.RequirePermission(middleware.OpAttendanceWrite), attendanceHandler.CheckIn)
		api.POST("/attendance/check-out", middleware.RequirePermission(middleware.OpAttendanceWrite), attendanceHandler.CheckOut)
		api.GET("/attendance", middleware.RequirePermission(middleware.OpAttendanceRead), attendanceHandler.List)
		api.GET("/attendance/summary", middleware.RequirePermission(middleware.OpAttendanceRead), attendanceHandler.Summary)

		// Reports
		api.GET("/reports/overview", middleware.RequirePermission(middleware.OpReportsView), reportHandler.Overview)
		api.GET("/reports/students.csv", middleware.RequirePermission(middleware.OpReportsView), reportHandler.ExportStudents)

		// Audit trail
		api.GET("/audit-logs", middleware.RequirePermission(middleware.OpAuditView), auditHandler.List)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (transactional email delivery)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go emailProcessor.Run(workerCtx)
	logger.Info("email worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
