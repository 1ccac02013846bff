package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"applyflow/config"
	"applyflow/controllers"
	"applyflow/database"
	"applyflow/middleware"
	"applyflow/services"
	"applyflow/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		utils.LogWarn("no .env file found, using process environment")
	}

	cfg := config.GetAppConfig()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := database.InitSchema(db); err != nil {
		log.Fatalf("schema init failed: %v", err)
	}

	storage, err := services.NewS3Service(cfg.AWS)
	if err != nil {
		log.Fatalf("document storage unavailable: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret)
	notifier := services.NewLogNotifier(utils.GlobalLogger)

	applications := controllers.NewApplicationController(db, notifier)
	wizard := controllers.NewWizardController(applications, storage)
	limiters := middleware.CreateRateLimiters()

	r := gin.Default()
	r.Use(cors.Default())
	// Upload requests carry up to three documents of 5 MiB each plus form
	// overhead.
	r.Use(middleware.MaxRequestSize(16 << 20))

	api := r.Group("/api", middleware.Auth(jwtService))
	candidate := api.Group("", middleware.RequireRole(services.RoleCandidate))

	candidate.GET("/opportunities/:id/eligibility", limiters["general"].Limit(), applications.CheckEligibility)
	candidate.POST("/opportunities/:id/apply", limiters["submit"].Limit(), middleware.ValidateJSON(), applications.Submit)
	candidate.POST("/opportunities/:id/quick-apply", limiters["submit"].Limit(), applications.QuickApplyHandler)
	candidate.GET("/applications", limiters["general"].Limit(), applications.List)
	candidate.POST("/applications/:id/withdraw", limiters["general"].Limit(), applications.Withdraw)

	wz := candidate.Group("/opportunities/:id/wizard")
	wz.POST("", wizard.Open)
	wz.GET("", wizard.State)
	wz.PUT("", middleware.ValidateJSON(), wizard.Update)
	wz.POST("/next", wizard.Next)
	wz.POST("/back", wizard.Back)
	wz.POST("/documents", limiters["upload"].Limit(), middleware.ValidateContentType("multipart/form-data"), wizard.UploadDocuments)
	wz.GET("/documents/*key", limiters["general"].Limit(), wizard.DocumentLink)
	wz.DELETE("/documents/*key", wizard.RemoveDocument)
	wz.POST("/submit", limiters["submit"].Limit(), wizard.Submit)
	wz.DELETE("", wizard.Close)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
