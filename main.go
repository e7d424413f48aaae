package main

import (
	"fmt"
	"log"
	"os"
	"time"

	_ "e_queue/docs"
	"e_queue/internal/auth"
	"e_queue/internal/engine"
	"e_queue/internal/handlers"
	"e_queue/internal/models"
	"e_queue/internal/storage"
	"e_queue/internal/tasks"
	"e_queue/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Электронная очередь для заведений
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		err := godotenv.Load()
		if err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(&models.User{}, &models.Business{}, &models.Queue{}, &models.QueueEntry{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	go ws.HubInstance.Run()

	handlers.Engine = engine.New(func(queueID uint) engine.Ledger {
		return engine.NewGormLedger(storage.DB, queueID)
	}, ws.HubInstance, 30*time.Minute)

	tasks.InitScheduler(handlers.Engine)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/refresh", handlers.RefreshToken)
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/businesses", handlers.GetBusinessesHandler)
		apiGroup.GET("/queues/:id/status", handlers.GetQueueStatusHandler)
		apiGroup.GET("/queues/:id/ws", ws.QueueWebSocketHandler)
	}

	profile := r.Group("/profile", auth.AuthMiddleware())
	{
		profile.GET("/queues", handlers.GetUserQueuesHandler)
	}

	queues := r.Group("/api/queues", auth.AuthMiddleware())
	{
		queues.POST("/:id/join", handlers.JoinQueueHandler)
		queues.POST("/:id/leave", handlers.LeaveQueueHandler)
	}

	staff := r.Group("/api/staff", auth.AuthMiddleware(), auth.StaffMiddleware())
	{
		staff.POST("/businesses", handlers.CreateBusinessHandler)
		staff.POST("/queues", handlers.CreateQueueHandler)
		staff.POST("/queues/:id/walkin", handlers.AddWalkInHandler)
		staff.POST("/queues/:id/next", handlers.CallNextHandler)
		staff.POST("/queues/:id/entries/:entryId/status", handlers.SetEntryStatusHandler)
		staff.POST("/queues/:id/open", handlers.OpenQueueHandler)
		staff.POST("/queues/:id/close", handlers.CloseQueueHandler)
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}
