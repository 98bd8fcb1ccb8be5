package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"lms/config"
	"lms/database"
	assignmentRoutes "lms/routers/assignmentRoutes"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	lectureRoutes "lms/routers/lectureRoutes"
	"lms/storage"
	"lms/utils"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	// Select the blob store backend
	if config.AppConfig.StorageBackend == "REMOTE" {
		storage.Store = storage.NewRemoteStore(config.AppConfig.StorageAPIURL, config.AppConfig.StorageAPIKey)
	} else {
		storage.Store = storage.NewLocalStore(config.AppConfig.UploadDir, config.AppConfig.UploadURL)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 200 * 1024 * 1024, // lecture videos
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve locally stored uploads
	if config.AppConfig.StorageBackend != "REMOTE" {
		app.Static(config.AppConfig.UploadURL, config.AppConfig.UploadDir)
	}

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	assignmentRoutes.SetupAssignmentRoutes(app)
	lectureRoutes.SetupLectureRoutes(app)

	reconciler := utils.InitializeReconcileScheduler()
	defer reconciler.Stop()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
