package lectureRoutes

import (
	"github.com/gofiber/fiber/v2"

	lectureController "lms/controllers/lecture"
	"lms/middleware"
	lectureValidator "lms/validators/lecture"
)

// SetupLectureRoutes sets up lecture mutation and resource routes
func SetupLectureRoutes(app *fiber.App) {
	lectureGroup := app.Group("/lecture")

	lectureGroup.Put("/:id", middleware.JWTMiddleware, lectureValidator.LectureID(), lectureValidator.UpdateLecture(), lectureController.UpdateLecture)
	lectureGroup.Delete("/:id", middleware.JWTMiddleware, lectureValidator.LectureID(), lectureController.DeleteLecture)
	lectureGroup.Post("/:id/resource", middleware.JWTMiddleware, lectureValidator.LectureID(), lectureValidator.AddResource(), lectureController.AddResource)
}
