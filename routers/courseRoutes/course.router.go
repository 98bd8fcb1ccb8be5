package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	assignmentController "lms/controllers/assignment"
	courseController "lms/controllers/course"
	lectureController "lms/controllers/lecture"
	"lms/middleware"
	assignmentValidator "lms/validators/assignment"
	courseValidator "lms/validators/course"
	lectureValidator "lms/validators/lecture"
)

// SetupCourseRoutes sets up course, enrollment and course-scoped
// assignment/lecture routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course CRUD and publishing
	courseGroup.Post("/create", middleware.JWTMiddleware, courseValidator.CreateCourse(), courseController.CreateCourse)
	courseGroup.Get("/list", middleware.JWTMiddleware, courseValidator.CourseList(), courseController.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, courseValidator.CourseID(), courseController.GetCourseDetails)
	courseGroup.Post("/:id/publish", middleware.JWTMiddleware, courseValidator.PublishCourse(), courseController.PublishCourse)
	courseGroup.Delete("/:id", middleware.JWTMiddleware, courseValidator.CourseID(), courseController.DeleteCourse)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, courseValidator.CourseID(), courseController.EnrollInCourse)
	courseGroup.Get("/:id/students", middleware.JWTMiddleware, courseValidator.CourseID(), courseController.GetEnrolledStudents)

	// Assignments within a course
	courseGroup.Post("/:id/assignment", middleware.JWTMiddleware, courseValidator.CourseID(), assignmentValidator.CreateAssignment(), assignmentController.CreateAssignment)
	courseGroup.Get("/:id/assignments", middleware.JWTMiddleware, courseValidator.CourseID(), assignmentController.GetCourseAssignments)

	// Lectures within a course
	courseGroup.Post("/:id/lecture", middleware.JWTMiddleware, courseValidator.CourseID(), lectureValidator.UploadLecture(), lectureController.UploadLecture)
	courseGroup.Get("/:id/lectures", middleware.JWTMiddleware, courseValidator.CourseID(), lectureController.GetCourseLectures)
}
