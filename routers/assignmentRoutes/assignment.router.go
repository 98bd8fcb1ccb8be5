package assignmentRoutes

import (
	"github.com/gofiber/fiber/v2"

	assignmentController "lms/controllers/assignment"
	"lms/middleware"
	assignmentValidator "lms/validators/assignment"
)

// SetupAssignmentRoutes sets up assignment mutation, submission and
// grading routes
func SetupAssignmentRoutes(app *fiber.App) {
	assignmentGroup := app.Group("/assignment")

	assignmentGroup.Put("/:id", middleware.JWTMiddleware, assignmentValidator.AssignmentID(), assignmentValidator.UpdateAssignment(), assignmentController.UpdateAssignment)
	assignmentGroup.Delete("/:id", middleware.JWTMiddleware, assignmentValidator.AssignmentID(), assignmentController.DeleteAssignment)

	// Submissions
	assignmentGroup.Post("/:id/submit", middleware.JWTMiddleware, assignmentValidator.AssignmentID(), assignmentValidator.SubmitAssignment(), assignmentController.SubmitAssignment)
	assignmentGroup.Get("/:id/submission", middleware.JWTMiddleware, assignmentValidator.AssignmentID(), assignmentController.GetMySubmission)
	assignmentGroup.Get("/:id/submissions", middleware.JWTMiddleware, assignmentValidator.AssignmentID(), assignmentController.GetSubmissions)

	// Grading
	assignmentGroup.Post("/:id/grade", middleware.JWTMiddleware, assignmentValidator.AssignmentID(), assignmentValidator.GradeSubmission(), assignmentController.GradeSubmission)
}
