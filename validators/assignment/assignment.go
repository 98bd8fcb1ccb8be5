package assignmentValidator

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

// parseDueDate accepts RFC3339 timestamps and plain dates.
func parseDueDate(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		// A bare date means end of that day
		return t.Add(24*time.Hour - time.Second), true
	}
	return time.Time{}, false
}

// AssignmentID validates the :id route parameter
func AssignmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params("id"))
		if idStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Assignment ID is required!", nil)
		}

		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Assignment ID!", nil)
		}

		c.Locals("assignmentID", id)
		return c.Next()
	}
}

func CreateAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			DueDate     string   `json:"due_date"`
			MaxMarks    *float64 `json:"max_marks"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Title
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Description
		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		} else if len(strings.TrimSpace(reqData.Description)) < 10 {
			errors["description"] = "Description must be at least 10 characters long!"
		}

		// Validate DueDate
		var dueDate time.Time
		if strings.TrimSpace(reqData.DueDate) == "" {
			errors["due_date"] = "Due date is required!"
		} else {
			parsed, ok := parseDueDate(reqData.DueDate)
			if !ok {
				errors["due_date"] = "Due date must be a valid date!"
			} else {
				dueDate = parsed
			}
		}

		// Validate MaxMarks
		if reqData.MaxMarks != nil && *reqData.MaxMarks <= 0 {
			errors["max_marks"] = "Max marks must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssignment", reqData)
		c.Locals("dueDate", dueDate)
		return c.Next()
	}
}

func UpdateAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			DueDate     string   `json:"due_date"`
			MaxMarks    *float64 `json:"max_marks"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != "" && len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}
		if reqData.Description != "" && len(strings.TrimSpace(reqData.Description)) < 10 {
			errors["description"] = "Description must be at least 10 characters long!"
		}
		if reqData.MaxMarks != nil && *reqData.MaxMarks <= 0 {
			errors["max_marks"] = "Max marks must be greater than 0!"
		}

		if reqData.DueDate != "" {
			dueDate, ok := parseDueDate(reqData.DueDate)
			if !ok {
				errors["due_date"] = "Due date must be a valid date!"
			} else {
				c.Locals("dueDate", dueDate)
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedAssignmentUpdate", reqData)
		return c.Next()
	}
}

// SubmitAssignment validates the multipart submission form. Attached
// files are optional; content is not.
func SubmitAssignment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		content := strings.TrimSpace(c.FormValue("content"))
		if content == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"content": "Content is required!",
			})
		}

		c.Locals("submissionContent", content)
		return c.Next()
	}
}

func GradeSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			StudentID uint     `json:"student_id"`
			Marks     *float64 `json:"marks"`
			Feedback  string   `json:"feedback"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.StudentID == 0 {
			errors["student_id"] = "Student ID is required!"
		}
		if reqData.Marks == nil {
			errors["marks"] = "Marks are required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrade", reqData)
		return c.Next()
	}
}
