package assignmentController

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/database"
	"lms/middleware"
	"lms/models"
)

// CreateAssignment creates an assignment on a course. Only the course's
// instructor may create; the instructor reference is snapshotted onto
// the assignment and never re-derived afterwards.
func CreateAssignment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != models.RoleInstructor {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructor only.", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanManageCourse(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Course owner only.", nil)
	}

	reqData, ok := c.Locals("validatedAssignment").(*struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		DueDate     string   `json:"due_date"`
		MaxMarks    *float64 `json:"max_marks"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	dueDate := c.Locals("dueDate").(time.Time)

	maxMarks := 100.0
	if reqData.MaxMarks != nil {
		maxMarks = *reqData.MaxMarks
	}

	assignment := models.Assignment{
		CourseID:     course.ID,
		InstructorID: course.InstructorID,
		Title:        reqData.Title,
		Description:  reqData.Description,
		DueDate:      dueDate,
		MaxMarks:     maxMarks,
	}

	if err := database.Database.Db.Create(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment created successfully!", assignment)
}

// GetCourseAssignments lists a course's assignments, newest first.
// Visible to the course's instructor and enrolled students.
func GetCourseAssignments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	enrolled := models.IsEnrolled(database.Database.Db, user.ID, course.ID)
	if !middleware.CanViewCourseContent(user, course, enrolled) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Enroll in the course first.", nil)
	}

	var assignments []models.Assignment
	if err := database.Database.Db.
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("created_at desc").
		Find(&assignments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch assignments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignments fetched successfully!", assignments)
}

// UpdateAssignment updates assignment fields. Owner instructor only.
func UpdateAssignment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	var assignment models.Assignment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", assignmentID, false).First(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	if !middleware.CanGradeOrManageAssignment(user, assignment) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Assignment owner only.", nil)
	}

	reqData, ok := c.Locals("validatedAssignmentUpdate").(*struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		DueDate     string   `json:"due_date"`
		MaxMarks    *float64 `json:"max_marks"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		assignment.Title = reqData.Title
	}
	if reqData.Description != "" {
		assignment.Description = reqData.Description
	}
	if dueDate, ok := c.Locals("dueDate").(time.Time); ok {
		assignment.DueDate = dueDate
	}
	if reqData.MaxMarks != nil {
		assignment.MaxMarks = *reqData.MaxMarks
	}

	if err := database.Database.Db.Save(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment updated successfully!", assignment)
}

// DeleteAssignment soft deletes an assignment and its submissions as a
// single unit of work. Owner instructor only.
func DeleteAssignment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	var assignment models.Assignment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", assignmentID, false).First(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	if !middleware.CanGradeOrManageAssignment(user, assignment) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Assignment owner only.", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Assignment{}).Where("id = ?", assignment.ID).
			Update("is_deleted", true).Error; err != nil {
			return err
		}
		// Submissions have no independent lifecycle; they go with the
		// assignment.
		return tx.Where("assignment_id = ?", assignment.ID).Delete(&models.Submission{}).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Assignment deleted successfully!", nil)
}

// GetSubmissions lists all submissions of an assignment with student
// identity resolved. Owner instructor only.
func GetSubmissions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	var assignment models.Assignment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", assignmentID, false).First(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	if !middleware.CanGradeOrManageAssignment(user, assignment) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Assignment owner only.", nil)
	}

	var submissions []models.Submission
	if err := database.Database.Db.
		Where("assignment_id = ?", assignment.ID).
		Order("created_at asc").
		Find(&submissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submissions!", nil)
	}

	// Resolve student identities in one query
	studentIDs := make([]uint, 0, len(submissions))
	for _, submission := range submissions {
		studentIDs = append(studentIDs, submission.StudentID)
	}

	students, err := resolveStudents(database.Database.Db, studentIDs)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submissions!", nil)
	}

	result := make([]models.GradedSubmission, 0, len(submissions))
	for _, submission := range submissions {
		result = append(result, models.GradedSubmission{
			Submission: submission,
			Student:    students[submission.StudentID],
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", result)
}

// resolveStudents loads the public identity of each student id.
func resolveStudents(db *gorm.DB, ids []uint) (map[uint]models.PublicUser, error) {
	students := make(map[uint]models.PublicUser, len(ids))
	if len(ids) == 0 {
		return students, nil
	}

	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		students[u.ID] = u.Public()
	}
	return students, nil
}

// GradeSubmission records marks and feedback for a student's submission
// and moves it to graded. Re-grading overwrites marks and feedback and
// keeps the graded status.
func GradeSubmission(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	assignmentID := c.Locals("assignmentID").(int)

	var assignment models.Assignment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", assignmentID, false).First(&assignment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Assignment not found!", nil)
	}

	if !middleware.CanGradeOrManageAssignment(user, assignment) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Assignment owner only.", nil)
	}

	reqData, ok := c.Locals("validatedGrade").(*struct {
		StudentID uint     `json:"student_id"`
		Marks     *float64 `json:"marks"`
		Feedback  string   `json:"feedback"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if *reqData.Marks < 0 || *reqData.Marks > assignment.MaxMarks {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"marks": "Marks must be between 0 and the assignment's max marks!",
		})
	}

	var submission models.Submission
	err := database.Database.Db.
		Where("assignment_id = ? AND student_id = ?", assignment.ID, reqData.StudentID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found for this student!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submission!", nil)
	}

	submission.Marks = reqData.Marks
	submission.Feedback = reqData.Feedback
	submission.Status = models.SubmissionStatusGraded

	if err := database.Database.Db.Save(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade submission!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission graded successfully!", submission)
}
