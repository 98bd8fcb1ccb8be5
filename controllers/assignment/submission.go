package assignmentController

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/storage"
)

// SubmitAssignment creates the requesting student's submission for an
// assignment. Each attached file is uploaded independently; a failed
// upload is logged and omitted, never fatal to the submission. The
// deadline guard runs before any upload; the stored status is derived
// again at the final write, so work whose uploads straddled the
// deadline is recorded as late.
func SubmitAssignment(c *fiber.Ctx) error {
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

	enrolled := models.IsEnrolled(database.Database.Db, user.ID, assignment.CourseID)
	if !middleware.CanSubmit(user, enrolled) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Enrolled students only.", nil)
	}

	content := c.Locals("submissionContent").(string)

	if !assignment.AcceptingSubmissions(time.Now()) {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"due_date": "Assignment deadline has passed!",
		})
	}

	// Friendly duplicate check; the unique index below is the real guard.
	var existing models.Submission
	if err := database.Database.Db.
		Where("assignment_id = ? AND student_id = ?", assignment.ID, user.ID).
		First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Assignment already submitted!", nil)
	}

	// Uploads run before the insert and hold no database state.
	var attachments []models.Attachment
	if form, err := c.MultipartForm(); err == nil && form != nil {
		attachments = uploadAttachments(form.File["files"])
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    user.ID,
		Content:      content,
		Status:       assignment.SubmissionStatusAt(time.Now()),
	}
	if err := submission.SetAttachments(attachments); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to encode attachments!", nil)
	}

	if err := database.Database.Db.Create(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Assignment already submitted!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit assignment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Assignment submitted successfully!", submission)
}

// GetMySubmission returns the requesting student's own submission.
func GetMySubmission(c *fiber.Ctx) error {
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

	enrolled := models.IsEnrolled(database.Database.Db, user.ID, assignment.CourseID)
	if !middleware.CanSubmit(user, enrolled) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Enrolled students only.", nil)
	}

	var submission models.Submission
	if err := database.Database.Db.
		Where("assignment_id = ? AND student_id = ?", assignment.ID, user.ID).
		First(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No submission yet!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched successfully!", submission)
}

// uploadAttachments stores each file via the blob store, skipping files
// that fail to upload.
func uploadAttachments(files []*multipart.FileHeader) []models.Attachment {
	var attachments []models.Attachment
	for _, file := range files {
		data, err := readMultipartFile(file)
		if err != nil {
			log.Printf("Skipping attachment %s: %v", file.Filename, err)
			continue
		}

		result, err := storage.Store.Upload(data, storage.UploadOptions{
			Folder:   "submissions",
			Filename: file.Filename,
			Kind:     storage.KindAttachment,
		})
		if err != nil {
			log.Printf("Skipping attachment %s: %v", file.Filename, err)
			continue
		}

		attachments = append(attachments, models.Attachment{
			Name:        file.Filename,
			URL:         result.URL,
			ContentType: file.Header.Get("Content-Type"),
		})
	}
	return attachments
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}
