package lectureController

import (
	"io"
	"log"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/storage"
)

// UploadLecture creates a lecture on a course. The video file is
// mandatory and its upload is fatal on failure, unlike assignment
// attachments. The content-type guard runs before any store write.
func UploadLecture(c *fiber.Ctx) error {
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

	if !middleware.CanManageCourse(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Course owner only.", nil)
	}

	reqData, ok := c.Locals("validatedLecture").(*struct {
		Title           string `form:"title"`
		Description     string `form:"description"`
		OrderIndex      *int   `form:"order_index"`
		IsPreview       bool   `form:"is_preview"`
		Notes           string `form:"notes"`
		DurationSeconds int    `form:"duration_seconds"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	videoFile, err := c.FormFile("video")
	if err != nil {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"video": "Video file is required!",
		})
	}

	src, err := videoFile.Open()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to read video file!", nil)
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to read video file!", nil)
	}

	// Sniff the actual bytes; the client-supplied header is not trusted.
	if !strings.HasPrefix(mimetype.Detect(data).String(), "video/") {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"video": "File must be a video!",
		})
	}

	result, err := storage.Store.Upload(data, storage.UploadOptions{
		Folder:   "lectures",
		Filename: videoFile.Filename,
		Kind:     storage.KindVideo,
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Video upload failed!", nil)
	}

	// Append at the end of the course when no order was given
	orderIndex := 0
	if reqData.OrderIndex != nil {
		orderIndex = *reqData.OrderIndex
	} else {
		var maxOrder int
		database.Database.Db.Model(&models.Lecture{}).
			Where("course_id = ? AND is_deleted = ?", course.ID, false).
			Select("COALESCE(MAX(order_index), 0)").Scan(&maxOrder)
		orderIndex = maxOrder + 1
	}

	lecture := models.Lecture{
		CourseID:        course.ID,
		Title:           reqData.Title,
		Description:     reqData.Description,
		VideoURL:        result.URL,
		VideoStorageID:  result.StorageID,
		DurationSeconds: reqData.DurationSeconds,
		OrderIndex:      orderIndex,
		IsPreview:       reqData.IsPreview,
		Notes:           reqData.Notes,
	}
	if result.DurationSeconds > 0 {
		lecture.DurationSeconds = result.DurationSeconds
	}
	if err := lecture.SetResources(nil); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lecture!", nil)
	}

	if err := database.Database.Db.Create(&lecture).Error; err != nil {
		// Metadata write failed after the upload; free the blob.
		if delErr := storage.Store.Delete(result.StorageID, storage.KindVideo); delErr != nil {
			log.Printf("Failed to delete orphaned video %s: %v", result.StorageID, delErr)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lecture!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lecture uploaded successfully!", lecture)
}

// GetCourseLectures lists a course's lectures in display order.
// Non-enrolled callers only see preview lectures.
func GetCourseLectures(c *fiber.Ctx) error {
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

	query := database.Database.Db.
		Where("course_id = ? AND is_deleted = ?", course.ID, false).
		Order("order_index asc")
	if !middleware.CanViewCourseContent(user, course, enrolled) {
		query = query.Where("is_preview = ?", true)
	}

	var lectures []models.Lecture
	if err := query.Find(&lectures).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lectures!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lectures fetched successfully!", lectures)
}

// UpdateLecture updates lecture fields. Course owner only.
func UpdateLecture(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	lectureID := c.Locals("lectureID").(int)

	var lecture models.Lecture
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lectureID, false).First(&lecture).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lecture not found!", nil)
	}

	var course models.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lecture.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanManageCourse(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Course owner only.", nil)
	}

	reqData, ok := c.Locals("validatedLectureUpdate").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		OrderIndex  *int   `json:"order_index"`
		IsPreview   *bool  `json:"is_preview"`
		Notes       string `json:"notes"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		lecture.Title = reqData.Title
	}
	if reqData.Description != "" {
		lecture.Description = reqData.Description
	}
	if reqData.OrderIndex != nil {
		lecture.OrderIndex = *reqData.OrderIndex
	}
	if reqData.IsPreview != nil {
		lecture.IsPreview = *reqData.IsPreview
	}
	if reqData.Notes != "" {
		lecture.Notes = reqData.Notes
	}

	if err := database.Database.Db.Save(&lecture).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lecture!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lecture updated successfully!", lecture)
}

// DeleteLecture frees the stored video and soft deletes the lecture.
// A failed blob delete is logged, never fatal; the reconciliation
// sweep retries it.
func DeleteLecture(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	lectureID := c.Locals("lectureID").(int)

	var lecture models.Lecture
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lectureID, false).First(&lecture).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lecture not found!", nil)
	}

	var course models.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lecture.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanManageCourse(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Course owner only.", nil)
	}

	videoFreed := false
	if lecture.VideoStorageID != "" {
		if err := storage.Store.Delete(lecture.VideoStorageID, storage.KindVideo); err != nil {
			log.Printf("Failed to delete lecture video %s: %v", lecture.VideoStorageID, err)
		} else {
			videoFreed = true
		}
	}

	lecture.IsDeleted = true
	if videoFreed {
		lecture.VideoStorageID = ""
	}
	if err := database.Database.Db.Save(&lecture).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lecture!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lecture deleted successfully!", nil)
}

// AddResource appends supplementary material to a lecture. Course owner
// only; the resource type must be one of the accepted kinds.
func AddResource(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	lectureID := c.Locals("lectureID").(int)

	var lecture models.Lecture
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lectureID, false).First(&lecture).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lecture not found!", nil)
	}

	var course models.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lecture.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !middleware.CanManageCourse(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Course owner only.", nil)
	}

	reqData, ok := c.Locals("validatedResource").(*struct {
		Name string `json:"name"`
		URL  string `json:"url"`
		Type string `json:"type"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	resources := lecture.ResourceList()
	resources = append(resources, models.Resource{
		Name: reqData.Name,
		URL:  reqData.URL,
		Type: reqData.Type,
	})
	if err := lecture.SetResources(resources); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add resource!", nil)
	}

	if err := database.Database.Db.Save(&lecture).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add resource!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Resource added successfully!", lecture)
}
