package models

import "gorm.io/gorm"

// Course represents a learning course owned by an instructor
type Course struct {
	gorm.Model
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Level        string `json:"level" gorm:"default:'beginner'"`
	InstructorID uint   `json:"instructor_id" gorm:"index;not null"`
	ThumbnailURL string `json:"thumbnail_url"`
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false" json:"-"`
}

// Enrollment ties a student to a course. The composite unique index is
// the membership set: at most one live row per (student, course).
type Enrollment struct {
	gorm.Model
	UserID    uint `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID  uint `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	IsDeleted bool `gorm:"default:false" json:"-"`
}

// IsEnrolled reports whether the user has a live enrollment in the course.
func IsEnrolled(db *gorm.DB, userID, courseID uint) bool {
	var count int64
	db.Model(&Enrollment{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		Count(&count)
	return count > 0
}
