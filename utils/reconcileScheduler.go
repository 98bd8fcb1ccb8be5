package utils

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"lms/database"
	"lms/models"
	"lms/storage"
)

// logReconcile logs reconciliation events with timestamp
func logReconcile(message string) {
	log.Printf("[RECONCILE %s] %s", time.Now().Format(time.RFC3339), message)
}

// SweepDanglingCourseContent soft deletes assignments and lectures whose
// course no longer exists. Course deletion cascades in a transaction,
// so the sweep normally finds nothing; it is the repair path for a
// cascade interrupted mid-flight.
func SweepDanglingCourseContent(db *gorm.DB) (int64, error) {
	deadCourses := func() *gorm.DB {
		return db.Model(&models.Course{}).Select("id").Where("is_deleted = ?", true)
	}

	res := db.Model(&models.Assignment{}).
		Where("is_deleted = ? AND course_id IN (?)", false, deadCourses()).
		Update("is_deleted", true)
	if res.Error != nil {
		return 0, res.Error
	}
	repaired := res.RowsAffected

	res = db.Model(&models.Lecture{}).
		Where("is_deleted = ? AND course_id IN (?)", false, deadCourses()).
		Update("is_deleted", true)
	if res.Error != nil {
		return repaired, res.Error
	}
	repaired += res.RowsAffected

	return repaired, nil
}

// SweepOrphanedVideos retries blob deletion for deleted lectures whose
// video was not freed at delete time.
func SweepOrphanedVideos(db *gorm.DB) int {
	var lectures []models.Lecture
	if err := db.Where("is_deleted = ? AND video_storage_id <> ''", true).Find(&lectures).Error; err != nil {
		logReconcile("Error fetching orphaned videos: " + err.Error())
		return 0
	}

	freed := 0
	for _, lecture := range lectures {
		if err := storage.Store.Delete(lecture.VideoStorageID, storage.KindVideo); err != nil {
			logReconcile("Failed to delete video " + lecture.VideoStorageID + ": " + err.Error())
			continue
		}
		db.Model(&models.Lecture{}).Where("id = ?", lecture.ID).Update("video_storage_id", "")
		freed++
	}
	return freed
}

func runReconciliation() {
	db := database.Database.Db

	repaired, err := SweepDanglingCourseContent(db)
	if err != nil {
		logReconcile("Consistency sweep failed: " + err.Error())
		return
	}
	if repaired > 0 {
		logReconcile("Repaired dangling course content rows")
	}

	if freed := SweepOrphanedVideos(db); freed > 0 {
		logReconcile("Freed orphaned lecture videos")
	}
}

// InitializeReconcileScheduler starts the periodic consistency sweep
func InitializeReconcileScheduler() *cron.Cron {
	c := cron.New()

	// Every 15 minutes
	c.AddFunc("*/15 * * * *", runReconciliation)
	c.Start()

	logReconcile("Reconciliation scheduler started - runs every 15 minutes")
	return c
}
