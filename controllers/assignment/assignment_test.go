package assignmentController_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lms/models"
	"lms/storage"
	"lms/testutil"
)

func setupCourse(t *testing.T) (*gorm.DB, models.User, models.User, models.Course) {
	db := testutil.Setup(t)

	instructor := testutil.CreateUser(t, db, "Ada", "ada@example.com", models.RoleInstructor)
	student := testutil.CreateUser(t, db, "Sam", "sam@example.com", models.RoleStudent)

	course := models.Course{
		Title:        "Intro to CS",
		Description:  "Fundamentals of computer science",
		Category:     "cs",
		Level:        "beginner",
		InstructorID: instructor.ID,
		IsPublished:  true,
	}
	require.NoError(t, db.Create(&course).Error)
	require.NoError(t, db.Create(&models.Enrollment{UserID: student.ID, CourseID: course.ID}).Error)

	return db, instructor, student, course
}

func createAssignment(t *testing.T, db *gorm.DB, course models.Course, due time.Time) models.Assignment {
	assignment := models.Assignment{
		CourseID:     course.ID,
		InstructorID: course.InstructorID,
		Title:        "Homework 1",
		Description:  "Answer all questions in full sentences",
		DueDate:      due,
		MaxMarks:     100,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}

func TestCreateAssignment(t *testing.T) {
	_, instructor, student, course := setupCourse(t)
	app := testutil.NewApp()

	url := fmt.Sprintf("/course/%d/assignment", course.ID)
	payload := map[string]interface{}{
		"title":       "Homework 1",
		"description": "Answer all questions in full sentences",
		"due_date":    time.Now().Add(time.Hour).Format(time.RFC3339),
	}

	resp := testutil.DoJSON(t, app, "POST", url, testutil.TokenFor(t, instructor), payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := testutil.ParseBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(course.InstructorID), data["instructor_id"], "instructor snapshot taken from course")
	assert.Equal(t, float64(100), data["max_marks"], "max marks defaults to 100")

	// Students cannot create assignments
	resp = testutil.DoJSON(t, app, "POST", url, testutil.TokenFor(t, student), payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateAssignmentValidation(t *testing.T) {
	_, instructor, _, course := setupCourse(t)
	app := testutil.NewApp()

	url := fmt.Sprintf("/course/%d/assignment", course.ID)
	resp := testutil.DoJSON(t, app, "POST", url, testutil.TokenFor(t, instructor), map[string]interface{}{
		"title":       "ab",
		"description": "too short",
		"due_date":    "not-a-date",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := testutil.ParseBody(t, resp)
	errors := body["data"].(map[string]interface{})
	assert.Contains(t, errors, "title")
	assert.Contains(t, errors, "description")
	assert.Contains(t, errors, "due_date")
}

func TestCreateAssignmentWrongInstructor(t *testing.T) {
	db, _, _, course := setupCourse(t)
	app := testutil.NewApp()

	other := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleInstructor)

	resp := testutil.DoJSON(t, app, "POST", fmt.Sprintf("/course/%d/assignment", course.ID), testutil.TokenFor(t, other), map[string]interface{}{
		"title":       "Homework 1",
		"description": "Answer all questions in full sentences",
		"due_date":    time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestListAssignments(t *testing.T) {
	db, instructor, student, course := setupCourse(t)
	app := testutil.NewApp()

	first := createAssignment(t, db, course, time.Now().Add(time.Hour))
	second := models.Assignment{
		CourseID:     course.ID,
		InstructorID: course.InstructorID,
		Title:        "Homework 2",
		Description:  "A follow-up exercise on the same topic",
		DueDate:      time.Now().Add(2 * time.Hour),
		MaxMarks:     50,
		Model:        gorm.Model{CreatedAt: first.CreatedAt.Add(time.Minute)},
	}
	require.NoError(t, db.Create(&second).Error)

	url := fmt.Sprintf("/course/%d/assignments", course.ID)

	for _, actor := range []models.User{instructor, student} {
		resp := testutil.DoJSON(t, app, "GET", url, testutil.TokenFor(t, actor), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := testutil.ParseBody(t, resp)
		assignments := body["data"].([]interface{})
		require.Len(t, assignments, 2)
		newest := assignments[0].(map[string]interface{})
		assert.Equal(t, "Homework 2", newest["title"], "newest first")
	}

	// Non-enrolled student is denied
	outsider := testutil.CreateUser(t, db, "Out", "out@example.com", models.RoleStudent)
	resp := testutil.DoJSON(t, app, "GET", url, testutil.TokenFor(t, outsider), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSubmitAssignment(t *testing.T) {
	db, _, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	url := fmt.Sprintf("/assignment/%d/submit", assignment.ID)

	resp := testutil.DoMultipart(t, app, "POST", url, testutil.TokenFor(t, student),
		map[string]string{"content": "answer"},
		[]testutil.FormFile{{Field: "files", Name: "essay.txt", Content: []byte("my essay")}},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := testutil.ParseBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, models.SubmissionStatusSubmitted, data["status"])

	var stored models.Submission
	require.NoError(t, db.Where("assignment_id = ? AND student_id = ?", assignment.ID, student.ID).First(&stored).Error)
	attachments := stored.AttachmentList()
	require.Len(t, attachments, 1)
	assert.Equal(t, "essay.txt", attachments[0].Name)
	assert.NotEmpty(t, attachments[0].URL)
}

func TestSubmitAssignmentUploadFailureOmitsFile(t *testing.T) {
	db, _, student, course := setupCourse(t)
	app := testutil.NewApp()

	// A broken store must not block the submission itself
	storage.Store = testutil.FailingStore{}

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	url := fmt.Sprintf("/assignment/%d/submit", assignment.ID)

	resp := testutil.DoMultipart(t, app, "POST", url, testutil.TokenFor(t, student),
		map[string]string{"content": "answer"},
		[]testutil.FormFile{{Field: "files", Name: "essay.txt", Content: []byte("my essay")}},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var stored models.Submission
	require.NoError(t, db.Where("assignment_id = ? AND student_id = ?", assignment.ID, student.ID).First(&stored).Error)
	assert.Equal(t, models.SubmissionStatusSubmitted, stored.Status)
	assert.Empty(t, stored.AttachmentList(), "failed upload is omitted, not fatal")
}

func TestSubmitAssignmentDuplicate(t *testing.T) {
	db, _, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	url := fmt.Sprintf("/assignment/%d/submit", assignment.ID)
	token := testutil.TokenFor(t, student)

	resp := testutil.DoMultipart(t, app, "POST", url, token, map[string]string{"content": "answer"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = testutil.DoMultipart(t, app, "POST", url, token, map[string]string{"content": "answer again"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var count int64
	db.Model(&models.Submission{}).Where("assignment_id = ?", assignment.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubmitAssignmentUniqueIndexBackstop(t *testing.T) {
	db, _, student, course := setupCourse(t)

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))

	// Two racing inserts for the same (assignment, student): the second
	// must fail at the database even though it skipped the pre-check.
	first := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Content: "a", Status: models.SubmissionStatusSubmitted}
	require.NoError(t, db.Create(&first).Error)

	second := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Content: "b", Status: models.SubmissionStatusSubmitted}
	err := db.Create(&second).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestSubmitAssignmentPastDeadline(t *testing.T) {
	db, _, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(-time.Minute))
	url := fmt.Sprintf("/assignment/%d/submit", assignment.ID)

	resp := testutil.DoMultipart(t, app, "POST", url, testutil.TokenFor(t, student), map[string]string{"content": "too late"}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := testutil.ParseBody(t, resp)
	errors := body["data"].(map[string]interface{})
	assert.Contains(t, errors, "due_date")

	var count int64
	db.Model(&models.Submission{}).Where("assignment_id = ?", assignment.ID).Count(&count)
	assert.Equal(t, int64(0), count, "late submissions are rejected, never stored")
}

func TestSubmitAssignmentRequiresEnrollment(t *testing.T) {
	db, instructor, _, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	url := fmt.Sprintf("/assignment/%d/submit", assignment.ID)

	outsider := testutil.CreateUser(t, db, "Out", "out@example.com", models.RoleStudent)
	resp := testutil.DoMultipart(t, app, "POST", url, testutil.TokenFor(t, outsider), map[string]string{"content": "answer"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The instructor cannot submit either
	resp = testutil.DoMultipart(t, app, "POST", url, testutil.TokenFor(t, instructor), map[string]string{"content": "answer"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSubmitAssignmentEmptyContent(t *testing.T) {
	db, _, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	resp := testutil.DoMultipart(t, app, "POST", fmt.Sprintf("/assignment/%d/submit", assignment.ID),
		testutil.TokenFor(t, student), map[string]string{"content": "   "}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGradeSubmission(t *testing.T) {
	db, instructor, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	submission := models.Submission{AssignmentID: assignment.ID, StudentID: student.ID, Content: "answer", Status: models.SubmissionStatusSubmitted}
	require.NoError(t, db.Create(&submission).Error)

	url := fmt.Sprintf("/assignment/%d/grade", assignment.ID)
	token := testutil.TokenFor(t, instructor)

	resp := testutil.DoJSON(t, app, "POST", url, token, map[string]interface{}{
		"student_id": student.ID,
		"marks":      85,
		"feedback":   "good",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutil.ParseBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, models.SubmissionStatusGraded, data["status"])
	assert.Equal(t, float64(85), data["marks"])
	assert.Equal(t, "good", data["feedback"])

	// Re-grading overwrites and stays graded
	resp = testutil.DoJSON(t, app, "POST", url, token, map[string]interface{}{
		"student_id": student.ID,
		"marks":      90,
		"feedback":   "even better",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Submission
	require.NoError(t, db.First(&stored, submission.ID).Error)
	assert.Equal(t, models.SubmissionStatusGraded, stored.Status)
	require.NotNil(t, stored.Marks)
	assert.Equal(t, float64(90), *stored.Marks)
	assert.Equal(t, "even better", stored.Feedback)
}

func TestGradeSubmissionAuthorization(t *testing.T) {
	db, _, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID, StudentID: student.ID, Content: "answer", Status: models.SubmissionStatusSubmitted,
	}).Error)

	url := fmt.Sprintf("/assignment/%d/grade", assignment.ID)
	payload := map[string]interface{}{"student_id": student.ID, "marks": 50}

	// A different instructor is not the assignment's instructor
	other := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleInstructor)
	resp := testutil.DoJSON(t, app, "POST", url, testutil.TokenFor(t, other), payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The student cannot grade
	resp = testutil.DoJSON(t, app, "POST", url, testutil.TokenFor(t, student), payload)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGradeSubmissionNotFound(t *testing.T) {
	db, instructor, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))

	resp := testutil.DoJSON(t, app, "POST", fmt.Sprintf("/assignment/%d/grade", assignment.ID),
		testutil.TokenFor(t, instructor),
		map[string]interface{}{"student_id": student.ID, "marks": 50})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGradeSubmissionMarksRange(t *testing.T) {
	db, instructor, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID, StudentID: student.ID, Content: "answer", Status: models.SubmissionStatusSubmitted,
	}).Error)

	resp := testutil.DoJSON(t, app, "POST", fmt.Sprintf("/assignment/%d/grade", assignment.ID),
		testutil.TokenFor(t, instructor),
		map[string]interface{}{"student_id": student.ID, "marks": 150})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListSubmissions(t *testing.T) {
	db, instructor, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID, StudentID: student.ID, Content: "answer", Status: models.SubmissionStatusSubmitted,
	}).Error)

	url := fmt.Sprintf("/assignment/%d/submissions", assignment.ID)

	resp := testutil.DoJSON(t, app, "GET", url, testutil.TokenFor(t, instructor), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := testutil.ParseBody(t, resp)
	submissions := body["data"].([]interface{})
	require.Len(t, submissions, 1)
	entry := submissions[0].(map[string]interface{})
	studentInfo := entry["student"].(map[string]interface{})
	assert.Equal(t, "Sam", studentInfo["name"], "student identity resolved")
	assert.Equal(t, "sam@example.com", studentInfo["email"])

	// Only the assignment's instructor may list
	resp = testutil.DoJSON(t, app, "GET", url, testutil.TokenFor(t, student), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpdateAssignment(t *testing.T) {
	db, instructor, _, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))

	resp := testutil.DoJSON(t, app, "PUT", fmt.Sprintf("/assignment/%d", assignment.ID),
		testutil.TokenFor(t, instructor),
		map[string]interface{}{"title": "Homework 1 (revised)", "max_marks": 40})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Assignment
	require.NoError(t, db.First(&stored, assignment.ID).Error)
	assert.Equal(t, "Homework 1 (revised)", stored.Title)
	assert.Equal(t, float64(40), stored.MaxMarks)
	assert.Equal(t, "Answer all questions in full sentences", stored.Description, "unprovided fields untouched")
}

func TestDeleteAssignment(t *testing.T) {
	db, instructor, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID, StudentID: student.ID, Content: "answer", Status: models.SubmissionStatusSubmitted,
	}).Error)

	resp := testutil.DoJSON(t, app, "DELETE", fmt.Sprintf("/assignment/%d", assignment.ID),
		testutil.TokenFor(t, instructor), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The assignment no longer appears in the course listing
	resp = testutil.DoJSON(t, app, "GET", fmt.Sprintf("/course/%d/assignments", course.ID),
		testutil.TokenFor(t, instructor), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.ParseBody(t, resp)
	assert.Empty(t, body["data"], "deleted assignment never listed again")

	// Its submissions went with it
	var count int64
	db.Model(&models.Submission{}).Where("assignment_id = ?", assignment.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGetMySubmission(t *testing.T) {
	db, _, student, course := setupCourse(t)
	app := testutil.NewApp()

	assignment := createAssignment(t, db, course, time.Now().Add(time.Hour))
	token := testutil.TokenFor(t, student)
	url := fmt.Sprintf("/assignment/%d/submission", assignment.ID)

	resp := testutil.DoJSON(t, app, "GET", url, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, db.Create(&models.Submission{
		AssignmentID: assignment.ID, StudentID: student.ID, Content: "answer", Status: models.SubmissionStatusSubmitted,
	}).Error)

	resp = testutil.DoJSON(t, app, "GET", url, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.ParseBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "answer", data["content"])
}
