// Package testutil bootstraps an isolated application instance (SQLite
// database, local blob store, full route table) for controller tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	assignmentRoutes "lms/routers/assignmentRoutes"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	lectureRoutes "lms/routers/lectureRoutes"
	"lms/storage"
)

// Setup wires config, a fresh SQLite database and a local blob store
// into the package globals and returns the database handle.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	config.AppConfig = &config.Config{
		Port:      "0",
		JWTKey:    "test-secret",
		SaltRound: 4,
	}

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	storage.Store = storage.NewLocalStore(filepath.Join(dir, "uploads"), "/uploads")

	return db
}

// NewApp returns a fiber app with the full route table registered.
func NewApp() *fiber.App {
	app := fiber.New()
	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	assignmentRoutes.SetupAssignmentRoutes(app)
	lectureRoutes.SetupLectureRoutes(app)
	return app
}

// CreateUser inserts a user row. The password hash is a placeholder;
// tests authenticate with generated tokens, not logins.
func CreateUser(t *testing.T, db *gorm.DB, name, email, role string) models.User {
	t.Helper()

	user := models.User{
		Name:     name,
		Email:    email,
		Role:     role,
		Password: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

// TokenFor issues a JWT for the user.
func TokenFor(t *testing.T, user models.User) string {
	t.Helper()

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// DoJSON performs a JSON request against the app.
func DoJSON(t *testing.T, app *fiber.App, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	return resp
}

// FormFile is one file part of a multipart request.
type FormFile struct {
	Field   string
	Name    string
	Content []byte
}

// DoMultipart performs a multipart/form-data request against the app.
func DoMultipart(t *testing.T, app *fiber.App, method, url, token string, fields map[string]string, files []FormFile) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			t.Fatalf("failed to create file part %s: %v", file.Name, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			t.Fatalf("failed to write file part %s: %v", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	return resp
}

// ParseBody decodes the standard JSON response envelope.
func ParseBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", raw, err)
	}
	return body
}

// ErrStoreDown is what FailingStore returns from every call.
var ErrStoreDown = errors.New("blob store unavailable")

// FailingStore is a BlobStore whose every upload and delete fails, for
// exercising storage-failure handling.
type FailingStore struct{}

func (FailingStore) Upload(data []byte, opts storage.UploadOptions) (*storage.UploadResult, error) {
	return nil, ErrStoreDown
}

func (FailingStore) Delete(storageID, kind string) error {
	return ErrStoreDown
}

// MP4Header is a minimal valid MP4 file prefix that sniffs as video/mp4.
var MP4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'i', 's', 'o', '2',
}
