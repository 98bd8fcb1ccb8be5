package authController_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lms/models"
	"lms/testutil"
)

func TestSignupAndLogin(t *testing.T) {
	db := testutil.Setup(t)
	app := testutil.NewApp()

	resp := testutil.DoJSON(t, app, "POST", "/auth/signup", "", map[string]interface{}{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "correct horse",
		"role":     models.RoleInstructor,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var user models.User
	require.NoError(t, db.Where("email = ?", "ada@example.com").First(&user).Error)
	assert.Equal(t, models.RoleInstructor, user.Role)
	assert.NotEqual(t, "correct horse", user.Password, "password stored hashed")

	resp = testutil.DoJSON(t, app, "POST", "/auth/login", "", map[string]interface{}{
		"email":    "ada@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := testutil.ParseBody(t, resp)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	// Wrong password
	resp = testutil.DoJSON(t, app, "POST", "/auth/login", "", map[string]interface{}{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupValidation(t *testing.T) {
	testutil.Setup(t)
	app := testutil.NewApp()

	resp := testutil.DoJSON(t, app, "POST", "/auth/signup", "", map[string]interface{}{
		"name":     "A",
		"email":    "not-an-email",
		"password": "short",
		"role":     "ADMIN",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSignupDuplicateEmail(t *testing.T) {
	db := testutil.Setup(t)
	app := testutil.NewApp()

	testutil.CreateUser(t, db, "Ada", "ada@example.com", models.RoleInstructor)

	resp := testutil.DoJSON(t, app, "POST", "/auth/signup", "", map[string]interface{}{
		"name":     "Ada Again",
		"email":    "ada@example.com",
		"password": "correct horse",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
