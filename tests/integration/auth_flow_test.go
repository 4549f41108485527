package integration

import (
	"context"
	"flag"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustack/trainer-portal/internal/models"
	"github.com/edustack/trainer-portal/internal/repositories"
	pkgauth "github.com/edustack/trainer-portal/pkg/auth"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		panic("failed to set up test database: " + err.Error())
	}
	testDB = db

	code := m.Run()

	testDB.Teardown(ctx)
	os.Exit(code)
}

func setupTest(t *testing.T) (*TestServer, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	require.NoError(t, testDB.CleanupTables(ctx))

	server, err := NewTestServer(testDB.DB)
	require.NoError(t, err)
	t.Cleanup(server.Close)

	return server, ctx
}

func TestLoginWithPermanentPassword(t *testing.T) {
	server, ctx := setupTest(t)

	courseID, err := SeedCourse(ctx, testDB.Pool, "Advanced Go")
	require.NoError(t, err)

	email := TestTrainerEmail("login")
	_, err = SeedTrainer(ctx, testDB.Pool, "Alice Trainer", email, SeedTrainerOptions{
		Password:     TestPassword,
		IsActive:     true,
		PortalAccess: true,
		CourseID:     &courseID,
	})
	require.NoError(t, err)

	resp, err := server.Request(http.MethodPost, "/api/trainer-auth/login", map[string]string{
		"email":    email,
		"password": TestPassword,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	loginResp, err := ExtractLoginResponse(resp)
	require.NoError(t, err)
	assert.True(t, loginResp.Success)
	assert.Equal(t, "Login successful", loginResp.Message)
	assert.False(t, loginResp.IsTempPassword)
	assert.NotEmpty(t, loginResp.Token)
	require.NotNil(t, loginResp.Trainer)
	assert.Equal(t, email, loginResp.Trainer.Email)
	require.NotNil(t, loginResp.Trainer.CourseName)
	assert.Equal(t, "Advanced Go", *loginResp.Trainer.CourseName)

	claims, err := server.TokenManager.Validate(loginResp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeFull, claims.Scope)

	// Login records last_login_at
	var lastLogin *time.Time
	err = testDB.Pool.QueryRow(ctx,
		`SELECT last_login_at FROM trainer WHERE email = $1`, email,
	).Scan(&lastLogin)
	require.NoError(t, err)
	assert.NotNil(t, lastLogin)
}

func TestLoginFailures(t *testing.T) {
	server, ctx := setupTest(t)

	activeEmail := TestTrainerEmail("active")
	_, err := SeedTrainer(ctx, testDB.Pool, "Active Trainer", activeEmail, SeedTrainerOptions{
		Password:     TestPassword,
		IsActive:     true,
		PortalAccess: true,
	})
	require.NoError(t, err)

	inactiveEmail := TestTrainerEmail("inactive")
	_, err = SeedTrainer(ctx, testDB.Pool, "Inactive Trainer", inactiveEmail, SeedTrainerOptions{
		Password:     TestPassword,
		IsActive:     false,
		PortalAccess: true,
	})
	require.NoError(t, err)

	noPortalEmail := TestTrainerEmail("noportal")
	_, err = SeedTrainer(ctx, testDB.Pool, "No Portal Trainer", noPortalEmail, SeedTrainerOptions{
		Password:     TestPassword,
		IsActive:     true,
		PortalAccess: false,
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		email       string
		password    string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "unknown email",
			email:       "nobody@example.com",
			password:    TestPassword,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid credentials",
		},
		{
			name:        "wrong password",
			email:       activeEmail,
			password:    "WrongPass123!",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Wrong credentials",
		},
		{
			name:        "deactivated account",
			email:       inactiveEmail,
			password:    TestPassword,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Account is deactivated. Contact admin.",
		},
		{
			name:        "portal access disabled",
			email:       noPortalEmail,
			password:    TestPassword,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Trainer portal access is disabled for this account.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := server.Request(http.MethodPost, "/api/trainer-auth/login", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			msg, err := GetResponseMessage(resp)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMessage, msg)
		})
	}
}

func TestTempPasswordFlow(t *testing.T) {
	server, ctx := setupTest(t)

	email := TestTrainerEmail("temp")
	_, err := SeedTrainer(ctx, testDB.Pool, "Temp Trainer", email, SeedTrainerOptions{
		TempPassword: TestTempPassword,
		IsActive:     true,
		PortalAccess: true,
	})
	require.NoError(t, err)

	// Login with temp password yields a set_password-scoped token
	resp, err := server.Request(http.MethodPost, "/api/trainer-auth/login", map[string]string{
		"email":    email,
		"password": TestTempPassword,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	loginResp, err := ExtractLoginResponse(resp)
	require.NoError(t, err)
	assert.True(t, loginResp.IsTempPassword)
	assert.Equal(t, "Temporary password accepted. Please set your permanent password.", loginResp.Message)

	claims, err := server.TokenManager.Validate(loginResp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeSetPassword, claims.Scope)

	// A set_password token cannot read the profile
	meResp, err := server.RequestWithAuth(http.MethodGet, "/api/trainer-auth/me", loginResp.Token, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, meResp.StatusCode)
	meResp.Body.Close()

	// Set the permanent password
	setResp, err := server.RequestWithAuth(http.MethodPost, "/api/trainer-auth/set-password", loginResp.Token, map[string]string{
		"new_password":     TestNewPassword,
		"confirm_password": TestNewPassword,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, setResp.StatusCode)

	msg, err := GetResponseMessage(setResp)
	require.NoError(t, err)
	assert.Equal(t, "Password set successfully. Please login with your new password.", msg)

	// Temp password state is fully retired in the database
	var isTempPassword bool
	var tempPassword *string
	err = testDB.Pool.QueryRow(ctx,
		`SELECT is_temp_password, temp_password FROM trainer WHERE email = $1`, email,
	).Scan(&isTempPassword, &tempPassword)
	require.NoError(t, err)
	assert.False(t, isTempPassword)
	assert.Nil(t, tempPassword)

	// Notification was dispatched
	require.NotNil(t, server.EmailService.GetLastEmail())
	assert.Equal(t, email, server.EmailService.GetLastEmail().To)

	// The old temp password no longer authenticates
	resp, err = server.Request(http.MethodPost, "/api/trainer-auth/login", map[string]string{
		"email":    email,
		"password": TestTempPassword,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The new password does
	resp, err = server.Request(http.MethodPost, "/api/trainer-auth/login", map[string]string{
		"email":    email,
		"password": TestNewPassword,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	loginResp, err = ExtractLoginResponse(resp)
	require.NoError(t, err)
	assert.False(t, loginResp.IsTempPassword)

	claims, err = server.TokenManager.Validate(loginResp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.ScopeFull, claims.Scope)
}

func TestForgotPassword(t *testing.T) {
	server, ctx := setupTest(t)

	email := TestTrainerEmail("forgot")
	_, err := SeedTrainer(ctx, testDB.Pool, "Forgot Trainer", email, SeedTrainerOptions{
		Password:     TestPassword,
		IsActive:     true,
		PortalAccess: true,
	})
	require.NoError(t, err)

	resp, err := server.Request(http.MethodPost, "/api/trainer-auth/forgot-password", map[string]string{
		"email":            email,
		"new_password":     TestNewPassword,
		"confirm_password": TestNewPassword,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	msg, err := GetResponseMessage(resp)
	require.NoError(t, err)
	assert.Equal(t, "Password updated successfully. Please login.", msg)

	// Unknown email is rejected
	resp, err = server.Request(http.MethodPost, "/api/trainer-auth/forgot-password", map[string]string{
		"email":            "nobody@example.com",
		"new_password":     TestNewPassword,
		"confirm_password": TestNewPassword,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	msg, err = GetResponseMessage(resp)
	require.NoError(t, err)
	assert.Equal(t, "Email not found", msg)

	// The new password authenticates
	resp, err = server.Request(http.MethodPost, "/api/trainer-auth/login", map[string]string{
		"email":    email,
		"password": TestNewPassword,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestMeEndpoint(t *testing.T) {
	server, ctx := setupTest(t)

	email := TestTrainerEmail("me")
	trainer, err := SeedTrainer(ctx, testDB.Pool, "Profile Trainer", email, SeedTrainerOptions{
		Password:     TestPassword,
		IsActive:     true,
		PortalAccess: true,
	})
	require.NoError(t, err)

	token, err := server.TokenManager.Generate(trainer, models.ScopeFull)
	require.NoError(t, err)

	resp, err := server.RequestWithAuth(http.MethodGet, "/api/trainer-auth/me", token, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var meResp struct {
		Success bool                   `json:"success"`
		Data    *models.TrainerProfile `json:"data"`
	}
	require.NoError(t, ParseJSONResponse(resp, &meResp))
	assert.True(t, meResp.Success)
	require.NotNil(t, meResp.Data)
	assert.Equal(t, email, meResp.Data.Email)
	assert.Equal(t, trainer.ID, meResp.Data.ID)

	// Requests without a token are rejected
	resp, err = server.Request(http.MethodGet, "/api/trainer-auth/me", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthEndpoints(t *testing.T) {
	server, _ := setupTest(t)

	resp, err := server.Request(http.MethodGet, "/health/ready", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ready map[string]interface{}
	require.NoError(t, ParseJSONResponse(resp, &ready))
	assert.Equal(t, "READY", ready["status"])

	resp, err = server.Request(http.MethodGet, "/health/live", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestUnknownRoute(t *testing.T) {
	server, _ := setupTest(t)

	resp, err := server.Request(http.MethodGet, "/api/does-not-exist", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	msg, err := GetResponseMessage(resp)
	require.NoError(t, err)
	assert.Equal(t, "Route /api/does-not-exist not found", msg)
}

func TestTrainerRepository(t *testing.T) {
	server, ctx := setupTest(t)
	_ = server

	repo := repositories.NewTrainerRepository(testDB.DB)

	email := TestTrainerEmail("repo")
	seeded, err := SeedTrainer(ctx, testDB.Pool, "Repo Trainer", email, SeedTrainerOptions{
		TempPassword: TestTempPassword,
		IsActive:     true,
		PortalAccess: true,
	})
	require.NoError(t, err)

	t.Run("GetByEmail", func(t *testing.T) {
		trainer, err := repo.GetByEmail(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, trainer.ID)
		assert.Equal(t, TestTempPassword, trainer.TempPassword)
		assert.True(t, trainer.IsTempPassword)
	})

	t.Run("GetByEmail not found", func(t *testing.T) {
		_, err := repo.GetByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("UpdatePassword clears temp state", func(t *testing.T) {
		hash, err := pkgauth.HashPassword(TestNewPassword)
		require.NoError(t, err)
		require.NoError(t, repo.UpdatePassword(ctx, seeded.ID, hash))

		trainer, err := repo.GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.False(t, trainer.IsTempPassword)
		assert.Empty(t, trainer.TempPassword)
		assert.NoError(t, pkgauth.ComparePassword(trainer.PasswordHash, TestNewPassword))
	})

	t.Run("UpdatePassword not found", func(t *testing.T) {
		err := repo.UpdatePassword(ctx, 999999, "irrelevant")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("TouchLastLogin", func(t *testing.T) {
		require.NoError(t, repo.TouchLastLogin(ctx, seeded.ID))

		trainer, err := repo.GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.NotNil(t, trainer.LastLoginAt)
	})
}
