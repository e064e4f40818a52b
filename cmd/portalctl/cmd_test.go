package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/i18n"
	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/pkg/config"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

func newBackend(t *testing.T, register func(r *gin.Engine)) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, server *httptest.Server) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env:    config.EnvDevelopment,
		Locale: "en",
		API: config.APIConfig{
			BaseURL:     server.URL + "/api",
			Timeout:     2 * time.Second,
			PublicPaths: []string{"/user/login"},
			ReissuePath: "/user/access-token",
		},
		Session: config.SessionConfig{
			Backend:  config.SessionBackendFile,
			FilePath: filepath.Join(dir, "session.json"),
			Key:      "authentication",
		},
		Gate:   config.GateConfig{LandingPath: "/", LoginPath: "/login"},
		Export: config.ExportConfig{Dir: filepath.Join(dir, "exports")},
	}
}

func newTestCLI(t *testing.T, cfg *config.Config) (*commandLine, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	cli, closeFn, err := newCommandLine(context.Background(), cfg, zap.NewNop(), out)
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return cli, out
}

func stubPassword(t *testing.T, pwd string) {
	t.Helper()
	original := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = original })
}

func TestRunWithoutCommandPrintsUsage(t *testing.T) {
	server := newBackend(t, func(r *gin.Engine) {})
	cli, out := newTestCLI(t, testConfig(t, server))

	err := cli.run(context.Background(), []string{"portalctl"})
	require.ErrorIs(t, err, errHelp)
	assert.Contains(t, out.String(), "Usage:")

	err = cli.run(context.Background(), []string{"portalctl", "login"})
	require.ErrorIs(t, err, errHelp)
}

func TestLoginSessionSurvivesRestartAndLogoutClearsIt(t *testing.T) {
	var loginBody map[string]string
	server := newBackend(t, func(r *gin.Engine) {
		r.POST("/api/user/login", func(c *gin.Context) {
			assert.NoError(t, c.ShouldBindJSON(&loginBody))
			c.JSON(http.StatusOK, gin.H{
				"accessToken": "opaque-token",
				"user":        gin.H{"userId": 7, "userName": "Kim", "userRole": "STUDENT", "semesterId": 3},
			})
		})
		r.POST("/api/user/logout", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{})
		})
	})
	cfg := testConfig(t, server)
	ctx := i18n.WithLocale(context.Background(), "en")
	stubPassword(t, "secret")

	cli, out := newTestCLI(t, cfg)
	require.NoError(t, cli.run(ctx, []string{"portalctl", "login", "-id", " kim01 "}))
	assert.Contains(t, out.String(), "Welcome, Kim")
	assert.Equal(t, "kim01", loginBody["loginId"])
	assert.Equal(t, "secret", loginBody["password"])

	restarted, restartedOut := newTestCLI(t, cfg)
	require.NoError(t, restarted.run(ctx, []string{"portalctl", "whoami"}))
	assert.Contains(t, restartedOut.String(), `"userName": "Kim"`)
	assert.Equal(t, "opaque-token", restarted.store.AccessToken())

	restartedOut.Reset()
	require.NoError(t, restarted.run(ctx, []string{"portalctl", "authorize", "-path", "/pro/attendance", "-from", "/notice"}))
	assert.Contains(t, restartedOut.String(), "Redirecting /pro/attendance to /notice (role_mismatch)")

	restartedOut.Reset()
	require.NoError(t, restarted.run(ctx, []string{"portalctl", "logout"}))
	assert.Contains(t, restartedOut.String(), "-> /login")
	assert.Contains(t, restartedOut.String(), "Signed out")

	restartedOut.Reset()
	require.NoError(t, restarted.run(ctx, []string{"portalctl", "whoami"}))
	assert.Contains(t, restartedOut.String(), "Not signed in")

	restartedOut.Reset()
	require.NoError(t, restarted.run(ctx, []string{"portalctl", "authorize", "-path", "/notice"}))
	assert.Contains(t, restartedOut.String(), "Redirecting /notice to /login (sign_in_required)")
}

func TestResolvePrintsOpenWindow(t *testing.T) {
	var query string
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/schedule/for", func(c *gin.Context) {
			query = c.Query("scheduleType")
			c.JSON(http.StatusOK, gin.H{"data": []gin.H{
				{"scheduleId": 2, "semesterId": 3, "scheduleType": "수강신청", "startDate": "2025-03-05", "endDate": "2025-03-09"},
				{"scheduleId": 1, "semesterId": 3, "scheduleType": "수강신청", "startDate": "2025-03-01", "endDate": "2025-03-07"},
			}})
		})
	})
	cli, out := newTestCLI(t, testConfig(t, server))
	ctx := i18n.WithLocale(context.Background(), "en")

	require.NoError(t, cli.run(ctx, []string{"portalctl", "resolve", "-type", "course-registration", "-semester", "3"}))
	assert.Equal(t, "수강신청", query)
	assert.Contains(t, out.String(), "Course registration window: 2025-03-01 ~ 2025-03-07")
}

func TestResolveWithoutTypeFails(t *testing.T) {
	server := newBackend(t, func(r *gin.Engine) {})
	cli, _ := newTestCLI(t, testConfig(t, server))

	err := cli.run(context.Background(), []string{"portalctl", "resolve"})
	require.Error(t, err)
}

func TestExportWritesCSV(t *testing.T) {
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/schedule", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{
				{"scheduleId": 1, "semesterId": 3, "scheduleType": "성적조회", "startDate": "2025-07-01", "endDate": "2025-07-05"},
			})
		})
	})
	cfg := testConfig(t, server)
	cli, out := newTestCLI(t, cfg)
	ctx := i18n.WithLocale(context.Background(), "en")

	require.NoError(t, cli.run(ctx, []string{"portalctl", "export", "-kind", "schedules", "-format", "csv", "-month", "2025-07"}))
	assert.Contains(t, out.String(), "Saved 1 rows to "+cfg.Export.Dir)
}

func TestApplySubmitsIntoResolvedWindow(t *testing.T) {
	var body map[string]interface{}
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/schedule/for", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"scheduleId": 5, "semesterId": 3, "scheduleType": "휴학신청", "startDate": "2025-02-01", "endDate": "2025-02-28"})
		})
		r.GET("/api/application/is-open", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"open": true})
		})
		r.POST("/api/application", func(c *gin.Context) {
			assert.NoError(t, c.ShouldBindJSON(&body))
			c.JSON(http.StatusCreated, gin.H{})
		})
	})
	cli, _ := newTestCLI(t, testConfig(t, server))
	ctx := context.Background()
	require.NoError(t, cli.store.SetSignedUser(ctx, models.Session{UserID: 7, UserRole: models.RoleStudent, SemesterID: 3}))

	require.NoError(t, cli.run(ctx, []string{"portalctl", "apply", "-type", "leave-of-absence", "-reason", "military service"}))
	assert.Equal(t, "5", body["scheduleId"])
	assert.Equal(t, "휴학신청", body["scheduleType"])
	assert.Equal(t, "military service", body["reason"])
	assert.EqualValues(t, 7, body["userId"])
}

func TestApplyWithoutOpenWindowFails(t *testing.T) {
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/schedule/for", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{})
		})
		r.GET("/api/schedule", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{})
		})
	})
	cli, _ := newTestCLI(t, testConfig(t, server))
	ctx := context.Background()
	require.NoError(t, cli.store.SetSignedUser(ctx, models.Session{UserID: 7, UserRole: models.RoleStudent}))

	err := cli.run(ctx, []string{"portalctl", "apply", "-type", "grade-inquiry"})
	require.ErrorIs(t, err, appErrors.ErrWindowClosed)
}

func TestNoticesSearchByTitle(t *testing.T) {
	var keyword string
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/notice/noticeTitle", func(c *gin.Context) {
			keyword = c.Query("keyword")
			c.JSON(http.StatusOK, gin.H{"data": []gin.H{
				{"noticeId": 3, "title": "Exam rooms", "userName": "staff", "createdAt": "2025-04-01"},
			}})
		})
	})
	cli, out := newTestCLI(t, testConfig(t, server))
	ctx := i18n.WithLocale(context.Background(), "en")

	require.NoError(t, cli.run(ctx, []string{"portalctl", "notices", "-q", "exam", "-title"}))
	assert.Equal(t, "exam", keyword)
	assert.Contains(t, out.String(), "Exam rooms")

	out.Reset()
	require.NoError(t, cli.run(ctx, []string{"portalctl", "notices"}))
	assert.Contains(t, out.String(), "No notices")
}

func TestGradesPrintsTranscriptAndGPA(t *testing.T) {
	var gpaSemester string
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/student/grade/permanent", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"courseId": 11, "courseName": "Databases", "credit": 3, "grade": "A+", "year": 2024, "semester": 2}})
		})
		r.GET("/api/student/gpa", func(c *gin.Context) {
			gpaSemester = c.Query("semesterId")
			c.JSON(http.StatusOK, gin.H{"semesterId": 3, "gpa": 4.5})
		})
	})
	cli, out := newTestCLI(t, testConfig(t, server))
	ctx := context.Background()
	require.NoError(t, cli.store.SetSignedUser(ctx, models.Session{UserID: 7, UserRole: models.RoleStudent, SemesterID: 3}))

	require.NoError(t, cli.run(ctx, []string{"portalctl", "grades"}))
	assert.Contains(t, out.String(), "2024-2")
	assert.Contains(t, out.String(), "Databases")

	out.Reset()
	require.NoError(t, cli.run(ctx, []string{"portalctl", "grades", "-gpa"}))
	assert.Equal(t, "3", gpaSemester)
	assert.Contains(t, out.String(), `"gpa": 4.5`)
}

func TestDeptsListHeadAndToggle(t *testing.T) {
	var toggled string
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/dept", func(c *gin.Context) {
			c.JSON(http.StatusOK, []gin.H{{"deptId": 1, "deptName": "Physics", "headName": "Kim", "status": "OPEN"}})
		})
		r.GET("/api/dept/head", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"userId": 77, "userName": "Kim"})
		})
		r.PATCH("/api/dept", func(c *gin.Context) {
			toggled = c.Query("id")
			c.Status(http.StatusOK)
		})
	})
	cli, out := newTestCLI(t, testConfig(t, server))
	ctx := context.Background()

	require.NoError(t, cli.run(ctx, []string{"portalctl", "depts"}))
	assert.Contains(t, out.String(), "Physics")
	assert.Contains(t, out.String(), "OPEN")

	out.Reset()
	require.NoError(t, cli.run(ctx, []string{"portalctl", "depts", "-head", "1"}))
	assert.Contains(t, out.String(), `"headId": 77`)

	require.NoError(t, cli.run(ctx, []string{"portalctl", "depts", "-toggle", "1"}))
	assert.Equal(t, "1", toggled)
}

func TestMembersFiltersByRole(t *testing.T) {
	var role string
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/user/list", func(c *gin.Context) {
			role = c.Query("role")
			c.JSON(http.StatusOK, gin.H{"list": []gin.H{{"userId": 4, "loginId": "p004", "userName": "Choi", "userRole": "professor"}}})
		})
	})
	cli, out := newTestCLI(t, testConfig(t, server))

	require.NoError(t, cli.run(context.Background(), []string{"portalctl", "members", "-role", "교수"}))
	assert.Equal(t, "professor", role)
	assert.Contains(t, out.String(), "p004")
	assert.Contains(t, out.String(), "Choi")
}

func TestPrivacyUpdateKeepsUntouchedFields(t *testing.T) {
	var saved map[string]string
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/renewal/privacy", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"email": "kim@uni.ac.kr", "phone": "010-0000-0000", "address": "Seoul"})
		})
		r.PUT("/api/renewal/privacy", func(c *gin.Context) {
			assert.NoError(t, c.ShouldBindJSON(&saved))
			c.Status(http.StatusOK)
		})
	})
	cli, _ := newTestCLI(t, testConfig(t, server))

	require.NoError(t, cli.run(context.Background(), []string{"portalctl", "privacy", "-phone", "010-9999-9999"}))
	assert.Equal(t, map[string]string{"email": "kim@uni.ac.kr", "phone": "010-9999-9999", "address": "Seoul"}, saved)
}

func TestCatalogShowsCourseWithoutEnrollment(t *testing.T) {
	server := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/course/:id", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"courseId": 11, "courseName": "Databases", "time": "A1"})
		})
	})
	cli, out := newTestCLI(t, testConfig(t, server))

	require.NoError(t, cli.run(context.Background(), []string{"portalctl", "catalog", "-id", "11"}))
	assert.Contains(t, out.String(), `"title": "Databases"`)
	assert.Contains(t, out.String(), "월 09:00 ~ 10:20")
	assert.NotContains(t, out.String(), "enrollmentId")
}
