package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-portal/internal/auth"
	"github.com/justsurfingit/job-portal/internal/database"
	"github.com/justsurfingit/job-portal/internal/events"
	"github.com/justsurfingit/job-portal/internal/services"
	"github.com/justsurfingit/job-portal/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	cookieName = "token"
	testOrigin = "http://localhost:5173"
)

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	hasher, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	sessions, err := auth.NewSessionManager(auth.Secret("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)
	uploadDir := t.TempDir()
	blobs, err := storage.NewDiskStore(uploadDir, "/uploads")
	require.NoError(t, err)

	cookie := auth.CookieConfig{Name: cookieName}
	gate := services.NewGate(db)
	users := services.NewUserService(db, gate, hasher, sessions, blobs)
	companies := services.NewCompanyService(db, gate, blobs)
	jobs := services.NewJobService(db, gate)
	apps := services.NewApplicationService(db, gate, &events.Recorder{})

	r := gin.New()
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{testOrigin}
	corsCfg.AllowCredentials = true
	r.Use(cors.New(corsCfg))
	SetupRoutes(r, Deps{
		DB:             db,
		Guard:          NewSessionGuard(sessions, cookie, gate),
		Users:          NewUserHandler(users, cookie),
		Companies:      NewCompanyHandler(companies),
		Jobs:           NewJobHandler(jobs, apps),
		Applications:   NewApplicationHandler(apps),
		RequestTimeout: 5 * time.Second,
		UploadDir:      uploadDir,
	})
	return r
}

type response struct {
	Code    int
	Cookies []*http.Cookie
	Body    map[string]any
}

func do(t *testing.T, r *gin.Engine, method, path string, body any, token string) response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(t, r, req, token)
}

func serve(t *testing.T, r *gin.Engine, req *http.Request, token string) response {
	t.Helper()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := response{Code: w.Code, Cookies: w.Result().Cookies()}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res.Body), w.Body.String())
	}
	return res
}

func (r response) object(key string) map[string]any {
	m, _ := r.Body[key].(map[string]any)
	return m
}

func signUp(t *testing.T, r *gin.Engine, email, role string) string {
	t.Helper()
	res := do(t, r, http.MethodPost, "/api/user/register", gin.H{
		"fullname":    "User " + email,
		"email":       email,
		"password":    "correct-horse",
		"role":        role,
		"phoneNumber": "5550100",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Body)

	res = do(t, r, http.MethodPost, "/api/user/login", gin.H{"email": email, "password": "correct-horse"}, "")
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	for _, c := range res.Cookies {
		if c.Name == cookieName {
			return c.Value
		}
	}
	t.Fatalf("login for %s set no session cookie", email)
	return ""
}

func TestJobPortalFlow(t *testing.T) {
	r := newTestServer(t)
	recruiterA := signUp(t, r, "a@example.com", "Recruiter")
	recruiterB := signUp(t, r, "b@example.com", "Recruiter")
	student := signUp(t, r, "s1@example.com", "Student")

	res := do(t, r, http.MethodPost, "/api/company/register", gin.H{"companyName": "Acme"}, recruiterA)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	companyID := res.object("company")["id"].(string)

	res = do(t, r, http.MethodPost, "/api/job/post", gin.H{
		"title":        "Backend Engineer",
		"description":  "APIs in Go",
		"requirements": "go, sql",
		"salary":       12,
		"location":     "Remote",
		"jobType":      "Full Time",
		"experience":   2,
		"position":     1,
		"companyId":    companyID,
	}, recruiterA)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	jobID := res.object("job")["id"].(string)

	res = do(t, r, http.MethodGet, "/api/application/apply/"+jobID, nil, student)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	assert.Equal(t, "pending", res.object("application")["status"])

	res = do(t, r, http.MethodPost, "/api/application/apply/"+jobID, nil, student)
	require.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "already_applied", res.Body["error"])
	assert.Equal(t, false, res.Body["success"])

	res = do(t, r, http.MethodGet, "/api/job/get/"+jobID, nil, student)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.Body["status"])
	assert.Equal(t, true, res.object("job")["hasApplied"])
	assert.EqualValues(t, 1, res.object("job")["applicationCount"])

	res = do(t, r, http.MethodGet, "/api/job/get/"+jobID, nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.NotContains(t, res.object("job"), "hasApplied")

	res = do(t, r, http.MethodGet, "/api/application/"+jobID+"/applicants", nil, recruiterB)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = do(t, r, http.MethodGet, "/api/application/applicants/"+jobID, nil, recruiterA)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.Body["applications"], 1)

	res = do(t, r, http.MethodGet, "/api/job/get?keyword=backend", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.Body["jobs"], 1)

	res = do(t, r, http.MethodGet, "/api/application/get", nil, student)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Len(t, res.Body["applications"], 1)
}

func TestStudentCannotPostJobWhateverTheBody(t *testing.T) {
	r := newTestServer(t)
	student := signUp(t, r, "s@example.com", "Student")

	for _, body := range []any{nil, gin.H{}, gin.H{"title": "x", "companyId": "not-a-uuid"}} {
		res := do(t, r, http.MethodPost, "/api/job/post", body, student)
		assert.Equal(t, http.StatusForbidden, res.Code, res.Body)
		assert.Equal(t, "forbidden", res.Body["error"])
	}
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	r := newTestServer(t)

	for _, tc := range []struct{ method, path, token string }{
		{http.MethodGet, "/api/application/get", ""},
		{http.MethodGet, "/api/company/get", "garbage"},
		{http.MethodPost, "/api/user/profile/update", ""},
		{http.MethodGet, "/api/job/getadminjobs", ""},
	} {
		res := do(t, r, tc.method, tc.path, nil, tc.token)
		assert.Equal(t, http.StatusUnauthorized, res.Code, tc.path)
		assert.Equal(t, "unauthenticated", res.Body["error"], tc.path)
	}
}

func TestLoginSetsHttpOnlyCookieAndHidesHash(t *testing.T) {
	r := newTestServer(t)
	signUp(t, r, "s@example.com", "Student")

	res := do(t, r, http.MethodPost, "/api/user/login", gin.H{"email": "s@example.com", "password": "correct-horse"}, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, res.Cookies)
	assert.True(t, res.Cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, res.Cookies[0].SameSite)
	assert.NotContains(t, res.object("user"), "PasswordHash")
	assert.NotContains(t, res.Body, "token")

	bad := do(t, r, http.MethodPost, "/api/user/login", gin.H{"email": "s@example.com", "password": "wrong-horse"}, "")
	unknown := do(t, r, http.MethodPost, "/api/user/login", gin.H{"email": "x@example.com", "password": "wrong-horse"}, "")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, bad.Body, unknown.Body)

	out := do(t, r, http.MethodPost, "/api/user/logout", nil, "")
	require.Equal(t, http.StatusOK, out.Code)
	require.NotEmpty(t, out.Cookies)
	assert.Equal(t, -1, out.Cookies[0].MaxAge)
}

func TestRegisterValidationAndDuplicate(t *testing.T) {
	r := newTestServer(t)
	signUp(t, r, "dup@example.com", "Student")

	res := do(t, r, http.MethodPost, "/api/user/register", gin.H{
		"fullname": "Dup", "email": "dup@example.com", "password": "correct-horse",
		"role": "Student", "phoneNumber": "5550100",
	}, "")
	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "duplicate_email", res.Body["error"])

	res = do(t, r, http.MethodPost, "/api/user/register", gin.H{"email": "new@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "validation_error", res.Body["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	res = serve(t, r, req, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRegisterMultipartStoresPhoto(t *testing.T) {
	r := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"fullname":    "Pat Photo",
		"email":       "pat@example.com",
		"password":    "correct-horse",
		"role":        "Student",
		"phoneNumber": "5550100",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := serve(t, r, req, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Body)

	profile, _ := res.object("user")["profile"].(map[string]any)
	photo, _ := profile["profilePhoto"].(string)
	assert.True(t, strings.HasPrefix(photo, "/uploads/profile-photos/"), photo)
	assert.True(t, strings.HasSuffix(photo, ".png"), photo)

	// served back through the same middleware as the API
	req = httptest.NewRequest(http.MethodGet, photo, nil)
	req.Header.Set("Origin", testOrigin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not really a png", w.Body.String())
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthCheck(t *testing.T) {
	r := newTestServer(t)
	res := do(t, r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Body["status"])
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, file, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(file, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// The recruiter's post-job form sends every input value as a string.
func TestPostJobAcceptsFormStrings(t *testing.T) {
	r := newTestServer(t)
	recruiter := signUp(t, r, "a@example.com", "Recruiter")
	res := do(t, r, http.MethodPost, "/api/company/register", gin.H{"companyName": "Acme"}, recruiter)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	companyID := res.object("company")["id"].(string)

	body := `{"title":"Frontend Developer","description":"React and TypeScript",` +
		`"requirements":"react, css","salary":"50000","location":"Pune",` +
		`"jobType":"Full Time","experience":"2","position":"2","companyId":"` + companyID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/job/post", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res = serve(t, r, req, recruiter)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)

	job := res.object("job")
	assert.EqualValues(t, 50000, job["salary"])
	assert.EqualValues(t, 2, job["experienceLevel"])
	assert.EqualValues(t, 2, job["position"])

	body = strings.Replace(body, `"position":"2"`, `"position":"0"`, 1)
	req = httptest.NewRequest(http.MethodPost, "/api/job/post", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res = serve(t, r, req, recruiter)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "validation_error", res.Body["error"])
}

func TestCompanyUpdateWithLogo(t *testing.T) {
	r := newTestServer(t)
	owner := signUp(t, r, "a@example.com", "Recruiter")
	other := signUp(t, r, "b@example.com", "Recruiter")
	res := do(t, r, http.MethodPost, "/api/company/register", gin.H{"companyName": "Acme"}, owner)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	path := "/api/company/update/" + res.object("company")["id"].(string)
	fields := map[string]string{
		"description": "Rockets and anvils",
		"website":     "https://acme.example.com",
		"location":    "Desert",
	}

	res = serve(t, r, multipartRequest(t, http.MethodPut, path, fields, "file", "logo.png", "logo"), other)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = serve(t, r, multipartRequest(t, http.MethodPut, path, fields, "file", "logo.png", "logo"), owner)
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	company := res.object("company")
	assert.Equal(t, "Acme", company["name"])
	assert.Equal(t, "Rockets and anvils", company["description"])
	assert.Equal(t, "https://acme.example.com", company["website"])
	logo, _ := company["logo"].(string)
	assert.True(t, strings.HasPrefix(logo, "/uploads/logos/"), logo)

	fields["website"] = "not a url"
	res = serve(t, r, multipartRequest(t, http.MethodPut, path, fields, "file", "logo.png", "logo"), owner)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestProfileUpdateWithResume(t *testing.T) {
	r := newTestServer(t)
	student := signUp(t, r, "s@example.com", "Student")

	req := multipartRequest(t, http.MethodPost, "/api/user/profile/update", map[string]string{
		"fullname": "Sam Student",
		"bio":      "Backend developer",
		"skills":   "go, postgres, docker",
	}, "file", "Sam CV.pdf", "%PDF-1.4")
	res := serve(t, r, req, student)
	require.Equal(t, http.StatusOK, res.Code, res.Body)

	user := res.object("user")
	assert.Equal(t, "Sam Student", user["fullname"])
	profile, _ := user["profile"].(map[string]any)
	assert.Equal(t, "Backend developer", profile["bio"])
	assert.Equal(t, []any{"go", "postgres", "docker"}, profile["skills"])
	assert.Equal(t, "Sam CV.pdf", profile["resumeOriginalName"])
	resume, _ := profile["resume"].(string)
	assert.True(t, strings.HasPrefix(resume, "/uploads/resumes/"), resume)
	assert.True(t, strings.HasSuffix(resume, ".pdf"), resume)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, resume, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}
