package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"class-records/attendance"
	"class-records/common"
	"class-records/parsers"
	"class-records/records"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupPages(t *testing.T) (*gin.Engine, *records.Store, *attendance.Tracker) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := common.TestDBInit(t.Name())
	require.NoError(t, records.AutoMigrate(db))
	require.NoError(t, attendance.AutoMigrate(db))

	store := records.NewStore(db)
	tracker, err := attendance.NewTracker(db, bcrypt.MinCost,
		attendance.WithClock(func() time.Time { return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC) }))
	require.NoError(t, err)

	r := gin.New()
	require.NoError(t, (&Pages{Store: store, Tracker: tracker, Title: "Student Records"}).Mount(r))
	return r, store, tracker
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIndex_EscapesCells(t *testing.T) {
	r, store, _ := setupPages(t)
	_, err := store.AddAll(context.Background(), []parsers.Record{{ID: "1", Name: "<b>Ann</b>", Grade: "90"}})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>Student Records</title>")
	assert.Contains(t, body, "<td>&lt;b&gt;Ann&lt;/b&gt;</td>")
	assert.NotContains(t, body, "<b>Ann</b>")
	assert.Contains(t, body, `data-index="0"`)
}

func TestAddRecordPage(t *testing.T) {
	r, store, _ := setupPages(t)

	w := postForm(r, "/records", url.Values{"id": {"5"}, "name": {" Bo "}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	recs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Bo", recs[0].Name)

	w = postForm(r, "/records", url.Values{"id": {"  "}, "name": {""}, "grade": {"90"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Enter at least an ID or Name")

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDeleteRecordPage(t *testing.T) {
	r, store, _ := setupPages(t)
	_, err := store.AddAll(context.Background(), []parsers.Record{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)

	for _, path := range []string{"/records/9/delete", "/records/x/delete", "/records/0/delete"} {
		w := postForm(r, path, nil)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
	}

	recs, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "b", recs[0].StudentID)
}

func TestLoginPage(t *testing.T) {
	r, _, tracker := setupPages(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No records yet")
	assert.NotContains(t, w.Body.String(), `id="beep"`)

	w = postForm(r, "/login", url.Values{"username": {"student"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect username or password")
	assert.Contains(t, w.Body.String(), `id="beep" src="data:audio/wav;base64,`)
	assert.Contains(t, w.Body.String(), `value="wrong"`, "rejected credentials stay in the form")

	w = postForm(r, "/login", url.Values{"username": {"student"}, "password": {"password123"}})
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Welcome, student")
	assert.Contains(t, body, `Login Time: <span id="timestamp">03/05/2024 14:07:09</span>`)
	assert.Contains(t, body, "1. Username: student")
	assert.NotContains(t, body, `id="beep"`)
	assert.Contains(t, body, `value="student"`)
	assert.NotContains(t, body, `value="password123"`)

	recs, err := tracker.Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestExportAttendancePage(t *testing.T) {
	r, _, tracker := setupPages(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login/export", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `<p class="error" role="alert">No attendance records to save</p>`)
	assert.Contains(t, w.Body.String(), `<a href="/login/export">`)

	_, err := tracker.Login(context.Background(), "student", "password123")
	require.NoError(t, err)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login/export", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=attendance_summary.txt", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Attendance Summary\n\n1. Username: student\nTimestamp: 03/05/2024 14:07:09\n\n", w.Body.String())
}

func TestBeepWAV(t *testing.T) {
	wav := beepWAV(880, 0.2, 8000)
	assert.Len(t, wav, 44+1600)
	assert.Equal(t, "RIFF", string(wav[:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
}
