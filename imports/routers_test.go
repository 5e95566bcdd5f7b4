package imports

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"class-records/common"
	"class-records/records"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *Handler, *records.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, store := setupDB(t)
	h := NewHandler(db, store, t.TempDir())
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1/imports"))
	return r, h, store
}

func uploadRequest(t *testing.T, key, filename, content string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestCreateImport_Upload(t *testing.T) {
	r, h, store := setupRouter(t)
	csv := "id,name,grade\n1,Ann,90\n2,Bo,80\n"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "k1", "roster.csv", csv))
	require.Equal(t, http.StatusAccepted, w.Code)
	var created CreateImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, common.JobStatusPending, created.Status)

	h.Wait()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+created.JobID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var status GetImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, common.JobStatusCompleted, status.Status)
	assert.Equal(t, common.FormatCSV, status.Format)
	assert.Equal(t, 2, status.SuccessCount)
	assert.NotNil(t, status.CompletedAt)

	n, err := store.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Same key returns the first job and imports nothing new.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "k1", "roster.csv", csv))
	require.Equal(t, http.StatusOK, w.Code)
	var again CreateImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
	assert.Equal(t, created.JobID, again.JobID)
	h.Wait()

	n, err = store.Count(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCreateImport_BadRequests(t *testing.T) {
	r, _, _ := setupRouter(t)

	tests := []struct {
		name string
		req  *http.Request
		want int
	}{
		{"missing key", uploadRequest(t, "", "roster.csv", "id\n1\n"), http.StatusBadRequest},
		{"bad extension", uploadRequest(t, "k2", "roster.txt", "id\n1\n"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(`{"format":"pdf","file_url":"http://x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "k3")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateImport_FromURL(t *testing.T) {
	r, h, store := setupRouter(t)
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"9","name":"Zed","grade":"70"}` + "\n"))
	}))
	defer src.Close()

	body := `{"format":"ndjson","file_url":"` + src.URL + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "url-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)
	h.Wait()

	recs, err := store.List(t.Context())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Zed", recs[0].Name)
}

func TestGetImport_NotFound(t *testing.T) {
	r, _, _ := setupRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/imports/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
