package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"class-records/common"
	"class-records/parsers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	cfg := common.DefaultConfig()
	cfg.Server.Mode = "test"
	cfg.Database.DSN = "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	cfg.Records.UploadsDir = t.TempDir()
	cfg.Attendance.BcryptCost = bcrypt.MinCost
	return cfg
}

func TestNewApp_Wiring(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/login", http.StatusOK},
		{http.MethodGet, "/login/export", http.StatusNotFound},
		{http.MethodGet, "/api/v1/records", http.StatusOK},
		{http.MethodGet, "/api/v1/attendance", http.StatusOK},
		{http.MethodGet, "/api/v1/exports/attendance", http.StatusNotFound},
		{http.MethodGet, "/api/v1/exports/records?format=csv", http.StatusOK},
		{http.MethodGet, "/api/v1/imports/none", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		app.Engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, tt.path)
	}

	var metrics int64
	require.NoError(t, app.DB.Model(&common.ApiMetric{}).Count(&metrics).Error)
	assert.EqualValues(t, len(tests), metrics)
}

func TestNewApp_SeedsRoster(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	w := httptest.NewRecorder()
	app.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/records", nil))
	var resp struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 26, resp.Total)
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)
	assert.True(t, corsConfig(nil).AllowAllOrigins)

	cfg := corsConfig([]string{"http://localhost:3000"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowOrigins)
}

func TestParseFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte("StudentID,first_name,last_name,LAB1\n7,Ann,Lee,90\n"), 0o644))

	recs, err := parseFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []parsers.Record{{ID: "7", Name: "Ann Lee", Grade: "90"}}, recs)
}

func TestParseFile_Stdin(t *testing.T) {
	recs, err := parseFile("-", strings.NewReader("id,name,grade\n1,Bo,80\n"))
	require.NoError(t, err)
	assert.Equal(t, []parsers.Record{{ID: "1", Name: "Bo", Grade: "80"}}, recs)
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]parsers.Record{{ID: "1", Name: "Ann Lee", Grade: "90"}})
	assert.Contains(t, out, "Ann Lee")
	assert.True(t, strings.HasSuffix(out, "1 record(s)\n"))
}
