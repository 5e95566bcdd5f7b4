package imports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"class-records/common"
	"class-records/records"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateImportRequest is the JSON body for imports fetched from a URL
type CreateImportRequest struct {
	Format  string `json:"format" binding:"required,oneof=csv ndjson xlsx"`
	FileURL string `json:"file_url" binding:"required"`
}

// CreateImportResponse represents the response for import job creation
type CreateImportResponse struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// GetImportResponse represents the response for import job status
type GetImportResponse struct {
	JobID          string                          `json:"job_id"`
	Format         string                          `json:"format"`
	Status         string                          `json:"status"`
	TotalRecords   int                             `json:"total_records"`
	ProcessedCount int                             `json:"processed_count"`
	SuccessCount   int                             `json:"success_count"`
	FailCount      int                             `json:"fail_count"`
	Errors         []common.RecordValidationResult `json:"errors,omitempty"`
	CreatedAt      string                          `json:"created_at"`
	UpdatedAt      string                          `json:"updated_at"`
	CompletedAt    *string                         `json:"completed_at,omitempty"`
}

// Handler accepts uploads and runs import jobs in the background.
type Handler struct {
	DB         *gorm.DB
	Store      *records.Store
	UploadsDir string
	Client     *http.Client

	wg sync.WaitGroup
}

func NewHandler(db *gorm.DB, store *records.Store, uploadsDir string) *Handler {
	return &Handler{
		DB:         db,
		Store:      store,
		UploadsDir: uploadsDir,
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// RegisterRoutes mounts the handlers on rg (typically /api/v1/imports).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateImport)
	rg.GET("/:job_id", h.GetImport)
}

// Wait blocks until every queued job has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func formatFromExt(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return common.FormatCSV, true
	case ".ndjson", ".json":
		return common.FormatNDJSON, true
	case ".xlsx":
		return common.FormatXLSX, true
	}
	return "", false
}

func extForFormat(format string) string {
	if format == common.FormatNDJSON {
		return ".ndjson"
	}
	return "." + format
}

func (h *Handler) uploadPath(ext string) (string, error) {
	if err := os.MkdirAll(h.UploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	fileName := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8], ext)
	return filepath.Join(h.UploadsDir, fileName), nil
}

func saveTo(path string, src io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CreateImport godoc
// @Summary Create a new import job
// @Description Creates an import job appending roster rows from a CSV, NDJSON or XLSX file
// @Tags imports
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param Idempotency-Key header string true "Unique key to prevent duplicate imports"
// @Param file formData file false "File to import (CSV, NDJSON or XLSX)"
// @Param file_url body string false "URL of file to import (alternative to file upload)"
// @Success 202 {object} CreateImportResponse "Import job created"
// @Success 200 {object} CreateImportResponse "Existing job returned (idempotency)"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /imports [post]
func (h *Handler) CreateImport(c *gin.Context) {
	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Idempotency-Key header is required"})
		return
	}

	var existingJob common.ImportJob
	err := h.DB.Where("idempotency_key = ?", idempotencyKey).First(&existingJob).Error
	if err == nil {
		c.JSON(http.StatusOK, CreateImportResponse{
			JobID:     existingJob.ID,
			Status:    existingJob.Status,
			CreatedAt: existingJob.CreatedAt.Format(time.RFC3339),
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		common.L().Error("looking up import job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import job"})
		return
	}

	var filePath, format string
	if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
			return
		}
		defer file.Close()

		var ok bool
		if format, ok = formatFromExt(header.Filename); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File must be .csv, .ndjson or .xlsx"})
			return
		}
		if filePath, err = h.uploadPath(filepath.Ext(header.Filename)); err == nil {
			err = saveTo(filePath, file)
		}
		if err != nil {
			common.L().Error("saving upload", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
	} else {
		var req CreateImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		format = req.Format

		filePath, err = h.uploadPath(extForFormat(format))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}
		if err := h.download(c.Request.Context(), req.FileURL, filePath); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to download file: %v", err)})
			return
		}
	}

	now := time.Now()
	job := common.ImportJob{
		ID:             uuid.New().String(),
		IdempotencyKey: idempotencyKey,
		Format:         format,
		Status:         common.JobStatusPending,
		FilePath:       filePath,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := h.DB.Create(&job).Error; err != nil {
		common.L().Error("creating import job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import job"})
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		// The request context ends with the response; the job outlives it.
		_ = ProcessImportJob(context.Background(), h.DB, h.Store, job.ID)
	}()

	c.JSON(http.StatusAccepted, CreateImportResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	})
}

// GetImport godoc
// @Summary Get import job status
// @Description Retrieves the status and progress of an import job
// @Tags imports
// @Produce json
// @Param job_id path string true "Import Job ID"
// @Success 200 {object} GetImportResponse "Import job details"
// @Failure 404 {object} map[string]string "Job not found"
// @Router /imports/{job_id} [get]
func (h *Handler) GetImport(c *gin.Context) {
	var job common.ImportJob
	if err := h.DB.Where("id = ?", c.Param("job_id")).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Import job not found"})
		return
	}

	c.Set("rows_processed", job.ProcessedCount)

	response := GetImportResponse{
		JobID:          job.ID,
		Format:         job.Format,
		Status:         job.Status,
		TotalRecords:   job.TotalRecords,
		ProcessedCount: job.ProcessedCount,
		SuccessCount:   job.SuccessCount,
		FailCount:      job.FailCount,
		CreatedAt:      job.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.Format(time.RFC3339),
	}
	if job.CompletedAt != nil {
		completedStr := job.CompletedAt.Format(time.RFC3339)
		response.CompletedAt = &completedStr
	}
	if job.Errors != "" {
		var failures []common.RecordValidationResult
		if err := json.Unmarshal([]byte(job.Errors), &failures); err == nil {
			response.Errors = failures
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}
	return saveTo(path, resp.Body)
}
