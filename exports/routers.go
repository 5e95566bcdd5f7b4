package exports

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"class-records/attendance"
	"class-records/common"
	"class-records/records"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	// BatchSize is the number of records fetched in a single query
	BatchSize = 2000

	// AttendanceFilename is the name of the attendance download.
	AttendanceFilename = "attendance_summary.txt"
)

var recordColumns = []string{"id", "name", "grade"}

// Handler serves the download endpoints.
type Handler struct {
	Store   *records.Store
	Tracker *attendance.Tracker
	// Title names the roster; its slug prefixes export filenames.
	Title string

	now func() time.Time
}

func NewHandler(store *records.Store, tracker *attendance.Tracker, title string) *Handler {
	return &Handler{Store: store, Tracker: tracker, Title: title, now: time.Now}
}

// RegisterRoutes mounts the handlers on rg (typically /api/v1/exports).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/records", h.ExportRecords)
	rg.GET("/attendance", h.ExportAttendance)
}

// Filename builds <slug(title)>_<YYYYMMDD_HHMMSS>.<ext>.
func (h *Handler) Filename(ext string) string {
	base := slug.Make(h.Title)
	if base == "" {
		base = "records"
	}
	return fmt.Sprintf("%s_%s.%s", base, h.now().Format("20060102_150405"), ext)
}

// Attachment marks the response as a download named filename.
func Attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
}

// ExportRecords godoc
// @Summary Download the roster
// @Description Streams every record in insertion order as CSV, NDJSON or XLSX
// @Tags exports
// @Produce text/csv
// @Produce application/x-ndjson
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Export format (csv, ndjson or xlsx; default csv)"
// @Success 200 {file} file "Roster"
// @Failure 400 {object} map[string]string "Bad request"
// @Router /exports/records [get]
func (h *Handler) ExportRecords(c *gin.Context) {
	format := c.DefaultQuery("format", common.FormatCSV)

	switch format {
	case common.FormatCSV:
		c.Header("Content-Type", "text/csv")
	case common.FormatNDJSON:
		c.Header("Content-Type", "application/x-ndjson")
	case common.FormatXLSX:
		h.exportXLSX(c)
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid format, must be: csv, ndjson or xlsx"})
		return
	}

	Attachment(c, h.Filename(format))
	c.Status(http.StatusOK)

	total, err := h.stream(c, format, c.Writer)
	if err != nil {
		// Headers are gone; all that is left is to stop and log.
		common.L().Error("streaming export", zap.String("format", format), zap.Error(err))
		_ = c.Error(err)
	}
	c.Set("rows_processed", total)
}

func (h *Handler) stream(c *gin.Context, format string, w io.Writer) (int, error) {
	ctx := c.Request.Context()

	var csvWriter *csv.Writer
	var encoder *json.Encoder
	if format == common.FormatCSV {
		csvWriter = csv.NewWriter(w)
		if err := csvWriter.Write(recordColumns); err != nil {
			return 0, err
		}
	} else {
		encoder = json.NewEncoder(w)
	}

	total := 0
	for offset := 0; ; offset += BatchSize {
		batch, err := h.Store.Page(ctx, offset, BatchSize)
		if err != nil {
			return total, err
		}
		for _, m := range batch {
			rec := m.Record()
			if csvWriter != nil {
				err = csvWriter.Write([]string{rec.ID, rec.Name, rec.Grade})
			} else {
				err = encoder.Encode(rec)
			}
			if err != nil {
				return total, err
			}
		}
		if csvWriter != nil {
			csvWriter.Flush()
			if err := csvWriter.Error(); err != nil {
				return total, err
			}
		}
		c.Writer.Flush()

		total += len(batch)
		if len(batch) < BatchSize {
			return total, nil
		}
	}
}

func (h *Handler) exportXLSX(c *gin.Context) {
	recs, err := h.Store.List(c.Request.Context())
	if err != nil {
		common.L().Error("listing records for export", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export records"})
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			common.L().Warn("closing workbook", zap.Error(err))
		}
	}()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(recordColumns))
	for i, col := range recordColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export records"})
		return
	}
	for i, m := range recs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{m.StudentID, m.Name, m.Grade}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export records"})
			return
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		common.L().Error("writing workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export records"})
		return
	}

	c.Set("rows_processed", len(recs))
	Attachment(c, h.Filename(common.FormatXLSX))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportAttendance godoc
// @Summary Download the attendance summary
// @Description Returns attendance_summary.txt; 404 when nothing has been logged
// @Tags exports
// @Produce text/plain
// @Success 200 {file} file "attendance_summary.txt"
// @Failure 404 {object} map[string]string "No attendance records"
// @Router /exports/attendance [get]
func (h *Handler) ExportAttendance(c *gin.Context) {
	summary, err := h.Tracker.Summary(c.Request.Context())
	if errors.Is(err, attendance.ErrNoAttendance) {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}
	if err != nil {
		common.L().Error("building attendance summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export attendance"})
		return
	}

	Attachment(c, AttendanceFilename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(summary))
}
