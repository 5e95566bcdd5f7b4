package records

import (
	"net/http"
	"strconv"

	"class-records/common"
	"class-records/parsers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AddRecordRequest is the body for POST /records (JSON or form).
type AddRecordRequest struct {
	ID    string `json:"id" form:"id"`
	Name  string `json:"name" form:"name"`
	Grade string `json:"grade" form:"grade"`
}

// ListRecordsResponse is the roster as returned by every records endpoint.
type ListRecordsResponse struct {
	Records []RecordModel `json:"records"`
	Total   int           `json:"total"`
}

// Handler serves the records API.
type Handler struct {
	Store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes mounts the handlers on rg (typically /api/v1/records).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Add)
	rg.DELETE("/:index", h.Delete)
}

func (h *Handler) respondList(c *gin.Context, status int) {
	recs, err := h.Store.List(c.Request.Context())
	if err != nil {
		common.L().Error("listing records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve records"})
		return
	}
	if recs == nil {
		recs = []RecordModel{}
	}
	c.Set("rows_processed", len(recs))
	c.JSON(status, ListRecordsResponse{Records: recs, Total: len(recs)})
}

// List godoc
// @Summary List records
// @Description Returns the roster in insertion order
// @Tags records
// @Produce json
// @Success 200 {object} ListRecordsResponse
// @Router /records [get]
func (h *Handler) List(c *gin.Context) {
	h.respondList(c, http.StatusOK)
}

// Add godoc
// @Summary Add a record
// @Description Appends a record; at least an ID or a name is required
// @Tags records
// @Accept json
// @Produce json
// @Param record body AddRecordRequest true "Record"
// @Success 201 {object} ListRecordsResponse
// @Failure 400 {object} map[string]string "Missing ID and name"
// @Router /records [post]
func (h *Handler) Add(c *gin.Context) {
	var req AddRecordRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Store.Add(c.Request.Context(), parsers.Record{ID: req.ID, Name: req.Name, Grade: req.Grade})
	if err != nil {
		common.L().Error("adding record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add record"})
		return
	}
	if !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{"warning": result.FirstMessage()})
		return
	}
	h.respondList(c, http.StatusCreated)
}

// Delete godoc
// @Summary Delete a record by position
// @Description Removes the record at the zero-based index; out-of-range or non-numeric indexes are ignored
// @Tags records
// @Produce json
// @Param index path string true "Zero-based position"
// @Success 200 {object} ListRecordsResponse
// @Router /records/{index} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if index, err := strconv.Atoi(c.Param("index")); err == nil {
		if _, err := h.Store.Delete(c.Request.Context(), index); err != nil {
			common.L().Error("deleting record", zap.Int("index", index), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete record"})
			return
		}
	}
	h.respondList(c, http.StatusOK)
}
