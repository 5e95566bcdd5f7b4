package attendance

import (
	"errors"
	"net/http"

	"class-records/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoginRequest is the login form, as JSON or form fields.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ListAttendanceResponse is the log plus its on-screen rendering.
type ListAttendanceResponse struct {
	Records []AttendanceModel `json:"records"`
	Total   int               `json:"total"`
	Listing string            `json:"listing"`
}

// Handler serves the login and attendance API.
type Handler struct {
	Tracker *Tracker
}

func NewHandler(tracker *Tracker) *Handler {
	return &Handler{Tracker: tracker}
}

// RegisterRoutes mounts POST /login and the /attendance endpoints on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.GET("/attendance", h.List)
	rg.GET("/attendance/receipt", h.VerifyReceipt)
}

// Login godoc
// @Summary Log attendance
// @Description Checks the fixed credentials and appends a timestamped record on success
// @Tags attendance
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} LoginResult
// @Failure 401 {object} LoginResult
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Tracker.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		common.L().Error("login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record attendance"})
		return
	}
	if !result.OK {
		c.JSON(http.StatusUnauthorized, result)
		return
	}
	c.Set("rows_processed", 1)
	c.JSON(http.StatusOK, result)
}

// List godoc
// @Summary List attendance
// @Tags attendance
// @Produce json
// @Success 200 {object} ListAttendanceResponse
// @Router /attendance [get]
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	recs, err := h.Tracker.Records(ctx)
	if err != nil {
		common.L().Error("listing attendance", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attendance"})
		return
	}
	listing, err := h.Tracker.Listing(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve attendance"})
		return
	}
	if recs == nil {
		recs = []AttendanceModel{}
	}
	c.Set("rows_processed", len(recs))
	c.JSON(http.StatusOK, ListAttendanceResponse{Records: recs, Total: len(recs), Listing: listing})
}

// VerifyReceipt godoc
// @Summary Verify an attendance receipt
// @Tags attendance
// @Produce json
// @Param token query string true "Receipt"
// @Success 200 {object} ReceiptClaims
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /attendance/receipt [get]
func (h *Handler) VerifyReceipt(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}
	claims, err := h.Tracker.Verify(token)
	if err != nil {
		if errors.Is(err, ErrInvalidReceipt) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidReceipt.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, claims)
}
