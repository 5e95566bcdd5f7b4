// Package web serves the two HTML pages: the roster table and the
// attendance login.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"class-records/attendance"
	"class-records/common"
	"class-records/exports"
	"class-records/parsers"
	"class-records/records"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// Pages renders the roster and login pages on top of the same store and
// tracker the API uses.
type Pages struct {
	Store   *records.Store
	Tracker *attendance.Tracker
	Title   string
}

type recordsPage struct {
	Title   string
	Warning string
	Rows    template.HTML
	Total   int
}

// loginPage keeps the submitted form values: a rejected login keeps both,
// a successful one clears the password.
type loginPage struct {
	Username string
	Password string
	Result   *attendance.LoginResult
	Notice   string
	Listing  string
	BeepSrc  template.URL
}

// Mount installs the templates on r and registers the page routes.
func (p *Pages) Mount(r *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/", p.Index)
	r.POST("/records", p.AddRecord)
	r.POST("/records/:index/delete", p.DeleteRecord)
	r.GET("/login", p.LoginForm)
	r.POST("/login", p.Login)
	r.GET("/login/export", p.ExportAttendance)
	return nil
}

func (p *Pages) renderRecords(c *gin.Context, status int, warning string) {
	recs, err := p.Store.List(c.Request.Context())
	if err != nil {
		common.L().Error("listing records", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to retrieve records")
		return
	}
	c.HTML(status, "records.html", recordsPage{
		Title:   p.Title,
		Warning: warning,
		// RenderRows escapes every cell.
		Rows:  template.HTML(records.RenderRows(recs)),
		Total: len(recs),
	})
}

// Index renders the roster table.
func (p *Pages) Index(c *gin.Context) {
	p.renderRecords(c, http.StatusOK, "")
}

// AddRecord appends the submitted row and redirects back to the table.
// A row with neither ID nor name re-renders the table with the warning.
func (p *Pages) AddRecord(c *gin.Context) {
	var req records.AddRecordRequest
	if err := c.ShouldBind(&req); err != nil {
		p.renderRecords(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := p.Store.Add(c.Request.Context(), parsers.Record{ID: req.ID, Name: req.Name, Grade: req.Grade})
	if err != nil {
		common.L().Error("adding record", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to add record")
		return
	}
	if !result.Valid {
		p.renderRecords(c, http.StatusBadRequest, result.FirstMessage())
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// DeleteRecord removes the row at the posted position, if any.
func (p *Pages) DeleteRecord(c *gin.Context) {
	if index, err := strconv.Atoi(c.Param("index")); err == nil {
		if _, err := p.Store.Delete(c.Request.Context(), index); err != nil {
			common.L().Error("deleting record", zap.Int("index", index), zap.Error(err))
			c.String(http.StatusInternalServerError, "Failed to delete record")
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (p *Pages) renderLogin(c *gin.Context, status int, page loginPage) {
	listing, err := p.Tracker.Listing(c.Request.Context())
	if err != nil {
		common.L().Error("listing attendance", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to retrieve attendance")
		return
	}
	page.Listing = listing
	page.BeepSrc = beepURI
	c.HTML(status, "login.html", page)
}

// LoginForm renders the login page and the current log.
func (p *Pages) LoginForm(c *gin.Context) {
	p.renderLogin(c, http.StatusOK, loginPage{})
}

// Login handles one form submission.
func (p *Pages) Login(c *gin.Context) {
	var req attendance.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	result, err := p.Tracker.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		common.L().Error("login", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to record attendance")
		return
	}
	page := loginPage{Username: req.Username, Result: &result}
	status := http.StatusOK
	if !result.OK {
		status = http.StatusUnauthorized
		page.Password = req.Password
	}
	p.renderLogin(c, status, page)
}

// ExportAttendance downloads the attendance summary. With an empty log the
// login page is shown again with the notice instead.
func (p *Pages) ExportAttendance(c *gin.Context) {
	summary, err := p.Tracker.Summary(c.Request.Context())
	if errors.Is(err, attendance.ErrNoAttendance) {
		p.renderLogin(c, http.StatusNotFound, loginPage{Notice: err.Error()})
		return
	}
	if err != nil {
		common.L().Error("building attendance summary", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to export attendance")
		return
	}
	exports.Attachment(c, exports.AttendanceFilename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(summary))
}
