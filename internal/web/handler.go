// Package web implements the HTML page routes and form endpoints.
//
// Routes:
//
//	GET  /              → landing page
//	GET  /form          → vacancy search form
//	GET  /contacts      → contacts page
//	POST /hh_api        → run analysis, render results page
//	GET  /vacancies     → 50 most recent persisted vacancies
//	POST /send_message  → contact-message stub (log + acknowledge)
//	POST /export        → run analysis, write timestamped JSON file
package web

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hhpulse/analyzer-service/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

const recentVacanciesLimit = 50

// AnalyzerService is the aggregation core the handlers delegate to.
type AnalyzerService interface {
	Analyze(ctx context.Context, params model.SearchParams) (*model.Analysis, error)
	Export(result *model.Analysis) (string, error)
}

// VacancyLister reads persisted vacancies for the listings page.
type VacancyLister interface {
	RecentVacancies(ctx context.Context, limit int) ([]model.VacancyRecord, error)
}

// Handler holds shared dependencies for all routes.
type Handler struct {
	analyzer AnalyzerService
	store    VacancyLister
}

// NewHandler returns a configured Handler.
func NewHandler(analyzer AnalyzerService, store VacancyLister) *Handler {
	return &Handler{analyzer: analyzer, store: store}
}

// Register mounts all routes and the embedded templates on r.
func (h *Handler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	r.GET("/", h.index)
	r.GET("/form", h.form)
	r.GET("/contacts", h.contacts)
	r.POST("/hh_api", h.analyze)
	r.GET("/vacancies", h.vacancies)
	r.POST("/send_message", h.sendMessage)
	r.POST("/export", h.export)
	r.NoRoute(h.notFound)
}

func (h *Handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (h *Handler) form(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", nil)
}

func (h *Handler) contacts(c *gin.Context) {
	c.HTML(http.StatusOK, "contacts.html", nil)
}

func searchParamsFromForm(c *gin.Context) model.SearchParams {
	return model.SearchParams{
		Text:       c.PostForm("job_title"),
		Area:       c.PostForm("region"),
		Experience: c.PostForm("experience"),
		Employment: c.PostForm("employment"),
		Salary:     c.PostForm("salary"),
	}
}

// analyze handles the search form submission and renders the results page.
// Analysis errors surface as a generic JSON error with a non-success status.
func (h *Handler) analyze(c *gin.Context) {
	params := searchParamsFromForm(c)
	log.Printf("[web] analyze request: job_title=%q region=%q experience=%q employment=%q salary=%q",
		params.Text, params.Area, params.Experience, params.Employment, params.Salary)

	result, err := h.analyzer.Analyze(c.Request.Context(), params)
	if err != nil {
		log.Printf("[web] analyze failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to analyze vacancies"})
		return
	}

	c.HTML(http.StatusOK, "results.html", gin.H{"Results": result})
}

func (h *Handler) vacancies(c *gin.Context) {
	records, err := h.store.RecentVacancies(c.Request.Context(), recentVacanciesLimit)
	if err != nil {
		log.Printf("[web] fetch vacancies failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch vacancies"})
		return
	}
	c.HTML(http.StatusOK, "vacancies.html", gin.H{"Vacancies": records})
}

// sendMessage only logs the input and acknowledges receipt.
// No storage, no email delivery — explicitly a stub.
func (h *Handler) sendMessage(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	message := c.PostForm("message")

	log.Printf("[web] message from %s (%s): %s", name, email, message)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "message received"})
}

// export runs the analysis (the result cache applies) and writes it to a
// timestamped JSON file on disk.
func (h *Handler) export(c *gin.Context) {
	params := searchParamsFromForm(c)

	result, err := h.analyzer.Analyze(c.Request.Context(), params)
	if err != nil {
		log.Printf("[web] export analyze failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to analyze vacancies"})
		return
	}

	path, err := h.analyzer.Export(result)
	if err != nil {
		log.Printf("[web] export write failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export analysis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "file": path})
}

func (h *Handler) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", nil)
}

// Recovered renders the 500 page once gin's recovery middleware has caught a
// panic and logged the stack trace.
func (h *Handler) Recovered(c *gin.Context, _ any) {
	c.HTML(http.StatusInternalServerError, "500.html", nil)
}
