package server

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"slices"

	"AIFitnessCoach/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateRenderer is a custom html/template renderer for Echo framework
type TemplateRenderer struct {
	templates *template.Template
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func newTemplateRenderer() *TemplateRenderer {
	funcs := template.FuncMap{
		"has": func(values []string, v string) bool { return slices.Contains(values, v) },
	}
	return &TemplateRenderer{
		templates: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	// X-Forwarded-For is honoured only when the peer is a loopback or private
	// proxy, so clients cannot pick their own rate-limit key.
	e.IPExtractor = echo.ExtractIPFromXFFHeader()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"https://*", "http://*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:       300,
	}))

	e.Use(LoggerMiddleware)
	e.Renderer = newTemplateRenderer()

	e.GET("/health", s.healthHandler)

	// Questionnaire form
	e.GET("/", s.renderFormHandler)
	e.POST("/", s.submitFormHandler)

	// JSON API
	api := e.Group("/api")
	api.GET("/options", s.optionsHandler)
	api.POST("/plan", s.planHandler)

	return e
}

func (s *Server) healthHandler(c echo.Context) error {
	health := map[string]interface{}{
		"status":    "ok",
		"model":     s.model,
		"countries": len(s.catalog.Countries()),
	}

	serverHealth := map[string]interface{}{}
	if v, err := mem.VirtualMemory(); err == nil {
		serverHealth["ram_usage"] = v.UsedPercent
	}
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		serverHealth["cpu_load"] = cpuPercent[0]
	}
	health["server_health"] = serverHealth

	if s.db != nil {
		dbHealth := s.db.Health()
		health["database"] = dbHealth
		if dbHealth["status"] != "up" {
			health["status"] = "degraded"
			return c.JSON(http.StatusServiceUnavailable, health)
		}
	}

	return c.JSON(http.StatusOK, health)
}

// LoggerMiddleware tags every request with an id and stores a child logger
// carrying it in the echo context.
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().
			Str("request_id", requestID).
			Str("client_ip", c.RealIP()).
			Logger()

		c.Set(utility.ContextKeyLogger, &logger)

		return next(c)
	}
}
