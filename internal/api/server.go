// Package api serves the pentest-hub HTTP API.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/pentesthub/pentest-hub/internal/log"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

// V validates request bodies.
var V = validator.New()

// maxUploadSize bounds scanner, template and attachment uploads.
const maxUploadSize = 64 << 20

type server struct {
	Deps
}

// New returns an echo instance with every route registered.
func New(deps Deps) (*echo.Echo, error) {
	if deps.Logger == nil || deps.Importer == nil || deps.Exporter == nil || deps.Projects == nil ||
		deps.Findings == nil || deps.Tags == nil || deps.MasterFindings == nil || deps.Templates == nil ||
		deps.Audit == nil || deps.Blobs == nil {
		return nil, fmt.Errorf("api: missing dependency")
	}
	s := &server{Deps: deps}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(middleware.AddTrailingSlash())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: middleware.DefaultCORSConfig.AllowHeaders,
		AllowMethods: middleware.DefaultCORSConfig.AllowMethods,
		ExposeHeaders: []string{
			echo.HeaderContentDisposition,
			headerReportMode,
		},
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", maxUploadSize>>20)))
	e.Use(requestLogger(deps.Logger))
	e.Use(recoverer())
	e.HTTPErrorHandler = errorHandler

	s.routes(e)
	return e, nil
}

func (s *server) routes(e *echo.Echo) {
	e.GET("/", s.root)
	e.POST("/import-tool/", s.importTool)
	e.POST("/export-report/", s.exportReport)

	e.GET("/projects/", s.listProjects)
	e.POST("/projects/", s.createProject)
	e.GET("/projects/:id/", s.getProject)
	e.DELETE("/projects/:id/", s.deleteProject)
	e.GET("/projects/:id/findings/", s.listProjectFindings)

	e.POST("/findings/", s.createFinding)
	e.GET("/findings/:id/", s.getFinding)
	e.PUT("/findings/:id/", s.updateFinding)
	e.DELETE("/findings/:id/", s.deleteFinding)
	e.GET("/findings/:id/attachments/", s.listAttachments)
	e.POST("/findings/:id/attachments/", s.uploadAttachment)
	e.GET("/findings/:id/audit-logs/", s.listAuditLogs)

	e.GET("/tags/", s.listTags)
	e.POST("/tags/", s.createTag)

	e.GET("/master-findings/", s.listMasterFindings)
	e.POST("/master-findings/", s.createMasterFinding)
	e.DELETE("/master-findings/:id/", s.deleteMasterFinding)

	e.GET("/report-templates/", s.listTemplates)
	e.POST("/report-templates/", s.uploadTemplate)
	e.DELETE("/report-templates/:id/", s.deleteTemplate)

	if s.Metrics != nil {
		e.GET("/metrics/", echo.WrapHandler(s.Metrics))
	}
}

func (s *server) root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Pentest Reporting Tool Backend is running.",
		"tools":   s.Tools,
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrUnsupportedTool),
		errors.Is(err, types.ErrUnsupportedReportType),
		errors.Is(err, types.ErrMalformedInput),
		errors.Is(err, types.ErrTemplateSyntax),
		errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrProjectNotFound),
		errors.Is(err, types.ErrTemplateNotFound),
		errors.Is(err, types.ErrFindingNotFound),
		errors.Is(err, types.ErrTagNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler logs every error and writes it as {"detail": message}.
func errorHandler(err error, c echo.Context) {
	logger := log.NewLogger(c.Request().Context())

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		code := statusFor(err)
		message := err.Error()
		if code == http.StatusInternalServerError {
			message = http.StatusText(code)
		}
		he = echo.NewHTTPError(code, message).WithInternal(err)
	}

	if he.Code >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err), zap.Int("status", he.Code))
	} else {
		logger.Warn("request rejected", zap.Error(err), zap.Int("status", he.Code))
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, echo.Map{"detail": fmt.Sprint(he.Message)})
}

// requestLogger stores a request scoped logger in the request context and logs
// each handled request.
func requestLogger(base types.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			logger := base.With(zap.String("method", req.Method), zap.String("path", req.URL.Path))
			c.SetRequest(req.WithContext(log.WithLogger(req.Context(), logger)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Info("handled request",
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)))
			return nil
		}
	}
}

func recoverer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (returnErr error) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					stack := make([]byte, 4<<10)
					length := runtime.Stack(stack, false)
					log.NewLogger(c.Request().Context()).Error("recovered from panic",
						zap.Error(err), zap.ByteString("stack", stack[:length]))
					returnErr = err
				}
			}()
			return next(c)
		}
	}
}
