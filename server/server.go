// Package server serves the glimpse browser page and streams image analyses
// back to it as NDJSON.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/papercomputeco/glimpse/pkg/analysis"
	"github.com/papercomputeco/glimpse/pkg/llm"
	"github.com/papercomputeco/glimpse/pkg/markdown"
	"github.com/papercomputeco/glimpse/pkg/vision"
)

// multipart boundaries and the other form fields ride on top of the image.
const formOverheadBytes = 1 << 20

var (
	errUnsupportedImage = errors.New("unsupported image type")
	errImageTooLarge    = errors.New("image too large")
)

// Server is stateless across requests: the credential arrives with every
// analysis and is never retained.
type Server struct {
	config   Config
	analyzer *analysis.Analyzer
	markdown *markdown.Renderer
	logger   *zap.Logger
	app      *fiber.App
}

// New creates a new Server.
func New(config Config, analyzer *analysis.Analyzer, logger *zap.Logger) (*Server, error) {
	if analyzer == nil {
		return nil, errors.New("server requires an analyzer")
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 20 << 20
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		BodyLimit:             config.MaxUploadBytes + formOverheadBytes,
		// Form values outlive the handler: the analysis streams after it returns
		Immutable: true,
	})

	s := &Server{
		config:   config,
		analyzer: analyzer,
		markdown: markdown.NewRenderer(),
		logger:   logger,
		app:      app,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Get("/", s.handleIndex)
	s.app.Get("/static/*", adaptor.HTTPHandler(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS()))),
	))

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	s.app.Get("/api/info", s.handleInfo)
	s.app.Post("/api/analyze", s.handleAnalyze)
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("provider", s.config.Provider),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (s *Server) RunWithListener(ln net.Listener) error {
	s.logger.Info("starting server", zap.String("listen", ln.Addr().String()))
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight analyses.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML())
}

// InfoResponse describes the configured model for the page header.
type InfoResponse struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

func (s *Server) handleInfo(c *fiber.Ctx) error {
	return c.JSON(InfoResponse{Provider: s.config.Provider, Model: s.config.Model})
}

// handleAnalyze validates the form, then streams the model's answer as
// NDJSON events: zero or more "update" events followed by one "done" or
// "error" event. Missing inputs are answered with 422 and no model call.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	in, err := s.collectInput(c)
	switch {
	case errors.Is(err, errUnsupportedImage):
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(llm.ErrorResponse{Error: "solo se aceptan imágenes jpg, jpeg o png"})
	case errors.Is(err, errImageTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(llm.ErrorResponse{Error: "la imagen es demasiado grande"})
	case err != nil:
		s.logger.Error("failed to read upload", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	req, err := s.analyzer.Prepare(in)
	if err != nil {
		var missing *analysis.MissingInputError
		if errors.As(err, &missing) {
			s.logger.Debug("analysis missing input", zap.Error(err))
			return c.Status(fiber.StatusUnprocessableEntity).JSON(llm.WarningResponse{Warnings: missing.Warnings()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "internal error"})
	}

	id := analysis.NewID()
	credential := in.Credential

	c.Set("Content-Type", "application/x-ndjson")
	c.Set("Cache-Control", "no-cache")
	c.Set("X-Analysis-Id", id)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		surface := &streamSurface{w: w, markdown: s.markdown, logger: s.logger}

		// The request context is recycled once the handler returns, so the
		// analysis gets its own. The analyzer applies the configured timeout.
		s.analyzer.Run(context.Background(), id, req, credential, surface)
	}))

	return nil
}

// collectInput reads the multipart form. An absent image is not an error here;
// it is reported by validation.
func (s *Server) collectInput(c *fiber.Ctx) (analysis.Input, error) {
	in := analysis.Input{
		Credential:   strings.TrimSpace(c.FormValue("api_key")),
		WantsContext: parseBool(c.FormValue("wants_context")),
		Context:      c.FormValue("context"),
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return in, nil
	}
	if fh.Size > int64(s.config.MaxUploadBytes) {
		return in, errImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return in, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(s.config.MaxUploadBytes)+1))
	if err != nil {
		return in, err
	}
	if len(data) > s.config.MaxUploadBytes {
		return in, errImageTooLarge
	}
	if len(data) == 0 {
		return in, nil
	}

	image := vision.NewImageAsset(fh.Filename, fh.Header.Get("Content-Type"), data)
	if !image.Supported() {
		return in, errUnsupportedImage
	}

	s.logger.Debug("received image",
		zap.String("filename", fh.Filename),
		zap.String("content_type", image.ContentType),
		zap.Int("size", image.Size()),
	)

	in.Image = image
	return in, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
