// Package mockserver runs an in-process AskIt API double. It serves the same
// HTTP surface as the real server so clients can be exercised end to end
// without the RAG backend.
package mockserver

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ZhangYouJie-Major/AskIt/internal/adapters/docstore"
	"github.com/ZhangYouJie-Major/AskIt/internal/adapters/loader"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/entities"
	"github.com/ZhangYouJie-Major/AskIt/internal/domain/ports"
	"github.com/ZhangYouJie-Major/AskIt/internal/logger"
)

const (
	DefaultPrefix        = "/api/v1"
	DefaultMaxUploadSize = 100 << 20
	DefaultChunkCount    = 3
	DefaultTopK          = 5
	DefaultPageLimit     = 20

	// Messages returned by the AskIt server.
	MsgNotFound = "文档不存在"
	MsgDeleted  = "文档已删除"
	MsgNoAnswer = "知识库中没有找到相关信息"
)

// AnswerFunc produces the response to a query. Returning an error yields a
// 500 with the error text as detail.
type AnswerFunc func(ctx context.Context, req entities.QueryRequest) (*entities.QueryResponse, error)

// Config configures the mock server.
type Config struct {
	Prefix            string
	Store             ports.DocumentStore
	Answer            AnswerFunc
	ProcessingDelay   time.Duration // 0 leaves uploads pending
	ChunkCount        int
	MaxUploadSize     int64
	AllowedExtensions []string
	Users             int
}

// Server is the mock AskIt API.
type Server struct {
	app      *fiber.App
	cfg      Config
	store    ports.DocumentStore
	registry *prometheus.Registry
	requests *prometheus.CounterVec

	mu      sync.Mutex
	queries []entities.QueryRequest

	done    chan struct{}
	stop    sync.Once
	pending sync.WaitGroup
}

// New creates a server. A nil Store means an in-memory store.
func New(cfg Config) *Server {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	cfg.Prefix = "/" + strings.Trim(cfg.Prefix, "/")
	if cfg.Store == nil {
		cfg.Store = docstore.NewInMemoryStore()
	}
	if cfg.ChunkCount <= 0 {
		cfg.ChunkCount = DefaultChunkCount
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = loader.DefaultExtensions
	}
	if cfg.Users <= 0 {
		cfg.Users = 1
	}

	s := &Server{
		cfg:      cfg,
		store:    cfg.Store,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "askit_mock_requests_total",
			Help: "Requests served by the mock AskIt server.",
		}, []string{"method", "route", "status"}),
		done: make(chan struct{}),
	}
	if s.cfg.Answer == nil {
		s.cfg.Answer = s.answerFromStore
	}
	s.registry.MustRegister(s.requests)

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             int(cfg.MaxUploadSize) + 1<<20,
		ErrorHandler:          errorHandler,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(s.instrument)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.app.Group(s.cfg.Prefix)
	api.Post("/query/", s.handleQuery)

	api.Get("/documents/", s.handleListDocuments)
	api.Post("/documents/upload", s.handleUpload)
	api.Get("/documents/:id", s.handleGetDocument)
	api.Delete("/documents/:id", s.handleDeleteDocument)

	api.Get("/health/", s.handleHealth)
	api.Get("/health/stats", s.handleStats)
}

// App exposes the Fiber app, for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	logger.Logger().Info("mock AskIt server listening", "addr", addr, "prefix", s.cfg.Prefix)
	return s.app.Listen(addr)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	logger.Logger().Info("mock AskIt server listening", "addr", ln.Addr().String(), "prefix", s.cfg.Prefix)
	return s.app.Listener(ln)
}

// Shutdown stops serving and cancels pending processing.
func (s *Server) Shutdown() error {
	s.stop.Do(func() { close(s.done) })
	err := s.app.Shutdown()
	s.pending.Wait()
	return err
}

// Queries returns the query requests received so far, in arrival order.
func (s *Server) Queries() []entities.QueryRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.QueryRequest(nil), s.queries...)
}

func (s *Server) instrument(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Run the error handler now so the recorded status is final.
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	route := c.Route().Path
	s.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
	logger.Logger().Debug("mock request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
	)
	return nil
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := err.Error()
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		msg = e.Message
	}
	return c.Status(code).JSON(fiber.Map{"detail": msg})
}

func detail(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"detail": msg})
}

func fileType(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
