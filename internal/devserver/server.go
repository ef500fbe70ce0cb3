// Package devserver is a local stand-in for the document backend: upload
// credentials, object storage, background summarization and chat.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/docchat-cli/internal/config"
)

// maxUploadBytes bounds a single PUT to /objects.
const maxUploadBytes = 64 << 20

// Options tunes a Server.
type Options struct {
	ProcessingDelay time.Duration
	CORSOrigins     []string
	// Logger receives request and processing logs. Nil means stderr.
	Logger *log.Logger
	Now    func() time.Time
}

type Server struct {
	engine    *gin.Engine
	store     Store
	objects   Objects
	processor *Processor
	logger    *log.Logger
	now       func() time.Time
}

// New builds a server over the given document table and object storage.
func New(store Store, objects Objects, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "docchat-serve ", log.LstdFlags)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(opts.Logger))
	engine.Use(CORS(opts.CORSOrigins))

	s := &Server{
		engine:    engine,
		store:     store,
		objects:   objects,
		processor: newProcessor(store, objects, opts.ProcessingDelay, opts.Logger, opts.Now),
		logger:    opts.Logger,
		now:       opts.Now,
	}
	registerRoutes(engine, s)
	return s
}

// Open builds a server from configuration: Redis when redis_url is set and
// MinIO when minio.endpoint is set, in-memory otherwise.
func Open(ctx context.Context, cfg config.DevServer, logger *log.Logger) (*Server, error) {
	var store Store = NewMemoryStore()
	if cfg.RedisURL != "" {
		rs, err := NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("init redis store: %w", err)
		}
		store = rs
	}
	var objects Objects = NewMemoryObjects(cfg.PublicURL)
	if cfg.Minio.Endpoint != "" {
		mo, err := NewMinioObjects(ctx, cfg.Minio)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		objects = mo
	}
	return New(store, objects, Options{
		ProcessingDelay: cfg.ProcessingDelay(),
		CORSOrigins:     cfg.CORSOrigins,
		Logger:          logger,
	}), nil
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Backends names the storage in use, for startup logs.
func (s *Server) Backends() string {
	store, objects := "memory", "memory"
	if _, ok := s.store.(*RedisStore); ok {
		store = "redis"
	}
	if _, ok := s.objects.(*MinioObjects); ok {
		objects = "minio"
	}
	return fmt.Sprintf("store=%s objects=%s", store, objects)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-errCh
		return err
	}
}

// Close stops background processing and releases the document table.
func (s *Server) Close() error {
	s.processor.Close()
	return s.store.Close()
}

// ownerOf recovers the user id encoded in a file id.
func ownerOf(fileID string) string {
	if i := strings.Index(fileID, fileIDSeparator); i > 0 {
		return fileID[:i]
	}
	return "unknown_user"
}

func readBody(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}
