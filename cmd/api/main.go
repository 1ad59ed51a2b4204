// cmd/api/main.go
package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"storefront/internal/adapters/in/http/middleware"
	shared "storefront/internal/platform/di/shared"
	sfDI "storefront/internal/platform/di/storefront"
)

// atomicHandler allows swapping the underlying handler at runtime safely.
type atomicHandler struct {
	v atomic.Value // stores http.Handler
}

func newAtomicHandler(initial http.Handler) *atomicHandler {
	ah := &atomicHandler{}
	if initial == nil {
		initial = http.NotFoundHandler()
	}
	ah.v.Store(initial)
	return ah
}

func (h *atomicHandler) Store(next http.Handler) {
	if next == nil {
		return
	}
	h.v.Store(next)
}

func (h *atomicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cur := h.v.Load()
	if cur == nil {
		http.NotFound(w, r)
		return
	}
	cur.(http.Handler).ServeHTTP(w, r)
}

func main() {
	ctx := context.Background()

	// ─────────────────────────────────────────────────────────────
	// Log output: stdout + (optional) rotated file
	// ─────────────────────────────────────────────────────────────
	if logPath := strings.TrimSpace(os.Getenv("LOG_FILE")); logPath != "" {
		maxSize, err := strconv.Atoi(strings.TrimSpace(os.Getenv("LOG_MAX_SIZE_MB")))
		if err != nil || maxSize <= 0 {
			maxSize = 50
		}
		rot := &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    maxSize,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		}
		defer rot.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, rot))
		log.Printf("[boot] log output = stdout + %s (max %dMB)", logPath, maxSize)
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	// ─────────────────────────────────────────────────────────────
	// Start listening ASAP with lightweight mux (healthz only)
	// ─────────────────────────────────────────────────────────────
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	switcher := newAtomicHandler(middleware.CORS(nil)(healthMux))

	// SSE streams stay open, so there is no WriteTimeout.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           switcher,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var infraHolder atomic.Pointer[shared.Infra]
	var contHolder atomic.Pointer[sfDI.Container]
	shuttingDown := make(chan struct{})

	// ─────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c

		close(shuttingDown)
		log.Printf("[boot] received signal: %v; shutting down...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[boot] server shutdown error: %v", err)
		}

		if cont := contHolder.Swap(nil); cont != nil {
			if err := cont.Close(); err != nil {
				log.Printf("[boot] container close error: %v", err)
			}
		}
		if infra := infraHolder.Swap(nil); infra != nil {
			log.Printf("[boot] closing infra resources...")
			if err := infra.Close(); err != nil {
				log.Printf("[boot] infra close error: %v", err)
			}
		}

		close(idleConnsClosed)
	}()

	go func() {
		log.Printf("[boot] listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[boot] server error: %v", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────
	// Heavy DI init in background; then swap handler to full router
	// ─────────────────────────────────────────────────────────────
	go func() {
		initCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		infra, err := shared.NewInfra(initCtx)
		if err != nil {
			log.Printf("[boot] WARN: shared infra init failed: %v (serving /healthz only)", err)
			return
		}
		infraHolder.Store(infra)

		cont, err := sfDI.NewContainer(initCtx, infra)
		if err != nil {
			_ = infra.Close()
			infraHolder.Store(nil)
			log.Printf("[boot] WARN: storefront di init failed: %v (serving /healthz only)", err)
			return
		}
		contHolder.Store(cont)

		select {
		case <-shuttingDown:
			if c := contHolder.Swap(nil); c != nil {
				_ = c.Close()
			}
			if i := infraHolder.Swap(nil); i != nil {
				_ = i.Close()
			}
			return
		default:
		}

		switcher.Store(sfDI.NewRouter(cont))
		log.Printf("[boot] handler switched to storefront router")
	}()

	<-idleConnsClosed
	log.Printf("[boot] server stopped")
}
