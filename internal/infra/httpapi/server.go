package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// NewServer wires the public API: the analyze endpoint, static serving of
// the processed-video directory, and liveness.
func NewServer(port int, h *UploadHandler, processedDir string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/analyze", h.HandleAnalyze)
	mux.Handle("GET /processed/", http.StripPrefix("/processed/", http.FileServer(http.Dir(processedDir))))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: requestLogger(mux, logger),
	}
}

func requestLogger(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	})
}
