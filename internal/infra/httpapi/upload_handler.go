package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/usecase"
	"go.uber.org/zap"
)

var allowedExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

type UploadHandler struct {
	uc            *usecase.AnalyzeVideoUseCase
	uploadDir     string
	maxUploadMB   int64
	frameRate     float64
	requestBudget time.Duration
	logger        *zap.Logger
}

type UploadHandlerConfig struct {
	UploadDir     string
	MaxUploadMB   int64
	FrameRate     float64
	RequestBudget time.Duration
}

func NewUploadHandler(uc *usecase.AnalyzeVideoUseCase, cfg UploadHandlerConfig, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uc:            uc,
		uploadDir:     cfg.UploadDir,
		maxUploadMB:   cfg.MaxUploadMB,
		frameRate:     cfg.FrameRate,
		requestBudget: cfg.RequestBudget,
		logger:        logger,
	}
}

type analyzeResponse struct {
	VideoURL string                 `json:"video_url"`
	Analysis []entity.FrameAnalysis `json:"analysis"`
	Stats    *entity.SessionStats   `json:"stats"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *UploadHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer file.Close()

	if !ValidVideoUpload(header.Filename, header.Header.Get("Content-Type")) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported file type: %s", header.Filename))
		return
	}

	frameRate := h.frameRate
	if v := r.FormValue("frameRate"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "frameRate must be a positive number")
			return
		}
		frameRate = parsed
	}
	prompt := r.FormValue("prompt")
	testMode := parseBool(r.FormValue("testMode"))
	email := r.FormValue("email")

	session := entity.NewAnalysisSession(header.Filename, header.Size, prompt, frameRate)
	log := h.logger.With(zap.String("session_id", session.ID.String()))

	videoPath, err := h.stageUpload(file, header.Filename, session)
	if err != nil {
		log.Error("failed to stage upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(videoPath)

	ctx, cancel := context.WithTimeout(r.Context(), h.requestBudget)
	defer cancel()

	result, err := h.uc.Execute(ctx, usecase.AnalyzeInput{
		Session:   session,
		VideoPath: videoPath,
		Prompt:    prompt,
		FrameRate: frameRate,
		TestMode:  testMode,
		Email:     email,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("request exceeded processing budget", zap.Duration("budget", h.requestBudget))
			writeError(w, http.StatusRequestTimeout, "video processing timed out")
			return
		}
		log.Error("analysis pipeline failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		VideoURL: "/processed/" + result.ProcessedKey,
		Analysis: result.Analyses,
		Stats:    result.Stats,
	})
}

// ValidVideoUpload accepts an upload when either its extension or its
// declared MIME type is on the allow-list. Only both failing rejects.
func ValidVideoUpload(filename, contentType string) bool {
	if allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return true
	}
	return strings.HasPrefix(contentType, "video/")
}

func (h *UploadHandler) stageUpload(file io.Reader, originalName string, session *entity.AnalysisSession) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".mp4"
	}
	dest := filepath.Join(h.uploadDir, session.ID.String()+ext)
	session.VideoKey = filepath.Base(dest)

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write staging file: %w", err)
	}
	return dest, nil
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
