package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"whisper-audio-service/domain/storage"
	"whisper-audio-service/domain/video"
)

type urlRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type extractResponse struct {
	Success     bool   `json:"success"`
	AudioFile   string `json:"audioFile"`
	Size        int64  `json:"size"`
	Duration    int    `json:"duration"`
	DownloadURL string `json:"downloadUrl"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// decodeURLRequest reads the {url} body shared by /info and
// /extract-audio. A missing URL is reported and false returned.
func decodeURLRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required", "")
		return "", false
	}
	return req.URL, true
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURLRequest(w, r)
	if !ok {
		return
	}

	md, err := s.extractor.Info(r.Context(), url)
	if err != nil {
		if errors.Is(err, video.ErrInvalidURL) {
			writeError(w, http.StatusBadRequest, "Invalid YouTube URL", "")
			return
		}
		s.logger.Error().Err(err).Str("url", url).Msg("failed to get video info")
		writeError(w, http.StatusInternalServerError, "Failed to get video information", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, md)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	url, ok := decodeURLRequest(w, r)
	if !ok {
		return
	}

	result, err := s.extractor.Extract(r.Context(), url)
	if err != nil {
		switch {
		case errors.Is(err, video.ErrInvalidURL):
			writeError(w, http.StatusBadRequest, "Invalid YouTube URL", "")
		case errors.Is(err, video.ErrDurationExceeded):
			writeError(w, http.StatusBadRequest,
				"Video is too long. Please use videos shorter than 20 minutes for best transcription quality.", "")
		default:
			s.logger.Error().Err(err).Str("url", url).Msg("failed to extract audio")
			writeError(w, http.StatusInternalServerError,
				"Failed to extract audio from YouTube video", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Success:     true,
		AudioFile:   result.FileName,
		Size:        result.Size,
		Duration:    result.Duration,
		DownloadURL: "/api/youtube/download/" + result.FileName,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	size, err := s.store.Size(filename)
	if err != nil {
		// Traversal names and absent artifacts look the same to callers.
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrUnsafeFilename) {
			writeError(w, http.StatusNotFound, "Audio file not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to download audio file", err.Error())
		return
	}

	rc, err := s.store.OpenRead(filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Audio file not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to download audio file", err.Error())
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

	if _, err := io.Copy(w, rc); err != nil {
		// The client disconnected mid-stream; nothing useful to send.
		s.logger.Warn().Err(err).Str("file", filename).Msg("download stream interrupted")
		return
	}

	s.scheduleDelete(filename)
}

// scheduleDelete removes the artifact after the grace delay. Deletion
// is idempotent, so racing the retention sweeper is harmless.
func (s *Server) scheduleDelete(filename string) {
	logger := s.logger
	store := s.store
	time.AfterFunc(s.graceDelay, func() {
		if err := store.Delete(filename); err != nil {
			logger.Warn().Err(err).Str("file", filename).Msg("post-download cleanup failed")
			return
		}
		logger.Info().Str("file", filename).Msg("cleaned up file")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
