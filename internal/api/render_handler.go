package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/cutroom/cutroom-agent/internal/export"
	"github.com/cutroom/cutroom-agent/internal/media"
	"github.com/cutroom/cutroom-agent/internal/render"
)

func startRenderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RenderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		name := export.SanitizeName(req.FileName, 120)
		if name == "" {
			name = "render"
		}
		if err := os.MkdirAll(cfg.ExportsDir, 0755); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to create exports directory", "INTERNAL_ERROR")
			return
		}
		outputPath := filepath.Join(cfg.ExportsDir, name+".mp4")

		jobID, err := cfg.Orchestrator.StartRender(r.Context(), req.Timeline, req.Assets, outputPath)
		if err != nil {
			switch {
			case errors.Is(err, render.ErrNoClips):
				WriteError(w, http.StatusUnprocessableEntity, err.Error(), "NO_CLIPS")
			case errors.Is(err, media.ErrNotFound):
				WriteError(w, http.StatusUnprocessableEntity, err.Error(), "MEDIA_NOT_FOUND")
			default:
				cfg.Logger.Error("render launch failed", "error", err)
				WriteError(w, http.StatusInternalServerError, "failed to start render", "INTERNAL_ERROR")
			}
			return
		}

		WriteJSON(w, http.StatusAccepted, RenderStartResponse{JobID: jobID})
	}
}

func renderJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		status, ok := cfg.Orchestrator.Job(id)
		if !ok {
			WriteError(w, http.StatusNotFound, "render job not found", "NOT_FOUND")
			return
		}

		WriteJSON(w, http.StatusOK, JobToResponse(status))
	}
}

func renderProgressHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := cfg.Orchestrator.Latest()
		WriteJSON(w, http.StatusOK, RenderProgressResponse{
			Progress:    status.Progress,
			IsRendering: status.IsRendering(),
		})
	}
}

func renderFileHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		path, err := cfg.Orchestrator.OutputFile(id)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
			return
		}

		http.ServeFile(w, r, path)
	}
}
