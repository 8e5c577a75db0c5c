package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cutroom/cutroom-agent/internal/export"
	"github.com/cutroom/cutroom-agent/internal/logging"
)

func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, name, dir, ok := parseExportRequest(w, r, cfg)
		if !ok {
			return
		}

		outputPath := filepath.Join(dir, name+".edl")
		err := export.WriteEDL(req.Timeline, req.Assets, cfg.Locator, name, outputPath)
		if err != nil {
			writeExportError(w, cfg, err)
			return
		}

		cfg.Logger.Info("export written", "format", "edl", "path", logging.SanitizePath(outputPath))
		WriteJSON(w, http.StatusOK, ExportResponse{
			Status:     "ok",
			Format:     "edl",
			OutputPath: outputPath,
		})
	}
}

func exportXMLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, name, dir, ok := parseExportRequest(w, r, cfg)
		if !ok {
			return
		}

		outputPath := filepath.Join(dir, name+".xml")
		err := export.WriteXML(r.Context(), req.Timeline, req.Assets, cfg.Locator, cfg.Prober, name, outputPath)
		if err != nil {
			writeExportError(w, cfg, err)
			return
		}

		cfg.Logger.Info("export written", "format", "xml", "path", logging.SanitizePath(outputPath))
		WriteJSON(w, http.StatusOK, ExportResponse{
			Status:     "ok",
			Format:     "xml",
			OutputPath: outputPath,
		})
	}
}

func parseExportRequest(w http.ResponseWriter, r *http.Request, cfg ServerConfig) (req ExportRequest, name, dir string, ok bool) {
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return req, "", "", false
	}

	name = export.SanitizeName(req.ProjectName, 120)
	if name == "" {
		name = "untitled"
	}

	dir = req.OutputDir
	if dir == "" {
		dir = cfg.ExportsDir
		if err := os.MkdirAll(dir, 0755); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to create exports directory", "INTERNAL_ERROR")
			return req, "", "", false
		}
	} else if err := export.ValidateOutputDir(dir); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return req, "", "", false
	}

	return req, name, dir, true
}

func writeExportError(w http.ResponseWriter, cfg ServerConfig, err error) {
	var noClips *export.NoClipsError
	if errors.As(err, &noClips) {
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "NO_CLIPS")
		return
	}
	cfg.Logger.Error("export failed", "error", err)
	WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
}
