package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mp4-splitter/domain/split"
	"mp4-splitter/domain/video"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/history", historyHandler(cfg))

	r.Route("/session", func(r chi.Router) {
		r.Get("/", getSessionHandler(cfg))
		r.Post("/video", loadVideoHandler(cfg))
		r.Post("/output", setOutputHandler(cfg))
		r.Post("/points", addPointHandler(cfg))
		r.Post("/tail", addTailHandler(cfg))
		r.Patch("/points/{index}", editBoundaryHandler(cfg))
		r.Put("/points/{index}/selected", toggleSelectedHandler(cfg))
		r.Post("/export", exportHandler(cfg))
		r.Get("/preview", previewHandler(cfg))
	})

	return r
}

// writeDomainError maps the split error taxonomy onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case split.IsParseError(err):
		WriteError(w, http.StatusBadRequest, err.Error(), "PARSE_ERROR")
	case errors.Is(err, split.ErrIndexOutOfRange):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, split.ErrOpenTail), split.IsConfigurationError(err):
		WriteError(w, http.StatusConflict, err.Error(), "CONFIGURATION_ERROR")
	case split.IsExportError(err):
		WriteError(w, http.StatusBadGateway, err.Error(), "EXPORT_ERROR")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	return true
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "index must be an integer", "BAD_REQUEST")
		return 0, false
	}
	return index, true
}

func writeState(w http.ResponseWriter, cfg ServerConfig, status int) {
	WriteJSON(w, status, StateToResponse(cfg.Session.State()))
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeState(w, cfg, http.StatusOK)
	}
}

func loadVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoadVideoRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		if _, err := cfg.Session.LoadVideo(r.Context(), req.Path); err != nil {
			writeDomainError(w, err)
			return
		}
		writeState(w, cfg, http.StatusOK)
	}
}

func setOutputHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OutputRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Directory == "" {
			WriteError(w, http.StatusBadRequest, "directory is required", "BAD_REQUEST")
			return
		}

		cfg.Session.SetOutputDir(req.Directory)
		writeState(w, cfg, http.StatusOK)
	}
}

func addPointHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddPointRequest
		if !decode(w, r, &req) {
			return
		}

		var err error
		switch {
		case req.Ms != nil:
			_, err = cfg.Session.AddPoint(*req.Ms)
		case req.Time != "":
			_, err = cfg.Session.AddPointText(req.Time)
		default:
			WriteError(w, http.StatusBadRequest, "time or ms is required", "BAD_REQUEST")
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeState(w, cfg, http.StatusCreated)
	}
}

func addTailHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := cfg.Session.AddTail(); err != nil {
			writeDomainError(w, err)
			return
		}
		writeState(w, cfg, http.StatusCreated)
	}
}

func editBoundaryHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(w, r)
		if !ok {
			return
		}

		var req EditBoundaryRequest
		if !decode(w, r, &req) {
			return
		}
		which, ok := split.ParseBoundary(req.Boundary)
		if !ok {
			WriteError(w, http.StatusBadRequest, "boundary must be start or end", "BAD_REQUEST")
			return
		}

		if err := cfg.Session.EditBoundary(index, which, req.Time); err != nil {
			writeDomainError(w, err)
			return
		}
		writeState(w, cfg, http.StatusOK)
	}
}

func toggleSelectedHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, ok := indexParam(w, r)
		if !ok {
			return
		}

		var req SelectedRequest
		if !decode(w, r, &req) {
			return
		}

		if err := cfg.Session.ToggleSelected(index, req.Selected); err != nil {
			writeDomainError(w, err)
			return
		}
		writeState(w, cfg, http.StatusOK)
	}
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &video.Recorder{}
		// a client that hangs up must not kill ffmpeg partway through a segment
		result, err := cfg.Session.Export(context.WithoutCancel(r.Context()), rec)

		resp := ExportResponse{Status: "completed", Events: rec.Events}
		if resp.Events == nil {
			resp.Events = []video.Event{}
		}

		if err != nil {
			if !split.IsExportError(err) {
				writeDomainError(w, err)
				return
			}
			resp.Status = "failed"
			resp.Error = err.Error()
			WriteJSON(w, http.StatusBadGateway, resp)
			return
		}

		for _, seg := range result.Segments {
			resp.Segments = append(resp.Segments, SegmentToResponse(seg))
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// previewHandler streams the loaded video with byte-range support
func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := cfg.Session.State().Source
		if source == "" {
			WriteError(w, http.StatusConflict, "no video loaded", "CONFIGURATION_ERROR")
			return
		}

		file, err := os.Open(source)
		if err != nil {
			if os.IsNotExist(err) {
				WriteError(w, http.StatusNotFound, "file not found", "NOT_FOUND")
				return
			}
			WriteError(w, http.StatusInternalServerError, "failed to open video", "INTERNAL_ERROR")
			return
		}
		defer file.Close()

		stat, err := file.Stat()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to stat video", "INTERNAL_ERROR")
			return
		}

		w.Header().Set("Content-Type", "video/mp4")
		http.ServeContent(w, r, filepath.Base(source), stat.ModTime(), file)
	}
}

func historyHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.History == nil {
			WriteJSON(w, http.StatusOK, HistoryResponse{Runs: []RunResponse{}})
			return
		}

		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a positive integer", "BAD_REQUEST")
				return
			}
			limit = n
		}

		runs, err := cfg.History.ListRuns(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list history", "INTERNAL_ERROR")
			return
		}

		resp := HistoryResponse{Runs: make([]RunResponse, len(runs))}
		for i, run := range runs {
			resp.Runs[i] = RunToResponse(run)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
