package pub

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/roach88/slimecats/internal/doc"
	"github.com/roach88/slimecats/internal/pubwire"
)

// maxBodyBytes caps a submitted document batch.
const maxBodyBytes = 64 << 20

// NewHandler returns the pub HTTP API:
//
//	GET  /earthstar-api/v1/{workspace}/paths
//	GET  /earthstar-api/v1/{workspace}/documents
//	POST /earthstar-api/v1/{workspace}/documents
//	GET  /healthz
//
// The paths and documents listings accept a "prefix" query parameter.
func NewHandler(svc *Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{svc: svc, logger: logger}

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, req)
			logger.Info("handled", "method", req.Method, "url", req.URL, "duration", m.Duration, "status", m.Code)
		})
	})

	api := r.PathPrefix(pubwire.APIPrefix).Subrouter()
	api.Methods(http.MethodGet).Path("/{workspace}/paths").HandlerFunc(h.getPaths)
	api.Methods(http.MethodGet).Path("/{workspace}/documents").HandlerFunc(h.getDocuments)
	api.Methods(http.MethodPost).Path("/{workspace}/documents").HandlerFunc(h.postDocuments)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(h.healthz)

	return r
}

type handler struct {
	svc    *Service
	logger *slog.Logger
}

func (h *handler) getPaths(w http.ResponseWriter, r *http.Request) {
	paths, err := h.svc.Paths(r.Context(), mux.Vars(r)["workspace"], r.URL.Query().Get("prefix"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if paths == nil {
		paths = []string{}
	}
	h.reply(w, http.StatusOK, paths)
}

func (h *handler) getDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context(), mux.Vars(r)["workspace"], r.URL.Query().Get("prefix"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if docs == nil {
		docs = []doc.Document{}
	}
	h.reply(w, http.StatusOK, docs)
}

func (h *handler) postDocuments(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.reply(w, http.StatusRequestEntityTooLarge, pubwire.ErrorResponse{Error: err.Error()})
		return
	}
	var docs []doc.Document
	if err := json.Unmarshal(body, &docs); err != nil {
		h.reply(w, http.StatusBadRequest, pubwire.ErrorResponse{Error: "body must be a JSON array of documents"})
		return
	}

	n, err := h.svc.Ingest(r.Context(), mux.Vars(r)["workspace"], docs)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.reply(w, http.StatusOK, pubwire.IngestResponse{NumIngested: n})
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	h.reply(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, doc.ErrInvalidWorkspace) {
		h.reply(w, http.StatusBadRequest, pubwire.ErrorResponse{Error: err.Error()})
		return
	}
	h.logger.Error("request failed", "error", err)
	h.reply(w, http.StatusInternalServerError, pubwire.ErrorResponse{Error: "internal error"})
}

func (h *handler) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response", "error", err)
	}
}
