package assessment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/afi-risk/pkg/common/logger"
	"github.com/synaptica-ai/afi-risk/pkg/report"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/form", h.handleForm).Methods(http.MethodGet)
	router.HandleFunc("/assessments", h.handleAssess).Methods(http.MethodPost)
	router.HandleFunc("/assessments/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/assessments/{id}", h.handleReset).Methods(http.MethodDelete)
	router.HandleFunc("/assessments/{id}/report.pdf", h.handleReport).Methods(http.MethodGet)
	router.HandleFunc("/assessments/{id}/chart.png", h.handleChart).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields": h.service.Form(),
		"views":  []report.View{report.ModelView, report.ClinicalView},
	})
}

func (h *HTTPHandler) handleAssess(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid assessment payload")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.service.Assess(r.Context(), req)
	if err != nil {
		if stage := StageOf(err); stage != "" {
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Stage: stage})
			return
		}
		logger.Log.WithError(err).Error("failed to process assessment")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, result.ID))
	writeJSON(w, http.StatusCreated, result.Render(result.View))
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Render(result.ViewOr(r.URL.Query().Get("view"))))
}

func (h *HTTPHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.WriteReport(r.Context(), &buf, mux.Vars(r)["id"], r.URL.Query().Get("view")); err != nil {
		h.writeLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="mortality_risk_report.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *HTTPHandler) handleChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.WriteChart(r.Context(), &buf, mux.Vars(r)["id"]); err != nil {
		h.writeLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="feature_contributions.png"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *HTTPHandler) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrNotFound.Error()})
		return
	}
	logger.Log.WithError(err).Error("failed to load assessment")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
