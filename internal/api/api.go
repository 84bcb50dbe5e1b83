package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/gas-detector/internal/detector"
	"github.com/thatsimonsguy/gas-detector/internal/model"
)

// Store is the settings/event persistence the API reads and writes.
type Store interface {
	LoadSettings() (model.Settings, error)
	SaveSettings(model.Settings) error
	RecentEvents(limit int) ([]model.Event, error)
}

// Pipeline is the running detector the API queries and pokes.
type Pipeline interface {
	Status() detector.Snapshot
	ApplySettings(model.Settings)
	RequestRecalibration()
}

type Server struct {
	store    Store
	pipeline Pipeline
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(store Store, pipeline Pipeline) *Server {
	return &Server{
		store:    store,
		pipeline: pipeline,
	}
}

func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.getIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.getStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/config", s.getConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/config", s.putConfig).Methods(http.MethodPut)
	r.HandleFunc("/api/calibrate", s.postCalibrate).Methods(http.MethodPost)
	r.HandleFunc("/api/events", s.getEvents).Methods(http.MethodGet)

	return corsHandler(r)
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Info().Str("address", addr).Msg("Starting REST API server")

	return http.ListenAndServe(addr, s.Router())
}

func corsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexPage)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.pipeline.Status())
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.LoadSettings()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load settings")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	var req model.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.DeviceName == "" {
		s.writeError(w, http.StatusBadRequest, "Device name is required")
		return
	}
	if req.ThresholdLimit <= 0 {
		s.writeError(w, http.StatusBadRequest, "Threshold limit must be positive")
		return
	}
	if req.ThresholdDuration < 0 || req.PublishWarmup < 0 {
		s.writeError(w, http.StatusBadRequest, "Durations must not be negative")
		return
	}
	if req.MQTTEnabled && req.MQTTServer == "" {
		s.writeError(w, http.StatusBadRequest, "MQTT server is required when MQTT is enabled")
		return
	}

	// The baseline belongs to the calibration pipeline; whatever the client
	// sent is ignored in favor of the persisted value.
	current, err := s.store.LoadSettings()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load settings")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	req.Baseline = current.Baseline

	if err := s.store.SaveSettings(req); err != nil {
		log.Error().Err(err).Msg("Failed to save settings")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.pipeline.ApplySettings(req)
	log.Info().
		Int("threshold_limit", req.ThresholdLimit).
		Int("threshold_duration", req.ThresholdDuration).
		Msg("Settings updated via API")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) postCalibrate(w http.ResponseWriter, r *http.Request) {
	s.pipeline.RequestRecalibration()
	log.Info().Msg("Recalibration requested via API")
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) getEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			s.writeError(w, http.StatusBadRequest, "Limit must be between 1 and 500")
			return
		}
		limit = n
	}

	events, err := s.store.RecentEvents(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load events")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
