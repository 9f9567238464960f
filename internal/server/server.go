package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/hacklytics/viralcast/internal/models"
	"github.com/hacklytics/viralcast/internal/predictor"
)

var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viralcast_predictions_total",
		Help: "Prediction requests by outcome.",
	}, []string{"outcome"})

	predictionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "viralcast_prediction_duration_seconds",
		Help:    "Prediction request latency.",
		Buckets: prometheus.DefBuckets,
	})
)

// predictRequest is the POST /predict body. VideoFeatures carries the
// same JSON shape the analyzer writes to the feature store.
type predictRequest struct {
	VideoFeatures *models.VideoFeatureRecord `json:"video_features"`
	Length        float64                    `json:"length"`
}

type errorResponse struct {
	Error string          `json:"error"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Server serves predictions over HTTP.
type Server struct {
	predictor *predictor.Predictor
	log       *logrus.Entry
	http      *http.Server
}

// New builds the server around a loaded predictor.
func New(addr string, p *predictor.Predictor) *Server {
	s := &Server{
		predictor: p,
		log:       logrus.WithField("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler exposes the route table.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.http.Addr).Info("Prediction server listening")
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handlePredict scores one video. GET behaves as a health probe so
// load balancers pointed at /predict get a cheap liveness answer.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.handleHealth(w, r)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "use POST"})
		return
	}

	start := time.Now()
	defer func() { predictionLatency.Observe(time.Since(start).Seconds()) }()

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		predictionsTotal.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	var req predictRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		predictionsTotal.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request shape: " + err.Error(), Input: raw})
		return
	}
	if req.VideoFeatures == nil {
		predictionsTotal.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body must contain video_features", Input: raw})
		return
	}

	prediction, err := s.predictor.Predict(req.VideoFeatures, req.Length)
	if err != nil {
		predictionsTotal.WithLabelValues("error").Inc()
		s.log.WithError(err).Warn("Prediction failed")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Input: raw})
		return
	}

	predictionsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Predictor service is running",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
