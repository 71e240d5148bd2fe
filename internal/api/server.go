package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"NetPulse/internal/config"
	"NetPulse/internal/engine/manager"
	"NetPulse/internal/engine/queue"
	"NetPulse/internal/engine/sampler"
	"NetPulse/internal/log"
	"NetPulse/internal/model"

	"github.com/gorilla/mux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// StatusProvider is the part of the manager the API reads from.
type StatusProvider interface {
	Status() manager.Status
	Last() (model.Reading, bool)
}

// Server serves the HTTP status API and the gRPC health service.
type Server struct {
	cfg      config.APIConfig
	status   StatusProvider
	stream   http.Handler
	health   *health.Server
	router   *mux.Router
	httpSrv  *http.Server
	grpcSrv  *grpc.Server
	httpAddr net.Addr
	grpcAddr net.Addr
}

// NewServer builds the router. stream is mounted at /api/v1/stream when non-nil.
func NewServer(cfg config.APIConfig, status StatusProvider, stream http.Handler) *Server {
	s := &Server{
		cfg:    cfg,
		status: status,
		stream: stream,
		health: health.NewServer(),
	}
	s.health.SetServingStatus(CaptureService, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.healthzHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/status", s.statusHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/readings", s.readingsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/readings/latest", s.latestHandler).Methods(http.MethodGet)
	if stream != nil {
		r.Handle("/api/v1/stream", stream).Methods(http.MethodGet)
	}
	s.router = r
	return s
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on both addresses and serves in the background.
func (s *Server) Start() error {
	logger := log.GetLogger()

	httpLis, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	grpcLis, err := net.Listen("tcp", s.cfg.GRPCListenAddr)
	if err != nil {
		httpLis.Close()
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.GRPCListenAddr, err)
	}
	s.httpAddr, s.grpcAddr = httpLis.Addr(), grpcLis.Addr()

	s.grpcSrv = grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(s.grpcSrv, s.health)
	go func() {
		logger.Infof("gRPC health server starting on %s", s.grpcAddr)
		if err := s.grpcSrv.Serve(grpcLis); err != nil {
			logger.WithError(err).Error("gRPC health server stopped")
		}
	}()

	s.httpSrv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("API server starting on %s", s.httpAddr)
		if err := s.httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("API server stopped")
		}
	}()
	return nil
}

// HTTPAddr returns the bound HTTP address once started.
func (s *Server) HTTPAddr() net.Addr { return s.httpAddr }

// GRPCAddr returns the bound gRPC address once started.
func (s *Server) GRPCAddr() net.Addr { return s.grpcAddr }

// Shutdown stops both servers. Open streams are cut when ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	log.GetLogger().Info("API servers shutting down...")
	s.health.Shutdown()
	if s.grpcSrv != nil {
		s.grpcSrv.GracefulStop()
	}
	if s.httpSrv == nil {
		return nil
	}
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("API server forced to shutdown: %w", err)
	}
	return nil
}

type readingResponse struct {
	Content      string    `json:"content"`
	UploadMbps   float64   `json:"upload_mbps"`
	DownloadMbps float64   `json:"download_mbps"`
	LossPercent  float64   `json:"loss_percent"`
	SampledAt    time.Time `json:"sampled_at"`
}

func newReadingResponse(r model.Reading) *readingResponse {
	return &readingResponse{
		Content:      r.Content,
		UploadMbps:   r.UploadMbps,
		DownloadMbps: r.DownloadMbps,
		LossPercent:  r.LossPercent,
		SampledAt:    r.SampledAt,
	}
}

type queueResponse struct {
	Depth    int    `json:"depth"`
	Capacity int    `json:"capacity"`
	Evicted  uint64 `json:"evicted"`
}

type windowResponse struct {
	Size            int     `json:"size"`
	AvgUploadMbps   float64 `json:"avg_upload_mbps"`
	AvgDownloadMbps float64 `json:"avg_download_mbps"`
}

func newWindowResponse(w sampler.Window) windowResponse {
	return windowResponse{
		Size:            len(w.Readings),
		AvgUploadMbps:   w.AvgUploadMbps,
		AvgDownloadMbps: w.AvgDownloadMbps,
	}
}

type readingsResponse struct {
	windowResponse
	Readings []*readingResponse `json:"readings"`
}

type statusResponse struct {
	Capture      string                `json:"capture"`
	CaptureError string                `json:"capture_error,omitempty"`
	Interface    string                `json:"interface"`
	LocalMAC     string                `json:"local_mac"`
	Transport    string                `json:"transport"`
	Queue        queueResponse         `json:"queue"`
	Window       windowResponse        `json:"window"`
	Dispatch     queue.DispatcherStats `json:"dispatch"`
	Totals       model.Totals          `json:"totals"`
	LastReading  *readingResponse      `json:"last_reading,omitempty"`
}

func (s *Server) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	st := s.status.Status()
	resp := statusResponse{
		Capture:      st.Capture,
		CaptureError: st.CaptureError,
		Interface:    st.Interface,
		LocalMAC:     st.LocalMAC,
		Transport:    st.Transport,
		Queue: queueResponse{
			Depth:    st.QueueDepth,
			Capacity: st.QueueCapacity,
			Evicted:  st.Evicted,
		},
		Window:   newWindowResponse(st.Window),
		Dispatch: st.Dispatch,
		Totals:   st.Totals,
	}
	if st.Last != nil {
		resp.LastReading = newReadingResponse(*st.Last)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) readingsHandler(w http.ResponseWriter, _ *http.Request) {
	window := s.status.Status().Window
	resp := readingsResponse{
		windowResponse: newWindowResponse(window),
		Readings:       make([]*readingResponse, 0, len(window.Readings)),
	}
	for _, r := range window.Readings {
		resp.Readings = append(resp.Readings, newReadingResponse(r))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) latestHandler(w http.ResponseWriter, _ *http.Request) {
	reading, ok := s.status.Last()
	if !ok {
		http.Error(w, "no reading sampled yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newReadingResponse(reading))
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body)
}
