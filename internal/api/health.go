package api

import (
	"NetPulse/internal/log"
	"NetPulse/internal/probe"

	"google.golang.org/grpc/health/grpc_health_v1"
)

// CaptureService is the health service name reporting whether frames are being captured.
const CaptureService = "netpulse.capture"

// SetCaptureState maps a capture state onto the health of CaptureService. It has the
// shape of a capture state hook.
func (s *Server) SetCaptureState(state probe.State) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if state == probe.StateRunning {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(CaptureService, status)
	log.GetLogger().WithField("state", state.String()).Debugf("Capture health is %s", status)
}
