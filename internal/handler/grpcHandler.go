package handler

import (
	"context"
	"time"

	"file-storage-service/pkg/logger"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const probeTimeout = 5 * time.Second

// Probe checks one dependency. Its Name is also the gRPC health service name.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves grpc.health.v1.Health. The overall ("") status is
// SERVING only while every probe passes.
type HealthHandler struct {
	server   *health.Server
	probes   []Probe
	interval time.Duration
}

func NewHealthHandler(interval time.Duration, probes ...Probe) *HealthHandler {
	h := &HealthHandler{server: health.NewServer(), probes: probes, interval: interval}
	h.server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthHandler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

func (h *HealthHandler) Server() healthpb.HealthServer {
	return h.server
}

// Check runs every probe once and publishes the results.
func (h *HealthHandler) Check(ctx context.Context) bool {
	healthy := true
	for _, p := range h.probes {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.Check(pctx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			healthy = false
			status = healthpb.HealthCheckResponse_NOT_SERVING
			logger.GetLogger(ctx).Warn("health probe failed", zap.String("probe", p.Name), zap.Error(err))
		}
		h.server.SetServingStatus(p.Name, status)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", overall)
	return healthy
}

// Run checks immediately, then every interval until ctx is done, and finally
// marks every service NOT_SERVING.
func (h *HealthHandler) Run(ctx context.Context) {
	h.Check(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
