package routing

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/haulcore/dispatch-engine/engine/domain"
	"github.com/haulcore/dispatch-engine/pkg/natsutil"
	"github.com/haulcore/dispatch-engine/pkg/resilience"
)

// Advisor supplies a strategy narrative for a candidate load set. The call
// is bounded by a timeout; any failure is absorbed by the optimizer, which
// substitutes FallbackNarrative so optimization never stalls on this
// dependency.
type Advisor interface {
	Advise(ctx context.Context, loads []domain.LoadOpportunity, vehicleID string) (Narrative, error)
}

// Fallback narrative constants. These are fixed so that an advisory outage
// produces byte-identical records for identical inputs.
const (
	FallbackStrategy   = "sequential_nearest_delivery"
	FallbackRisk       = "low"
	FallbackConfidence = 70.0
)

// FallbackNarrative is the deterministic substitute used on advisory
// failure or timeout.
func FallbackNarrative() Narrative {
	return Narrative{
		PrimaryStrategy: FallbackStrategy,
		Alternatives:    []string{"split_across_vehicles", "defer_lowest_urgency"},
		RiskTier:        FallbackRisk,
		ConfidencePct:   FallbackConfidence,
	}
}

// AdviseSubject is the NATS request/reply subject for the advisory service.
const AdviseSubject = "dispatch.advisory.advise"

// adviseRequest is the wire shape sent to the advisory service.
type adviseRequest struct {
	VehicleID string                   `json:"vehicle_id"`
	Loads     []domain.LoadOpportunity `json:"loads"`
}

// NATSAdvisor calls the advisory service over NATS request/reply, guarded
// by a circuit breaker and a client-side rate limiter.
type NATSAdvisor struct {
	nc      *nats.Conn
	timeout time.Duration
	breaker *resilience.Breaker
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewNATSAdvisor creates an advisory client. timeout bounds each request;
// zero means one second.
func NewNATSAdvisor(nc *nats.Conn, timeout time.Duration, logger *slog.Logger) *NATSAdvisor {
	if timeout <= 0 {
		timeout = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSAdvisor{
		nc:      nc,
		timeout: timeout,
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		logger:  logger,
	}
}

// Advise requests a narrative. Rate limiting waits for a slot within the
// caller's context; the breaker short-circuits a down advisory service so
// optimizations fall back immediately instead of waiting out the timeout.
func (a *NATSAdvisor) Advise(ctx context.Context, loads []domain.LoadOpportunity, vehicleID string) (Narrative, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return Narrative{}, err
	}
	var out Narrative
	err := a.breaker.Call(ctx, func(ctx context.Context) error {
		n, err := natsutil.Request[adviseRequest, Narrative](ctx, a.nc, AdviseSubject, adviseRequest{
			VehicleID: vehicleID,
			Loads:     loads,
		}, a.timeout)
		if err != nil {
			return err
		}
		out = n
		return nil
	})
	if err != nil {
		a.logger.Warn("advisory call failed", "vehicle_id", vehicleID, "err", err)
		return Narrative{}, err
	}
	return out, nil
}

// StaticAdvisor returns a fixed narrative; used in tests and as a local
// stand-in when no advisory service is deployed.
type StaticAdvisor struct {
	Result Narrative
	Err    error
}

func (s StaticAdvisor) Advise(context.Context, []domain.LoadOpportunity, string) (Narrative, error) {
	return s.Result, s.Err
}
