// Package ingest consumes load-opportunity traffic from NATS: new postings,
// withdrawals, and a dead-letter queue for payloads that fail validation.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/haulcore/dispatch-engine/engine/domain"
	"github.com/haulcore/dispatch-engine/engine/market"
	"github.com/haulcore/dispatch-engine/pkg/fn"
	"github.com/haulcore/dispatch-engine/pkg/metrics"
	"github.com/haulcore/dispatch-engine/pkg/natsutil"
)

// Subjects for the ingestion surface.
const (
	SubjectLoads    = "dispatch.loads.ingest"
	SubjectWithdraw = "dispatch.loads.withdraw"
	SubjectDLQ      = "dispatch.loads.dlq"
)

// Envelope is the wire shape of a posted load.
type Envelope struct {
	Source string                 `json:"source"`
	Load   domain.LoadOpportunity `json:"load"`
}

// Withdrawal removes a load from the open market.
type Withdrawal struct {
	LoadID string `json:"load_id"`
	Reason string `json:"reason"`
}

// deadLetter wraps a rejected payload with the rejection reason.
type deadLetter struct {
	Subject    string          `json:"subject"`
	Reason     string          `json:"reason"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}

// publishFunc is the seam between the ingestor and the wire, injected in
// tests.
type publishFunc func(ctx context.Context, subject string, v any) error

// Ingestor validates and stores posted loads. Malformed or invalid payloads
// go to the dead-letter subject instead of poisoning the store.
type Ingestor struct {
	nc       *nats.Conn
	store    *market.Store
	logger   *slog.Logger
	publish  publishFunc
	pipeline fn.Stage[Envelope, domain.LoadOpportunity]

	ingested  *metrics.Counter
	rejected  *metrics.Counter
	withdrawn *metrics.Counter

	subs []*nats.Subscription
}

// New creates an ingestor bound to the given store.
func New(nc *nats.Conn, store *market.Store, logger *slog.Logger, reg *metrics.Registry) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = metrics.New()
	}
	ing := &Ingestor{
		nc:        nc,
		store:     store,
		logger:    logger,
		ingested:  reg.Counter("loads_ingested_total", "Loads accepted into the opportunity store."),
		rejected:  reg.Counter("loads_rejected_total", "Loads dead-lettered during ingestion."),
		withdrawn: reg.Counter("loads_withdrawn_total", "Loads withdrawn from the opportunity store."),
	}
	ing.publish = func(ctx context.Context, subject string, v any) error {
		return natsutil.Publish(ctx, nc, subject, v)
	}
	ing.pipeline = fn.Then("ingest", ing.prepare(), ing.persist())
	return ing
}

// prepare stamps ingestion metadata before validation.
func (ing *Ingestor) prepare() fn.Stage[Envelope, domain.LoadOpportunity] {
	return func(_ context.Context, env Envelope) fn.Result[domain.LoadOpportunity] {
		o := env.Load
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if env.Source != "" {
			o.Source = env.Source
		}
		if o.PostedAt.IsZero() {
			o.PostedAt = time.Now().UTC()
		}
		return fn.Ok(o)
	}
}

// persist validates and stores the load. Validation errors come back from
// the store's Put.
func (ing *Ingestor) persist() fn.Stage[domain.LoadOpportunity, domain.LoadOpportunity] {
	return func(_ context.Context, o domain.LoadOpportunity) fn.Result[domain.LoadOpportunity] {
		if err := ing.store.Put(o); err != nil {
			return fn.Err[domain.LoadOpportunity](err)
		}
		return fn.Ok(o)
	}
}

// Process runs one envelope through the ingest pipeline, dead-lettering it
// on failure. It returns the stored opportunity's ID on success.
func (ing *Ingestor) Process(ctx context.Context, env Envelope) (string, error) {
	o, err := ing.pipeline(ctx, env).Unwrap()
	if err != nil {
		ing.rejected.Inc()
		ing.deadLetter(ctx, SubjectLoads, err, env)
		return "", err
	}
	ing.ingested.Inc()
	ing.logger.Info("load ingested", "load_id", o.ID, "source", o.Source, "lane", o.Origin+" -> "+o.Destination)
	return o.ID, nil
}

// Withdraw removes a load. Unknown IDs are logged and ignored; a withdrawal
// racing a competitor's booking is routine, not an error.
func (ing *Ingestor) Withdraw(ctx context.Context, w Withdrawal) {
	if ing.store.Remove(w.LoadID) {
		ing.withdrawn.Inc()
		ing.logger.Info("load withdrawn", "load_id", w.LoadID, "reason", w.Reason)
		return
	}
	ing.logger.Debug("withdrawal for unknown load", "load_id", w.LoadID)
}

func (ing *Ingestor) deadLetter(ctx context.Context, subject string, cause error, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = nil
	}
	dl := deadLetter{
		Subject:    subject,
		Reason:     cause.Error(),
		Payload:    raw,
		ReceivedAt: time.Now().UTC(),
	}
	if err := ing.publish(ctx, SubjectDLQ, dl); err != nil {
		ing.logger.Error("dead-letter publish failed", "err", err, "cause", cause)
		return
	}
	ing.logger.Warn("load dead-lettered", "reason", cause.Error())
}

// Start subscribes to the load and withdrawal subjects.
func (ing *Ingestor) Start(ctx context.Context) error {
	loadSub, err := natsutil.Subscribe(ing.nc, SubjectLoads, func(msgCtx context.Context, env Envelope, decodeErr error, raw []byte) {
		if decodeErr != nil {
			ing.rejected.Inc()
			ing.deadLetter(msgCtx, SubjectLoads, decodeErr, json.RawMessage(raw))
			return
		}
		ing.Process(msgCtx, env)
	})
	if err != nil {
		return err
	}
	ing.subs = append(ing.subs, loadSub)

	withdrawSub, err := natsutil.Subscribe(ing.nc, SubjectWithdraw, func(msgCtx context.Context, w Withdrawal, decodeErr error, raw []byte) {
		if decodeErr != nil {
			ing.deadLetter(msgCtx, SubjectWithdraw, decodeErr, json.RawMessage(raw))
			return
		}
		ing.Withdraw(msgCtx, w)
	})
	if err != nil {
		ing.Stop()
		return err
	}
	ing.subs = append(ing.subs, withdrawSub)

	ing.logger.Info("ingestion subscriptions active", "subjects", []string{SubjectLoads, SubjectWithdraw})
	return nil
}

// Stop drains the subscriptions.
func (ing *Ingestor) Stop() {
	for _, sub := range ing.subs {
		if err := sub.Drain(); err != nil {
			ing.logger.Warn("subscription drain failed", "err", err)
		}
	}
	ing.subs = nil
}
