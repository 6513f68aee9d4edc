// Package pipeline turns inbound message batches into persisted records and
// automatic replies. Batches queue in arrival order and a single drainer
// processes them, so entries within a batch are handled sequentially and two
// batches never interleave.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/islechat/go-wa-backend/internal/domain"
	"github.com/islechat/go-wa-backend/internal/store"
	"github.com/islechat/go-wa-backend/internal/transport"
)

var (
	inboundProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_inbound_messages_total",
			Help: "Inbound messages processed, by outcome.",
		},
		[]string{"outcome"},
	)

	batchesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_batches_dropped_total",
			Help: "Inbound batches dropped because the queue was full.",
		},
	)

	repliesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_replies_sent_total",
			Help: "Automatic replies dispatched successfully.",
		},
	)
)

func init() {
	prometheus.MustRegister(inboundProcessed, batchesDropped, repliesSent)
}

// Sender is the live-connection surface the pipeline needs: dispatch plus a
// connectivity probe. *session.Manager satisfies it.
type Sender interface {
	Send(ctx context.Context, to, text string) error
	Connected() bool
	SelfAddr() string
}

// Decider chooses the reply text for an inbound message.
type Decider interface {
	Decide(ctx context.Context, text string) string
}

// MessageStores is the storage slice the pipeline touches.
type MessageStores interface {
	store.MessageStore
	store.ContactStore
	store.ReceiptStore
}

// Pipeline processes inbound batches and serves the operator send path.
type Pipeline struct {
	store  MessageStores
	policy Decider
	sender Sender
	log    zerolog.Logger
	tracer trace.Tracer

	queue chan []transport.Inbound

	// receiptTTL bounds how long an Idempotency-Key pins its first result.
	receiptTTL time.Duration
}

// New constructs a Pipeline with a bounded batch queue. queueSize caps the
// number of batches waiting for the drainer; overflow drops the newest batch
// with a log line rather than blocking the transport event loop.
func New(st MessageStores, policy Decider, sender Sender, queueSize int, receiptTTL time.Duration, log zerolog.Logger) *Pipeline {
	if queueSize <= 0 {
		queueSize = 256
	}
	if receiptTTL <= 0 {
		receiptTTL = 24 * time.Hour
	}
	return &Pipeline{
		store:      st,
		policy:     policy,
		sender:     sender,
		log:        log,
		tracer:     otel.Tracer("pipeline"),
		queue:      make(chan []transport.Inbound, queueSize),
		receiptTTL: receiptTTL,
	}
}

// Enqueue hands one batch to the drainer without blocking. A full queue
// drops the batch; the transport will redeliver nothing, so the drop is
// logged loudly.
func (p *Pipeline) Enqueue(_ context.Context, batch []transport.Inbound) {
	if len(batch) == 0 {
		return
	}
	select {
	case p.queue <- batch:
	default:
		batchesDropped.Inc()
		p.log.Error().Int("size", len(batch)).Msg("inbound queue full, batch dropped")
	}
}

// Run drains the batch queue until ctx is cancelled. Call it from exactly
// one goroutine.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-p.queue:
			p.HandleBatch(ctx, batch)
		}
	}
}

// HandleBatch processes one batch sequentially. Each entry is independent:
// a failure is logged and skipped, never aborting the remainder of the batch.
func (p *Pipeline) HandleBatch(ctx context.Context, batch []transport.Inbound) {
	ctx, span := p.tracer.Start(ctx, "pipeline.HandleBatch")
	defer span.End()

	for _, in := range batch {
		if err := p.handleOne(ctx, in); err != nil {
			inboundProcessed.WithLabelValues("error").Inc()
			p.log.Error().Err(err).Str("from", in.From).Msg("inbound message failed")
			continue
		}
		inboundProcessed.WithLabelValues("ok").Inc()
	}
}

// handleOne runs the per-message steps in order: record the contact, persist
// the inbound copy, decide a reply, dispatch it, and persist the outbound
// copy only after dispatch succeeded.
func (p *Pipeline) handleOne(ctx context.Context, in transport.Inbound) error {
	// Entries without an extractable text body (media, reactions, stubs)
	// are skipped silently.
	if in.Text == "" {
		return nil
	}
	if in.From == "" {
		return errors.New("inbound message without sender address")
	}

	if _, err := p.store.UpsertContact(ctx, in.From, ""); err != nil {
		// Contact bookkeeping is best effort; the message still flows.
		p.log.Warn().Err(err).Str("from", in.From).Msg("contact upsert failed")
	}

	self := p.sender.SelfAddr()
	if _, err := p.store.SaveMessage(ctx, &domain.Message{
		FromAddr:  in.From,
		ToAddr:    self,
		Direction: domain.DirectionIn,
		Text:      in.Text,
		Meta:      in.Meta,
	}); err != nil {
		return err
	}

	reply := p.policy.Decide(ctx, in.Text)
	if reply == "" {
		return nil
	}

	if !p.sender.Connected() {
		p.log.Warn().Str("to", in.From).Msg("reply skipped, not connected")
		return nil
	}
	if err := p.sender.Send(ctx, in.From, reply); err != nil {
		p.log.Error().Err(err).Str("to", in.From).Msg("reply dispatch failed")
		return nil
	}
	repliesSent.Inc()

	if _, err := p.store.SaveMessage(ctx, &domain.Message{
		FromAddr:  self,
		ToAddr:    in.From,
		Direction: domain.DirectionOut,
		Text:      reply,
	}); err != nil {
		// Dispatched but not recorded; surface it, the send itself stands.
		p.log.Error().Err(err).Str("to", in.From).Msg("outbound persist failed")
	}
	return nil
}

// Send is the operator-initiated path behind POST /api/send. It dispatches
// over the live connection and persists the outbound record after success.
// A non-empty idemKey makes the call replay-safe: a repeat within the
// receipt TTL returns the original message ID without sending again.
func (p *Pipeline) Send(ctx context.Context, userID, to, text, idemKey string) (int64, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Send")
	defer span.End()

	if idemKey != "" {
		if rec, err := p.store.GetSendReceipt(ctx, userID, idemKey, time.Now().UTC()); err == nil {
			return rec.MessageID, nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return 0, err
		}
	}

	if err := p.sender.Send(ctx, to, text); err != nil {
		return 0, err
	}
	repliesSent.Inc()

	msg := &domain.Message{
		FromAddr:  p.sender.SelfAddr(),
		ToAddr:    to,
		Direction: domain.DirectionOut,
		Text:      text,
	}
	id, err := p.store.SaveMessage(ctx, msg)
	if err != nil {
		return 0, err
	}

	if idemKey != "" {
		rec := &domain.SendReceipt{
			UserID:    userID,
			Key:       idemKey,
			MessageID: id,
			ExpiresAt: time.Now().UTC().Add(p.receiptTTL),
		}
		if err := p.store.PutSendReceipt(ctx, rec); err != nil {
			p.log.Warn().Err(err).Msg("send receipt persist failed")
		}
	}
	return id, nil
}
