// Package ingest runs incoming complaints through validation, text analysis,
// vectorization, and storage. Stages compose through fn.Stage so the same
// pipeline serves both the NATS consumer and batch backfills.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/RelioAI/relio-mvp/engine/domain"
	"github.com/RelioAI/relio-mvp/engine/graph"
	"github.com/RelioAI/relio-mvp/engine/nlp"
	"github.com/RelioAI/relio-mvp/engine/semantic"
	"github.com/RelioAI/relio-mvp/pkg/fn"
	"github.com/RelioAI/relio-mvp/pkg/metrics"
	"github.com/RelioAI/relio-mvp/pkg/natsutil"
	"github.com/RelioAI/relio-mvp/pkg/resilience"
)

const (
	// IngestSubject is the NATS subject for incoming complaints.
	IngestSubject = "engine.complaints"
	// DLQSubject is the dead letter queue subject for failed messages.
	DLQSubject = "engine.complaints.dlq"
	// MaxRetries before sending to DLQ.
	MaxRetries = 3
)

// Vectorizer turns complaint text into an embedding. Satisfied by the fitted
// preprocessor state.
type Vectorizer interface {
	TextVector(text string) []float32
}

// Deps holds the external dependencies for the ingestion pipeline.
type Deps struct {
	Vectorizer  Vectorizer
	VectorStore *semantic.VectorStore
	GraphStore  *graph.GraphStore
	Logger      *slog.Logger

	// Breaker, when set, guards the storage stage so a down Neo4j or
	// Qdrant sheds load to the DLQ instead of hammering the stores.
	Breaker *resilience.Breaker

	// Optional consumer counters.
	Consumed *metrics.Counter
	Stored   *metrics.Counter
	Failed   *metrics.Counter
}

// Validate checks the complaint and assigns an ID when the source sent none.
var Validate fn.Stage[domain.Complaint, domain.Complaint] = func(_ context.Context, c domain.Complaint) fn.Result[domain.Complaint] {
	if err := domain.ValidateComplaint(c); err != nil {
		return fn.Err[domain.Complaint](err)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.PostedAt.IsZero() {
		c.PostedAt = time.Now().UTC()
	}
	return fn.Ok(c)
}

// Analyze fills in what the source left blank: symptom category, vehicle
// identity mined from the text, and sentiment.
var Analyze fn.Stage[domain.Complaint, AnalyzedComplaint] = func(_ context.Context, c domain.Complaint) fn.Result[AnalyzedComplaint] {
	if c.Category == "" {
		c.Category = string(nlp.Categorize(c.Text))
	}
	if c.Vehicle.Make == "" {
		if v, ok := nlp.ExtractVehicle(c.Text); ok {
			c.Vehicle = v
		}
	}
	return fn.Ok(AnalyzedComplaint{
		Complaint: c,
		Sentiment: nlp.Sentiment(c.Text),
	})
}

// NewVectorize creates a stage that embeds complaint text with the fitted
// vectorizer.
func NewVectorize(vec Vectorizer) fn.Stage[AnalyzedComplaint, VectorizedComplaint] {
	return fn.MapStage(func(a AnalyzedComplaint) VectorizedComplaint {
		return VectorizedComplaint{
			AnalyzedComplaint: a,
			Vector:            vec.TextVector(a.Complaint.Text),
		}
	})
}

// NewStore creates a stage that writes to Neo4j and Qdrant and returns the
// complaint ID.
func NewStore(vs *semantic.VectorStore, gs *graph.GraphStore) fn.Stage[VectorizedComplaint, string] {
	return func(ctx context.Context, v VectorizedComplaint) fn.Result[string] {
		c := v.Complaint
		if err := gs.SaveComplaint(ctx, c); err != nil {
			return fn.Err[string](fmt.Errorf("graph save: %w", err))
		}

		// Deterministic point ID so re-ingesting the same complaint
		// overwrites rather than duplicates.
		pointID := uuid.NewSHA1(uuid.NameSpaceURL, []byte(c.ID)).String()
		record := semantic.ComplaintVector{
			ID:        pointID,
			Vector:    v.Vector,
			Complaint: c,
		}
		if err := vs.Upsert(ctx, []semantic.ComplaintVector{record}); err != nil {
			return fn.Err[string](fmt.Errorf("vector upsert: %w", err))
		}
		return fn.Ok(c.ID)
	}
}

// NewPipeline constructs the full ingestion pipeline with traced stages.
func NewPipeline(deps Deps) fn.Stage[domain.Complaint, string] {
	validated := fn.TracedStage("ingest.validate", Validate)
	analyzed := fn.Then(validated, fn.TracedStage("ingest.analyze", Analyze))
	if deps.Logger != nil {
		analyzed = fn.Then(analyzed, fn.TapStage(func(_ context.Context, a AnalyzedComplaint) {
			deps.Logger.Debug("complaint analyzed",
				"id", a.Complaint.ID,
				"category", a.Complaint.Category,
				"sentiment_net", a.Sentiment.Net,
			)
		}))
	}
	vectorized := fn.Then(analyzed, fn.TracedStage("ingest.vectorize", NewVectorize(deps.Vectorizer)))
	store := NewStore(deps.VectorStore, deps.GraphStore)
	if deps.Breaker != nil {
		store = resilience.BreakerStage(deps.Breaker, store)
	}
	return fn.Then(vectorized, fn.TracedStage("ingest.store", store))
}

// dlqMessage is published to the DLQ on repeated failure.
type dlqMessage struct {
	Complaint domain.Complaint `json:"complaint"`
	Error     string           `json:"error"`
	Retries   int              `json:"retries"`
}

// StartConsumer subscribes to the complaint subject and runs each message
// through the pipeline with retry and DLQ support.
func StartConsumer(nc *nats.Conn, deps Deps) (*nats.Subscription, error) {
	pipeline := NewPipeline(deps)
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	return nc.Subscribe(IngestSubject, func(msg *nats.Msg) {
		if deps.Consumed != nil {
			deps.Consumed.Inc()
		}
		var complaint domain.Complaint
		if err := json.Unmarshal(msg.Data, &complaint); err != nil {
			log.Error("ingest: unmarshal failed", "error", err)
			return
		}

		ctx := natsutil.Extract(context.Background(), msg)

		retries := 0
		if msg.Header != nil {
			if v := msg.Header.Get("X-Retry-Count"); v != "" {
				fmt.Sscanf(v, "%d", &retries)
			}
		}

		result := pipeline(ctx, complaint)
		if result.IsErr() {
			if deps.Failed != nil {
				deps.Failed.Inc()
			}
			_, pipeErr := result.Unwrap()
			retries++
			log.Error("ingest: pipeline failed",
				"error", pipeErr,
				"complaint_id", complaint.ID,
				"retry", retries,
			)

			if retries >= MaxRetries {
				dlq := dlqMessage{
					Complaint: complaint,
					Error:     pipeErr.Error(),
					Retries:   retries,
				}
				data, _ := json.Marshal(dlq)
				if err := nc.Publish(DLQSubject, data); err != nil {
					log.Error("ingest: DLQ publish failed", "error", err)
				}
			} else {
				retryMsg := nats.NewMsg(IngestSubject)
				retryMsg.Data = msg.Data
				retryMsg.Header = nats.Header{}
				retryMsg.Header.Set("X-Retry-Count", fmt.Sprintf("%d", retries))
				if err := nc.PublishMsg(retryMsg); err != nil {
					log.Error("ingest: retry publish failed", "error", err)
				}
			}
		} else {
			if deps.Stored != nil {
				deps.Stored.Inc()
			}
			id, _ := result.Unwrap()
			log.Info("ingest: success", "complaint_id", id)
		}

		if msg.Reply != "" {
			_ = msg.Ack()
		}
	})
}
