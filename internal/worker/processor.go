package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hotelsight/backend/internal/analytics"
	"github.com/hotelsight/backend/internal/hotels"
	"github.com/hotelsight/backend/internal/models"
	"github.com/hotelsight/backend/pkg/queue"
)

// MetricSource provides the metric series the analysis runs over.
type MetricSource interface {
	ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.HotelMetric, error)
}

// HotelSource resolves hotel records for naming insights.
type HotelSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error)
	HasAccess(ctx context.Context, hotelID, userID uuid.UUID) (bool, error)
}

// SelectionSource resolves a user's current active hotel selection.
type SelectionSource interface {
	Get(ctx context.Context, userID uuid.UUID) (*hotels.Selection, error)
}

// Results stores analysis outcomes.
type Results interface {
	Put(ctx context.Context, r *analytics.Result) error
	Get(ctx context.Context, requestID uuid.UUID) (*analytics.Result, error)
}

// Broadcaster notifies connected dashboards that a result is ready.
type Broadcaster interface {
	BroadcastToHotelAndPublish(hotelID uuid.UUID, event string, payload interface{})
}

// AnalysisProcessor runs queued analysis jobs. Before storing a result it
// re-checks the user's selection: if the hotel or version changed while the
// job was in flight, the result is stored stale and never shown.
type AnalysisProcessor struct {
	metrics    MetricSource
	hotelsRepo HotelSource
	selections SelectionSource
	results    Results
	hub        Broadcaster
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewAnalysisProcessor creates a processor. hub may be nil.
func NewAnalysisProcessor(metrics MetricSource, hotelsRepo HotelSource, selections SelectionSource, results Results, hub Broadcaster, q *queue.Queue, logger *zap.Logger) *AnalysisProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisProcessor{
		metrics:    metrics,
		hotelsRepo: hotelsRepo,
		selections: selections,
		results:    results,
		hub:        hub,
		queue:      q,
		logger:     logger,
	}
}

// Process executes one analysis job.
func (p *AnalysisProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeAnalysis {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.AnalysisPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal analysis payload: %w", err)
	}

	result, err := p.results.Get(ctx, payload.RequestID)
	if err != nil {
		return fmt.Errorf("load pending result: %w", err)
	}
	if result == nil {
		// Result expired before the job ran; nothing to deliver.
		p.logger.Warn("analysis result expired before processing",
			zap.String("request_id", payload.RequestID.String()))
		return nil
	}

	hotel, err := p.hotelsRepo.GetByID(ctx, payload.HotelID)
	if err != nil {
		return fmt.Errorf("load hotel: %w", err)
	}
	if hotel == nil {
		return p.finish(ctx, result, analytics.StatusFailed, "", "hotel no longer exists")
	}

	// Membership can be revoked between enqueue and processing. Never deliver
	// insights for a hotel the requester can no longer see.
	hasAccess, err := p.hotelsRepo.HasAccess(ctx, payload.HotelID, payload.UserID)
	if err != nil {
		return fmt.Errorf("check hotel access: %w", err)
	}
	if !hasAccess {
		p.logger.Info("discarding analysis after access revocation",
			zap.String("request_id", payload.RequestID.String()),
			zap.String("user_id", payload.UserID.String()))
		return p.finish(ctx, result, analytics.StatusStale, "", "")
	}

	metrics, err := p.metrics.ListByHotel(ctx, payload.HotelID)
	if err != nil {
		return fmt.Errorf("load metrics: %w", err)
	}
	insights := analytics.GenerateInsights(hotel.Name, metrics)

	sel, err := p.selections.Get(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("load selection: %w", err)
	}
	if sel == nil || sel.HotelID != payload.HotelID || sel.Version != payload.SelectionVersion {
		p.logger.Info("discarding stale analysis result",
			zap.String("request_id", payload.RequestID.String()),
			zap.Int64("job_version", payload.SelectionVersion))
		return p.finish(ctx, result, analytics.StatusStale, "", "")
	}

	if err := p.finish(ctx, result, analytics.StatusReady, insights, ""); err != nil {
		return err
	}

	if p.hub != nil {
		p.hub.BroadcastToHotelAndPublish(payload.HotelID, "analysis_ready", map[string]interface{}{
			"request_id": payload.RequestID,
			"hotel_id":   payload.HotelID,
		})
	}
	return nil
}

func (p *AnalysisProcessor) finish(ctx context.Context, r *analytics.Result, status, insights, errMsg string) error {
	now := time.Now().UTC()
	r.Status = status
	r.Insights = insights
	r.Error = errMsg
	r.CompletedAt = &now
	if err := p.results.Put(ctx, r); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *AnalysisProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("analysis worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
