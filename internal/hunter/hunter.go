// Package hunter runs hunts: one provider search for a term and location,
// classification of every result, and persistence of the accepted phones.
package hunter

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "lead-hunter/internal/common/errors"
	"lead-hunter/internal/common/logger"
	"lead-hunter/internal/common/metrics"
	"lead-hunter/internal/hunter/keypool"
	"lead-hunter/internal/hunter/ratelimit"
	"lead-hunter/internal/hunter/serper"
	"lead-hunter/internal/models"
)

// Searcher fetches one page of organic results.
type Searcher interface {
	Fetch(ctx context.Context, query models.SearchQuery, key string) ([]models.RawResultItem, error)
}

// Analyzer classifies result text.
type Analyzer interface {
	Analyze(text string) models.ContentAnalysis
}

// LeadStore persists leads. An already-recorded lead is reported with an
// error carrying apperrors.ErrCodeDuplicateLead.
type LeadStore interface {
	Insert(ctx context.Context, lead *models.Lead) error
}

// Deduper remembers phones across hunts for the same term. Claim returns
// false when the phone was claimed before.
type Deduper interface {
	Claim(ctx context.Context, term, phone string) (bool, error)
	Release(ctx context.Context, term, phone string) error
}

// Recorder receives one call per finished hunt.
type Recorder interface {
	RecordHunt(ctx context.Context, status string, duration time.Duration, leads int)
}

type Config struct {
	PhonesPerItem int
	SummaryLimit  int
	NotesLimit    int
}

func DefaultConfig() *Config {
	return &Config{
		PhonesPerItem: 2,
		SummaryLimit:  10,
		NotesLimit:    200,
	}
}

func (c *Config) Validate() error {
	if c.PhonesPerItem <= 0 {
		return fmt.Errorf("phones per item must be positive")
	}
	if c.SummaryLimit <= 0 {
		return fmt.Errorf("summary limit must be positive")
	}
	if c.NotesLimit <= 0 {
		return fmt.Errorf("notes limit must be positive")
	}
	return nil
}

// Dependencies are shared by reference. Keys and Limiter in particular must
// be the same instances for every orchestrator in the process.
type Dependencies struct {
	Keys       *keypool.Pool
	Limiter    *ratelimit.Limiter
	Searcher   Searcher
	Classifier Analyzer
	Store      LeadStore
	Deduper    Deduper
	Recorder   Recorder
	Logger     logger.Logger
	Clock      func() time.Time
}

type Orchestrator struct {
	config *Config
	deps   Dependencies
	log    logger.Logger
	tracer trace.Tracer
	now    func() time.Time
}

func New(config *Config, deps Dependencies) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hunter config: %w", err)
	}
	switch {
	case deps.Keys == nil:
		return nil, fmt.Errorf("key pool is required")
	case deps.Limiter == nil:
		return nil, fmt.Errorf("rate limiter is required")
	case deps.Searcher == nil:
		return nil, fmt.Errorf("searcher is required")
	case deps.Classifier == nil:
		return nil, fmt.Errorf("classifier is required")
	case deps.Store == nil:
		return nil, fmt.Errorf("lead store is required")
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		config: config,
		deps:   deps,
		log:    log.Named("hunter"),
		tracer: otel.Tracer("lead-hunter/hunter"),
		now:    now,
	}, nil
}

// KeysConfigured is the size of the key pool.
func (o *Orchestrator) KeysConfigured() int {
	return o.deps.Keys.Len()
}

// Search runs a hunt under a fresh id.
func (o *Orchestrator) Search(ctx context.Context, term, location, requesterID string) *models.HuntSummary {
	return o.Run(ctx, uuid.New().String(), models.NewSearchQuery(term, location, requesterID))
}

// Run executes one hunt. It never returns an error: every anticipated
// failure is reported in the summary.
func (o *Orchestrator) Run(ctx context.Context, huntID string, query models.SearchQuery) *models.HuntSummary {
	ctx, span := o.tracer.Start(ctx, "hunter.search", trace.WithAttributes(
		attribute.String("hunt.id", huntID),
		attribute.String("hunt.term", query.Term),
		attribute.String("hunt.location", query.Location),
	))
	defer span.End()

	metrics.HuntsInFlight.Inc()
	defer metrics.HuntsInFlight.Dec()

	summary := &models.HuntSummary{
		HuntID:      huntID,
		Query:       query.Term,
		City:        query.Location,
		RequestedBy: query.RequestedBy,
		Leads:       []string{},
		TruncatedTo: o.config.SummaryLimit,
		StartedAt:   o.now().UTC(),
	}
	log := o.log.WithFields(map[string]interface{}{
		"huntId":   huntID,
		"term":     query.Term,
		"location": query.Location,
	})
	log.Info("hunt started", map[string]interface{}{"requestedBy": query.RequestedBy})

	if stdErr := o.hunt(ctx, query, summary, log); stdErr != nil {
		summary.Success = false
		summary.ErrorCode = string(stdErr.Code)
		summary.Error = stdErr.Message
		span.RecordError(stdErr)
		span.SetStatus(codes.Error, string(stdErr.Code))
	} else {
		summary.Success = true
	}
	summary.FinishedAt = o.now().UTC()

	o.finish(ctx, summary, log)
	span.SetAttributes(
		attribute.Int("hunt.total_results", summary.TotalResults),
		attribute.Int("hunt.found_leads", summary.FoundLeads),
		attribute.Int("hunt.dropped_leads", summary.DroppedLeads),
	)
	return summary
}

func (o *Orchestrator) hunt(ctx context.Context, query models.SearchQuery, summary *models.HuntSummary, log logger.Logger) *apperrors.StandardError {
	key, ok := o.deps.Keys.Next()
	if !ok {
		return apperrors.NewHuntUnavailableError()
	}

	waitStart := time.Now()
	if err := o.deps.Limiter.Wait(ctx); err != nil {
		return apperrors.NewHuntCancelledError(err)
	}
	metrics.RateLimitWait.Observe(time.Since(waitStart).Seconds())

	items, err := o.deps.Searcher.Fetch(ctx, query, key)
	if err != nil {
		stdErr := fetchError(err)
		metrics.ProviderRequests.WithLabelValues(string(stdErr.Code)).Inc()
		log.Warn("search request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
		return stdErr
	}
	metrics.ProviderRequests.WithLabelValues("ok").Inc()

	summary.TotalResults = len(items)
	metrics.ResultsSeen.Add(float64(len(items)))

	var created []string
	seen := make(map[string]struct{})
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			o.publish(summary, created)
			return apperrors.NewHuntCancelledError(err)
		}

		content := item.Content()
		analysis := o.deps.Classifier.Analyze(content)
		metrics.Verdicts.WithLabelValues(string(analysis.Verdict)).Inc()
		if !analysis.Accepted() {
			continue
		}

		phones := analysis.Phones
		if len(phones) > o.config.PhonesPerItem {
			phones = phones[:o.config.PhonesPerItem]
		}
		for _, phone := range phones {
			if _, dup := seen[phone]; dup {
				summary.Duplicates++
				metrics.LeadsDuplicate.Inc()
				continue
			}
			seen[phone] = struct{}{}

			lead := o.buildLead(query, phone, item, content)
			if o.persist(ctx, query, lead, summary, log) {
				created = append(created, phone)
			}
		}
	}

	o.publish(summary, created)
	return nil
}

// persist stores one lead and reports whether it was newly created.
func (o *Orchestrator) persist(ctx context.Context, query models.SearchQuery, lead *models.Lead, summary *models.HuntSummary, log logger.Logger) bool {
	if o.deps.Deduper != nil {
		claimed, err := o.deps.Deduper.Claim(ctx, query.Term, lead.Phone)
		switch {
		case err != nil:
			log.Warn("dedup claim failed, inserting anyway", map[string]interface{}{
				"phone": lead.Phone,
				"error": err.Error(),
			})
		case !claimed:
			summary.Duplicates++
			metrics.LeadsDuplicate.Inc()
			return false
		}
	}

	err := o.deps.Store.Insert(ctx, lead)
	if err == nil {
		metrics.LeadsCreated.Inc()
		return true
	}

	if apperrors.CodeOf(err) == apperrors.ErrCodeDuplicateLead {
		summary.Duplicates++
		metrics.LeadsDuplicate.Inc()
		return false
	}

	if o.deps.Deduper != nil {
		if rErr := o.deps.Deduper.Release(ctx, query.Term, lead.Phone); rErr != nil {
			log.Warn("dedup release failed", map[string]interface{}{
				"phone": lead.Phone,
				"error": rErr.Error(),
			})
		}
	}

	stdErr := apperrors.NewLeadPersistenceFailedError(lead.Phone, err)
	summary.DroppedLeads++
	summary.Failures = append(summary.Failures, models.LeadFailure{Phone: lead.Phone, Reason: err.Error()})
	metrics.LeadsDropped.Inc()
	log.Warn("lead dropped", map[string]interface{}{
		"phone":     lead.Phone,
		"errorCode": string(stdErr.Code),
		"error":     err.Error(),
	})
	return false
}

func (o *Orchestrator) buildLead(query models.SearchQuery, phone string, item models.RawResultItem, content string) *models.Lead {
	return &models.Lead{
		ID:           uuid.New().String(),
		Phone:        phone,
		Source:       query.LeadSource(),
		SourceDomain: models.SourceDomain(item.Link),
		Notes:        truncateRunes(fmt.Sprintf("source: %s\n%s", item.Link, content), o.config.NotesLimit),
		Status:       models.LeadStatusNew,
		CreatedBy:    query.RequestedBy,
		CreatedAt:    o.now().UTC(),
	}
}

func (o *Orchestrator) publish(summary *models.HuntSummary, created []string) {
	summary.FoundLeads = len(created)
	visible := created
	if len(visible) > o.config.SummaryLimit {
		visible = visible[:o.config.SummaryLimit]
	}
	summary.Leads = append([]string{}, visible...)
}

func (o *Orchestrator) finish(ctx context.Context, summary *models.HuntSummary, log logger.Logger) {
	outcome := "ok"
	if !summary.Success {
		outcome = summary.ErrorCode
	}
	metrics.HuntsTotal.WithLabelValues(outcome).Inc()
	metrics.HuntDuration.Observe(summary.Duration().Seconds())
	if o.deps.Recorder != nil {
		o.deps.Recorder.RecordHunt(ctx, outcome, summary.Duration(), summary.FoundLeads)
	}

	fields := map[string]interface{}{
		"success":      summary.Success,
		"totalResults": summary.TotalResults,
		"foundLeads":   summary.FoundLeads,
		"duplicates":   summary.Duplicates,
		"droppedLeads": summary.DroppedLeads,
		"durationMs":   summary.Duration().Milliseconds(),
	}
	if summary.Success {
		log.Info("hunt completed", fields)
		return
	}
	fields["errorCode"] = summary.ErrorCode
	log.Warn("hunt failed", fields)
}

// fetchError maps a Searcher error onto the hunt taxonomy.
func fetchError(err error) *apperrors.StandardError {
	var (
		providerErr  *serper.ProviderError
		transportErr *serper.TransportError
	)
	switch {
	case errors.Is(err, serper.ErrQuotaExceeded):
		return apperrors.NewHuntQuotaExceededError()
	case errors.As(err, &providerErr):
		return apperrors.NewHuntProviderError(providerErr.StatusCode)
	case errors.Is(err, serper.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewHuntTimeoutError(err)
	case errors.As(err, &transportErr):
		return apperrors.NewHuntTransportFailureError(transportErr.Err)
	default:
		return apperrors.NewHuntTransportFailureError(err)
	}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
