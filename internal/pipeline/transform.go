package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	"github.com/couchcryptid/roof-spec-etl/internal/observability"
)

// Analysis entry points, used as the source label on analyses_total.
const (
	SourceKafka = "kafka"
	SourceHTTP  = "http"
	SourceCLI   = "cli"
)

// ProjectTransformer implements Transformer by running the domain analysis
// stages, then optional geocoding enrichment.
type ProjectTransformer struct {
	matcher  *domain.Matcher
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates a ProjectTransformer. Pass a nil geocoder to disable
// geocoding enrichment and nil metrics to skip recording.
func NewTransformer(matcher *domain.Matcher, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *ProjectTransformer {
	return &ProjectTransformer{
		matcher:  matcher,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Transform decodes a source message and analyzes it.
func (t *ProjectTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.Analysis, error) {
	req, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.Analysis{}, err
	}
	return t.Analyze(ctx, SourceKafka, req)
}

// Analyze runs one project request through the analysis stages.
func (t *ProjectTransformer) Analyze(ctx context.Context, source string, req domain.ProjectRequest) (domain.Analysis, error) {
	a, err := domain.Analyze(req, t.matcher)
	if err != nil {
		return domain.Analysis{}, err
	}

	a.Geocode = domain.GeocodeLocation(ctx, a.Requirements.Location, t.geocoder, t.logger)

	t.logger.Debug("project analyzed",
		"analysis_id", a.ID,
		"request_id", a.RequestID,
		"source", source,
		"state", a.Requirements.Location.State,
		"required_tier", a.RequiredApproval.Tier,
		"matches", len(a.Matches),
		"rejections", len(a.Rejections),
	)
	t.record(source, a)

	return a, nil
}

func (t *ProjectTransformer) record(source string, a domain.Analysis) {
	if t.metrics == nil {
		return
	}
	t.metrics.AnalysesTotal.WithLabelValues(source).Inc()
	t.metrics.RequiredApproval.WithLabelValues(string(a.RequiredApproval.Tier)).Inc()
	if len(a.Matches) > 0 {
		t.metrics.MatchOutcomes.WithLabelValues("matched").Add(float64(len(a.Matches)))
	}
	for _, r := range a.Rejections {
		t.metrics.MatchOutcomes.WithLabelValues(string(r.Reason)).Inc()
	}
}
