package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/basedrum/basedrum-api/internal/logger"
	"github.com/basedrum/basedrum-api/internal/metrics"
	"github.com/basedrum/basedrum-api/internal/music"
	"github.com/basedrum/basedrum-api/internal/observability"
	"github.com/basedrum/basedrum-api/internal/song"
	"github.com/getsentry/sentry-go"
)

const (
	// DefaultModel is used when the request does not name one.
	DefaultModel = "gpt-5-mini"

	expandedBars = 32
)

var sentryMetrics = metrics.NewSentryMetrics()

// Producer is the expansion agent. It hands a seed loop to a remote
// model and gets back a full 32-bar arrangement. Expansion is strictly
// best-effort: any failure, from a network error to an invalid
// document, falls back to the seed so playback is never blocked.
type Producer struct {
	factory  ProviderSource
	prompts  *PromptBuilder
	metrics  *metrics.Client
	langfuse *observability.LangfuseClient
}

// ProviderSource resolves a model/provider pair to a Provider.
// *ProviderFactory is the production implementation.
type ProviderSource interface {
	GetProvider(ctx context.Context, model, providerName string) (Provider, error)
}

// ExpandRequest carries the seed document and generation options.
type ExpandRequest struct {
	Document    *song.Document
	Constraints *music.Constraints
	Model       string
	Provider    string
}

// ExpandResult reports what came back. Document is always playable:
// the expansion when it validated, the seed otherwise.
type ExpandResult struct {
	Document       *song.Document
	Expanded       bool
	FallbackReason string
	Model          string
	TotalTokens    int
	Cost           float64
	Duration       time.Duration
}

// New creates a Producer. The metrics and langfuse clients may be nil
// or disabled; the producer degrades to plain logging.
func New(factory ProviderSource, m *metrics.Client, lf *observability.LangfuseClient) *Producer {
	return &Producer{
		factory:  factory,
		prompts:  NewPromptBuilder(),
		metrics:  m,
		langfuse: lf,
	}
}

// Expand runs the expansion pass. It returns an error only when the
// request itself is unusable; provider and validation failures are
// reported through FallbackReason instead.
func (p *Producer) Expand(ctx context.Context, req *ExpandRequest) (*ExpandResult, error) {
	if req == nil || req.Document == nil {
		return nil, fmt.Errorf("expand requires a seed document")
	}
	if err := song.Validate(req.Document); err != nil {
		return nil, fmt.Errorf("seed document invalid: %w", err)
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	startTime := time.Now()
	result := &ExpandResult{Document: req.Document, Model: model}

	trace := p.startTrace(ctx, req, model)
	defer trace.Finish()

	expanded, resp, reason := p.tryExpand(ctx, req, model, trace)
	result.Duration = time.Since(startTime)

	if resp != nil {
		result.TotalTokens = resp.TotalTokens
		result.Cost = observability.CalculateCost(model, resp.InputTokens, resp.OutputTokens)
	}

	if expanded == nil {
		result.FallbackReason = reason
		logger.Warn("Expansion fell back to seed document", logger.Fields{
			"model":  model,
			"reason": reason,
		})
		if p.metrics != nil {
			p.metrics.RecordExpansion(model, false, result.TotalTokens, result.Duration)
		}
		return result, nil
	}

	result.Document = expanded
	result.Expanded = true
	logger.Info("Expansion completed", logger.Fields{
		"model":  model,
		"bars":   expanded.Metadata.Bars,
		"tracks": len(expanded.Tracks),
		"tokens": result.TotalTokens,
		"cost":   observability.FormatCost(result.Cost),
	})
	if p.metrics != nil {
		p.metrics.RecordExpansion(model, true, result.TotalTokens, result.Duration)
	}
	return result, nil
}

// tryExpand does the actual provider round trip. A nil document return
// means fall back, with the reason in the last value.
func (p *Producer) tryExpand(
	ctx context.Context,
	req *ExpandRequest,
	model string,
	trace *observability.Trace,
) (*song.Document, *GenerationResponse, string) {
	provider, err := p.factory.GetProvider(ctx, model, req.Provider)
	if err != nil {
		return nil, nil, fmt.Sprintf("no provider: %v", err)
	}

	seedJSON, err := req.Document.Encode()
	if err != nil {
		return nil, nil, fmt.Sprintf("seed encode failed: %v", err)
	}

	genReq := &GenerationRequest{
		Model:        model,
		SystemPrompt: p.prompts.BuildSystemPrompt(req.Constraints),
		Input:        p.prompts.BuildInput(seedJSON),
		OutputSchema: SongDocumentSchema(),
	}

	gen := trace.Generation("expand", map[string]interface{}{
		"model":    model,
		"provider": provider.Name(),
	})
	gen.Input(genReq.Input)
	defer gen.Finish()

	resp, err := provider.Generate(ctx, genReq)
	if err != nil {
		sentry.CaptureException(err)
		return nil, nil, fmt.Sprintf("provider call failed: %v", err)
	}
	gen.Output(resp.RawOutput)
	gen.Usage(resp.InputTokens, resp.OutputTokens, resp.TotalTokens)
	sentryMetrics.RecordTokenUsage(ctx, model, resp.TotalTokens, resp.InputTokens, resp.OutputTokens)

	doc, err := song.Parse([]byte(resp.RawOutput))
	if err != nil {
		return nil, resp, fmt.Sprintf("model output rejected: %v", err)
	}
	if err := p.checkExpansion(req.Document, doc); err != nil {
		return nil, resp, fmt.Sprintf("model output rejected: %v", err)
	}
	return doc, resp, ""
}

// checkExpansion enforces what the schema cannot: the expansion must
// actually be 32 bars, keep the seed's grid settings, and keep every
// seed track.
func (p *Producer) checkExpansion(seed, expanded *song.Document) error {
	if expanded.Metadata.Bars != expandedBars {
		return fmt.Errorf("expected %d bars, got %d", expandedBars, expanded.Metadata.Bars)
	}
	if expanded.Metadata.BPM != seed.Metadata.BPM {
		return fmt.Errorf("bpm changed from %d to %d", seed.Metadata.BPM, expanded.Metadata.BPM)
	}
	if len(expanded.Arrangement) == 0 {
		return fmt.Errorf("expansion has no arrangement sections")
	}
	for name := range seed.Tracks {
		if _, ok := expanded.Tracks[name]; !ok {
			return fmt.Errorf("seed track %q missing from expansion", name)
		}
	}
	return nil
}

func (p *Producer) startTrace(ctx context.Context, req *ExpandRequest, model string) *observability.Trace {
	if p.langfuse == nil {
		return &observability.Trace{}
	}
	return p.langfuse.StartTrace(ctx, "producer.expand", map[string]interface{}{
		"model":      model,
		"seed_bars":  req.Document.Metadata.Bars,
		"seed_title": req.Document.Metadata.Title,
	})
}
