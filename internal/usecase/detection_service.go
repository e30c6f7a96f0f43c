package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/originlens/backend/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// fingerprintSeparator joins title and description into one cache key.
// A control character cannot appear in cleaned input, so "a"+"bc" and
// "ab"+"c" never collide.
const fingerprintSeparator = "\x1f"

// DetectionConfig holds configuration for the detection service.
type DetectionConfig struct {
	// MinConfidence gates cache admission. Results at or below the
	// threshold are never cached so that repeated low-quality inputs keep
	// retrying the model instead of being stuck with a bad cached answer.
	MinConfidence float64

	// MaxConcurrency bounds in-flight model calls per batch. 0 disables
	// the bound.
	MaxConcurrency int

	// CallTimeout is the per-model-call deadline. 0 disables it.
	CallTimeout time.Duration
}

// DetectionService orchestrates detection: cache lookup, deduplicated
// concurrent model dispatch, attribute validation, and confidence-gated
// cache admission. It is the sole mutator of the result cache.
type DetectionService struct {
	detector domain.Detector
	cache    domain.ResultCache
	hsIndex  domain.HSCodeIndex
	cfg      DetectionConfig
	logger   zerolog.Logger
}

// NewDetectionService creates a detection service with dependencies.
func NewDetectionService(
	detector domain.Detector,
	cache domain.ResultCache,
	hsIndex domain.HSCodeIndex,
	cfg DetectionConfig,
	logger zerolog.Logger,
) *DetectionService {
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = 0.5
	}
	return &DetectionService{
		detector: detector,
		cache:    cache,
		hsIndex:  hsIndex,
		cfg:      cfg,
		logger:   logger.With().Str("component", "detection").Logger(),
	}
}

// Fingerprint derives the cache key for a single-text request.
func Fingerprint(text string) string {
	return strings.TrimSpace(text)
}

// ProductFingerprint derives the cache key for a title+description request.
func ProductFingerprint(title, description string) string {
	return strings.TrimSpace(title) + fingerprintSeparator + strings.TrimSpace(description)
}

// DetectText runs the single-item flow for one description.
func (s *DetectionService) DetectText(ctx context.Context, text, model string) (*domain.DetectionResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrInvalidRequest
	}

	start := time.Now()
	fp := Fingerprint(text)

	if attrs, ok := s.cache.Get(fp); ok {
		s.logger.Debug().Str("fingerprint", truncateKey(fp)).Msg("cache hit")
		return s.resultFor(attrs, true, 0, model), nil
	}

	attrs, err := s.callDetector(ctx, func(cctx context.Context) (*domain.Attributes, error) {
		return s.detector.Detect(cctx, text, model)
	})
	if err != nil {
		return nil, err
	}

	s.finalize(fp, attrs)
	return s.resultFor(attrs, false, time.Since(start).Milliseconds(), model), nil
}

// DetectProduct runs the single-item flow for a title+description pair.
func (s *DetectionService) DetectProduct(ctx context.Context, title, description, model string) (*domain.DetectionResult, error) {
	if strings.TrimSpace(description) == "" {
		return nil, domain.ErrInvalidRequest
	}

	start := time.Now()
	fp := ProductFingerprint(title, description)

	if attrs, ok := s.cache.Get(fp); ok {
		return s.resultFor(attrs, true, 0, model), nil
	}

	attrs, err := s.callDetector(ctx, func(cctx context.Context) (*domain.Attributes, error) {
		return s.detector.DetectProduct(cctx, title, description, model)
	})
	if err != nil {
		return nil, err
	}

	s.finalize(fp, attrs)
	return s.resultFor(attrs, false, time.Since(start).Milliseconds(), model), nil
}

// BatchDetectTexts runs the batch flow over descriptions. Output order
// matches input order; per-item errors are captured in their slots.
func (s *DetectionService) BatchDetectTexts(ctx context.Context, descriptions []string, model string) (*domain.BatchResult, error) {
	inputs := make([]batchInput, len(descriptions))
	for i, desc := range descriptions {
		inputs[i] = batchInput{
			fingerprint: Fingerprint(desc),
			call: func(cctx context.Context) (*domain.Attributes, error) {
				return s.detector.Detect(cctx, desc, model)
			},
			valid: strings.TrimSpace(desc) != "",
		}
	}
	return s.runBatch(ctx, inputs)
}

// BatchDetectProducts runs the batch flow over title+description pairs.
func (s *DetectionService) BatchDetectProducts(ctx context.Context, items []domain.ProductInput, model string) (*domain.BatchResult, error) {
	inputs := make([]batchInput, len(items))
	for i, item := range items {
		item := item
		inputs[i] = batchInput{
			fingerprint: ProductFingerprint(item.Title, item.Description),
			call: func(cctx context.Context) (*domain.Attributes, error) {
				return s.detector.DetectProduct(cctx, item.Title, item.Description, model)
			},
			valid: strings.TrimSpace(item.Description) != "",
		}
	}
	return s.runBatch(ctx, inputs)
}

// batchInput is one slot of a batch before dispatch.
type batchInput struct {
	fingerprint string
	call        func(ctx context.Context) (*domain.Attributes, error)
	valid       bool
}

// pendingCall is one deduplicated model call shared by every batch index
// with the same fingerprint.
type pendingCall struct {
	input   batchInput
	indices []int
	attrs   *domain.Attributes
	err     error
}

// runBatch partitions inputs into cache hits and misses, coalesces
// identical fingerprints to one in-flight call, fans the misses out
// concurrently under the configured bound, and reassembles results by
// original index.
func (s *DetectionService) runBatch(ctx context.Context, inputs []batchInput) (*domain.BatchResult, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	start := time.Now()
	items := make([]domain.BatchItem, len(inputs))
	cacheHits := 0

	var order []*pendingCall
	byFingerprint := make(map[string]*pendingCall)

	for i, in := range inputs {
		if !in.valid {
			items[i] = domain.BatchItem{Err: domain.ErrInvalidRequest}
			continue
		}

		if attrs, ok := s.cache.Get(in.fingerprint); ok {
			items[i] = domain.BatchItem{Attributes: attrs, Cache: true}
			cacheHits++
			continue
		}

		if p, ok := byFingerprint[in.fingerprint]; ok {
			p.indices = append(p.indices, i)
			continue
		}
		p := &pendingCall{input: in, indices: []int{i}}
		byFingerprint[in.fingerprint] = p
		order = append(order, p)
	}

	if len(order) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		if s.cfg.MaxConcurrency > 0 {
			g.SetLimit(s.cfg.MaxConcurrency)
		}

		for _, p := range order {
			p := p
			g.Go(func() error {
				attrs, err := s.callDetector(gctx, p.input.call)
				if err != nil {
					p.err = err
					return nil // per-item error, siblings continue
				}
				s.finalize(p.input.fingerprint, attrs)
				p.attrs = attrs
				return nil
			})
		}
		// Workers never return errors; Wait only synchronizes.
		_ = g.Wait()

		for _, p := range order {
			for _, idx := range p.indices {
				if p.err != nil {
					items[idx] = domain.BatchItem{Err: p.err}
					continue
				}
				items[idx] = domain.BatchItem{Attributes: p.attrs.Clone(), Cache: false}
			}
		}
	}

	result := &domain.BatchResult{
		Items:     items,
		Total:     len(items),
		CacheHits: cacheHits,
		AICalls:   len(order),
		TimeMS:    time.Since(start).Milliseconds(),
	}

	s.logger.Info().
		Int("total", result.Total).
		Int("cache_hits", result.CacheHits).
		Int("ai_calls", result.AICalls).
		Int64("time_ms", result.TimeMS).
		Msg("batch completed")

	return result, nil
}

// callDetector applies the per-call deadline around one model call.
func (s *DetectionService) callDetector(ctx context.Context, call func(ctx context.Context) (*domain.Attributes, error)) (*domain.Attributes, error) {
	if s.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
	}
	return call(ctx)
}

// finalize validates a fresh detection in place and applies the cache
// admission policy. The read-validate-write sequence is not guarded per
// fingerprint: two concurrent misses for the same key may both write, the
// last overwriting (idempotent, costs one extra model call).
func (s *DetectionService) finalize(fingerprint string, attrs *domain.Attributes) {
	attrs.FillDefaults()
	attrs.Country.Value = ValidateCountries(attrs.Country.Value)
	attrs.HSCode.Value = NormalizeHSCode(attrs.HSCode.Value)

	if s.admit(attrs) {
		s.cache.Add(fingerprint, attrs)
		s.logger.Debug().
			Strs("countries", attrs.Country.Value).
			Float64("confidence", attrs.Country.Confidence).
			Str("fingerprint", truncateKey(fingerprint)).
			Msg("cached detection")
	} else {
		s.logger.Debug().
			Str("fingerprint", truncateKey(fingerprint)).
			Msg("detection below admission threshold, not cached")
	}
}

// admit decides whether a validated result is confident enough to cache:
// either a trusted non-sentinel country or a trusted HS code.
func (s *DetectionService) admit(attrs *domain.Attributes) bool {
	if attrs.Country.Confidence > s.cfg.MinConfidence && attrs.HasCountry() {
		return true
	}
	if attrs.HSCode.Confidence > s.cfg.MinConfidence && attrs.HSCode.Value != "" {
		return true
	}
	return false
}

// resultFor assembles a DetectionResult, cross-referencing the detected HS
// code against the lookup table when one is present.
func (s *DetectionService) resultFor(attrs *domain.Attributes, fromCache bool, elapsedMS int64, model string) *domain.DetectionResult {
	result := &domain.DetectionResult{
		Attributes: attrs,
		Cache:      fromCache,
		TimeMS:     elapsedMS,
		Model:      model,
	}
	if s.hsIndex != nil && attrs.HSCode.Value != "" {
		keywords := attrs.Material.Value
		if keywords == domain.NoneValue {
			keywords = ""
		}
		result.HSValidation = s.hsIndex.GetValidated(attrs.HSCode.Value, keywords)
	}
	return result
}

// ClearCache empties the result cache and returns the removed entry count.
func (s *DetectionService) ClearCache() int {
	return s.cache.Clear()
}

// CacheSize returns the current number of cached fingerprints.
func (s *DetectionService) CacheSize() int {
	return s.cache.Len()
}

// SearchHSCodes exposes the lookup table's keyword search.
func (s *DetectionService) SearchHSCodes(keyword string, limit int) []domain.HSCodeItem {
	if s.hsIndex == nil {
		return nil
	}
	return s.hsIndex.Search(keyword, limit)
}

// ValidateHSCode exposes the lookup table's best-effort code validation.
func (s *DetectionService) ValidateHSCode(code, keywords string) *domain.HSValidation {
	if s.hsIndex == nil {
		return &domain.HSValidation{Original: code, Validated: code, Suggestions: []domain.HSCodeItem{}}
	}
	return s.hsIndex.GetValidated(code, keywords)
}

// truncateKey shortens fingerprints for log lines.
func truncateKey(key string) string {
	const max = 50
	runes := []rune(key)
	if len(runes) <= max {
		return key
	}
	return string(runes[:max]) + "..."
}
