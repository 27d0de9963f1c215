package service

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/cleberrangel/estimate-histogram-api/internal/logger"
	"github.com/cleberrangel/estimate-histogram-api/internal/metrics"
	"github.com/cleberrangel/estimate-histogram-api/internal/model"
	"github.com/cleberrangel/estimate-histogram-api/internal/repository"
	"github.com/cleberrangel/estimate-histogram-api/internal/websocket"
)

// SamplingDefaults são os parâmetros usados quando a requisição omite
// ou traz valores fora de faixa
type SamplingDefaults struct {
	Count   int
	Min     float64
	Max     float64
	Buckets int
}

// SamplingService executa rodadas de amostragem e mantém o conjunto
// atual. Cada rodada substitui o conjunto inteiro; não há supersessão
// nem debounce de requisições concorrentes.
type SamplingService struct {
	sampler  *SamplerService
	holder   *repository.SampleHolder
	hist     *HistogramService
	hub      *websocket.Hub
	defaults SamplingDefaults
}

// NewSamplingService cria o serviço de amostragem
func NewSamplingService(sampler *SamplerService, holder *repository.SampleHolder, hist *HistogramService, hub *websocket.Hub, defaults SamplingDefaults) *SamplingService {
	return &SamplingService{
		sampler:  sampler,
		holder:   holder,
		hist:     hist,
		hub:      hub,
		defaults: defaults,
	}
}

// Resample executa uma rodada de amostragem e substitui o conjunto
// atual. Parâmetros omitidos ou inválidos caem nos defaults; a rodada
// nunca falha.
func (s *SamplingService) Resample(ctx context.Context, req model.SampleRequest) model.SampleSet {
	count := req.Count
	if count <= 0 {
		count = s.defaults.Count
	}

	min, max := s.defaults.Min, s.defaults.Max
	if req.Min != nil && req.Max != nil && *req.Max > *req.Min {
		min, max = *req.Min, *req.Max
	}

	var seed uint64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		seed = rand.Uint64()
	}

	start := time.Now()
	result := s.sampler.Sample(ctx, count, min, max, seed)
	elapsed := time.Since(start)

	set := s.holder.Replace(result.Values, min, max, s.sampler.Mode(), seed)
	s.hist.Invalidate()

	metrics.Get().IncrementSampleRun(set.Count, elapsed.Milliseconds())
	logger.Get(ctx).Info().
		Int("requested", count).
		Int("emitted", set.Count).
		Float64("min", min).
		Float64("max", max).
		Uint64("seed", seed).
		Int64("version", set.Version).
		Dur("elapsed", elapsed).
		Msg("Conjunto de amostras substituído")

	if s.hub != nil {
		s.hub.BroadcastEvent(websocket.EventSamplesUpdated, map[string]interface{}{
			"version": set.Version,
			"count":   set.Count,
			"min":     set.Min,
			"max":     set.Max,
		})
	}

	return set
}

// Current devolve o conjunto de amostras atual
func (s *SamplingService) Current() model.SampleSet {
	return s.holder.Current()
}

// Histogram calcula o histograma do conjunto atual. Faixa e número de
// baldes omitidos caem nos defaults; quando a faixa não é informada,
// usa a faixa da própria rodada de amostragem.
func (s *SamplingService) Histogram(lo, hi *float64, buckets int) model.Histogram {
	set := s.holder.Current()

	rangeLo, rangeHi := set.Min, set.Max
	if lo != nil && hi != nil && *hi > *lo {
		rangeLo, rangeHi = *lo, *hi
	}

	if buckets <= 0 {
		buckets = s.defaults.Buckets
	}

	return s.hist.Build(set, rangeLo, rangeHi, buckets)
}
