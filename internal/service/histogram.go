package service

import (
	"fmt"
	"math"
	"time"

	"github.com/cleberrangel/estimate-histogram-api/internal/cache"
	"github.com/cleberrangel/estimate-histogram-api/internal/metrics"
	"github.com/cleberrangel/estimate-histogram-api/internal/model"
)

const histogramCachePrefix = "hist:"

// HistogramService calcula os baldes do histograma sobre um conjunto de
// amostras. Resultados são cacheados por parâmetro e invalidados quando
// um novo conjunto substitui o atual.
type HistogramService struct {
	cache *cache.Cache
}

// NewHistogramService cria o serviço com um cache de 5 minutos
func NewHistogramService() *HistogramService {
	return &HistogramService{
		cache: cache.NewCache(5 * time.Minute),
	}
}

// Build devolve o histograma do conjunto com a faixa de exibição e o
// número de baldes informados. Entradas degeneradas (conjunto vazio,
// baldes <= 0, faixa vazia) devolvem um histograma sem baldes.
func (s *HistogramService) Build(set model.SampleSet, lo, hi float64, buckets int) model.Histogram {
	if len(set.Values) == 0 || buckets <= 0 || hi <= lo {
		return model.Histogram{
			Buckets:     []model.HistogramBucket{},
			BucketCount: buckets,
			RangeMin:    lo,
			RangeMax:    hi,
			Version:     set.Version,
		}
	}

	key := fmt.Sprintf("%sv%d:%d:%g:%g", histogramCachePrefix, set.Version, buckets, lo, hi)
	if cached, ok := s.cache.Get(key); ok {
		metrics.Get().IncrementHistogramBuilt(true)
		return cached.(model.Histogram)
	}

	hist := buildHistogram(set, lo, hi, buckets)
	s.cache.Set(key, hist)
	metrics.Get().IncrementHistogramBuilt(false)

	return hist
}

// Invalidate descarta todos os histogramas cacheados; chamado quando o
// conjunto de amostras é substituído
func (s *HistogramService) Invalidate() {
	s.cache.InvalidatePrefix(histogramCachePrefix)
}

// Stop encerra o cache
func (s *HistogramService) Stop() {
	s.cache.Stop()
}

// buildHistogram conta as amostras por balde em uma única passada.
// Valores fora da faixa de exibição são descartados; o limite superior
// exato cai no último balde.
func buildHistogram(set model.SampleSet, lo, hi float64, buckets int) model.Histogram {
	width := (hi - lo) / float64(buckets)

	result := model.Histogram{
		Buckets:     make([]model.HistogramBucket, buckets),
		BucketCount: buckets,
		RangeMin:    lo,
		RangeMax:    hi,
		Version:     set.Version,
	}

	for i := 0; i < buckets; i++ {
		result.Buckets[i] = model.HistogramBucket{
			From: lo + float64(i)*width,
			To:   lo + float64(i+1)*width,
		}
	}

	for _, v := range set.Values {
		if v < lo || v > hi {
			continue
		}
		idx := int(math.Floor((v - lo) / width))
		if idx >= buckets {
			idx = buckets - 1
		}
		result.Buckets[idx].Count++
		result.Total++
	}

	return result
}
