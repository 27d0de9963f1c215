package repository

import (
	"sync"
	"time"

	"github.com/cleberrangel/estimate-histogram-api/internal/model"
)

// SampleHolder guarda o conjunto de amostras atual. Cada rodada de
// amostragem substitui o conjunto inteiro de forma atômica; nunca há
// acréscimo incremental.
type SampleHolder struct {
	mu      sync.RWMutex
	current model.SampleSet
	version int64
}

// NewSampleHolder cria um holder vazio
func NewSampleHolder() *SampleHolder {
	return &SampleHolder{}
}

// Replace substitui o conjunto atual e devolve o novo conjunto com a
// versão incrementada
func (h *SampleHolder) Replace(values []float64, min, max float64, mode string, seed uint64) model.SampleSet {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.version++
	h.current = model.SampleSet{
		Values:      values,
		Count:       len(values),
		Min:         min,
		Max:         max,
		Mode:        mode,
		Seed:        seed,
		Version:     h.version,
		GeneratedAt: time.Now().UTC(),
	}
	return h.snapshotLocked()
}

// Current devolve uma cópia do conjunto atual
func (h *SampleHolder) Current() model.SampleSet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshotLocked()
}

// Version devolve a versão do conjunto atual (0 = nenhum)
func (h *SampleHolder) Version() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

func (h *SampleHolder) snapshotLocked() model.SampleSet {
	snapshot := h.current
	snapshot.Values = make([]float64, len(h.current.Values))
	copy(snapshot.Values, h.current.Values)
	return snapshot
}
