package repository

import (
	"database/sql"
	"sort"
	"strconv"
	"sync"

	"github.com/cleberrangel/estimate-histogram-api/internal/logger"
	"github.com/cleberrangel/estimate-histogram-api/internal/model"
)

// EstimateRepository mantém a coleção de estimativas ordenada por ID
// crescente, com um contador monotônico de IDs. Opcionalmente faz
// write-through para PostgreSQL; a cópia em memória é sempre a fonte
// da verdade durante a execução.
type EstimateRepository struct {
	mu        sync.RWMutex
	estimates []model.Estimate // invariante: ordenado por ID, sem duplicatas
	counter   int
	db        *sql.DB
}

// NewEstimateRepository cria um repositório em memória
func NewEstimateRepository() *EstimateRepository {
	return &EstimateRepository{}
}

// NewEstimateRepositoryWithDB cria um repositório com persistência em
// PostgreSQL, carregando o estado atual do banco
func NewEstimateRepositoryWithDB(db *sql.DB) (*EstimateRepository, error) {
	r := &EstimateRepository{db: db}
	if err := r.loadFromDB(); err != nil {
		return nil, err
	}
	return r, nil
}

// Add cria uma nova estimativa com a faixa padrão e o próximo ID.
// Nunca falha.
func (r *EstimateRepository) Add() model.Estimate {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Registros fabricados por Update podem carregar IDs acima do
	// contador; o contador alcança o maior ID antes de avançar para
	// nunca gerar duplicata
	if n := len(r.estimates); n > 0 && r.estimates[n-1].ID > r.counter {
		r.counter = r.estimates[n-1].ID
	}

	r.counter++
	est := model.NewEstimate(r.counter)
	r.estimates = append(r.estimates, est)
	r.sortLocked()

	r.persistUpsert(est)
	r.persistCounter()

	return est
}

// Remove exclui a estimativa com o ID informado. IDs ausentes são
// ignorados silenciosamente.
func (r *EstimateRepository) Remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.estimates[:0]
	removed := false
	for _, est := range r.estimates {
		if est.ID == id {
			removed = true
			continue
		}
		kept = append(kept, est)
	}
	r.estimates = kept

	if removed {
		r.persistDelete(id)
	}
}

// Update edita um campo da estimativa com o ID informado e devolve o
// registro resultante. Quando o ID não existe, um registro zerado com
// esse ID é fabricado e inserido no lugar de sinalizar "não encontrado"
// (contrato herdado do protótipo de gráfico; ver DESIGN.md). Valores
// numéricos inválidos são coagidos para 0.0 sem erro.
func (r *EstimateRepository) Update(id int, field, value string) (model.Estimate, error) {
	if !model.IsValidField(field) {
		return model.Estimate{}, model.ErrInvalidField
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	est, idx := r.findLocked(id)
	switch field {
	case model.FieldDescription:
		est.Description = value
	case model.FieldMin:
		est.Min = parseFloatOrZero(value)
	case model.FieldMax:
		est.Max = parseFloatOrZero(value)
	}

	if idx >= 0 {
		r.estimates[idx] = est
	} else {
		r.estimates = append(r.estimates, est)
	}
	r.sortLocked()

	r.persistUpsert(est)

	return est, nil
}

// Get devolve a estimativa com o ID informado
func (r *EstimateRepository) Get(id int) (model.Estimate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	est, idx := r.findLocked(id)
	return est, idx >= 0
}

// List devolve uma cópia da coleção, ordenada por ID
func (r *EstimateRepository) List() []model.Estimate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Estimate, len(r.estimates))
	copy(out, r.estimates)
	return out
}

// Len devolve o número de estimativas
func (r *EstimateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.estimates)
}

// Counter devolve o último ID atribuído
func (r *EstimateRepository) Counter() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counter
}

// findLocked localiza uma estimativa por ID; quando ausente devolve um
// registro zerado com esse ID e índice -1
func (r *EstimateRepository) findLocked(id int) (model.Estimate, int) {
	for i, est := range r.estimates {
		if est.ID == id {
			return est, i
		}
	}
	return model.Estimate{ID: id}, -1
}

func (r *EstimateRepository) sortLocked() {
	sort.Slice(r.estimates, func(i, j int) bool {
		return r.estimates[i].ID < r.estimates[j].ID
	})
}

// parseFloatOrZero converte texto em float64, caindo para 0.0 em
// qualquer entrada inválida
func parseFloatOrZero(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return f
}

// logPersistError registra falhas de persistência sem propagá-las; as
// mutações nunca sinalizam erro ao chamador
func logPersistError(op string, id int, err error) {
	logger.Global().Error().
		Err(err).
		Str("op", op).
		Int("estimate_id", id).
		Msg("Falha ao persistir estimativa")
}
