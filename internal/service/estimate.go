package service

import (
	"context"
	"strconv"

	"github.com/cleberrangel/estimate-histogram-api/internal/logger"
	"github.com/cleberrangel/estimate-histogram-api/internal/metrics"
	"github.com/cleberrangel/estimate-histogram-api/internal/model"
	"github.com/cleberrangel/estimate-histogram-api/internal/repository"
	"github.com/cleberrangel/estimate-histogram-api/internal/websocket"
)

// EstimateService orquestra as mutações da coleção de estimativas e
// notifica os clientes de gráfico conectados. IDs chegam como texto da
// borda HTTP; texto não numérico é coagido silenciosamente para 0, no
// mesmo contrato dos campos numéricos.
type EstimateService struct {
	repo *repository.EstimateRepository
	hub  *websocket.Hub
}

// NewEstimateService cria um novo serviço de estimativas
func NewEstimateService(repo *repository.EstimateRepository, hub *websocket.Hub) *EstimateService {
	return &EstimateService{
		repo: repo,
		hub:  hub,
	}
}

// List devolve todas as estimativas ordenadas por ID
func (s *EstimateService) List(ctx context.Context) []model.Estimate {
	return s.repo.List()
}

// Add cria uma nova estimativa com valores padrão
func (s *EstimateService) Add(ctx context.Context) model.Estimate {
	est := s.repo.Add()

	metrics.Get().IncrementEstimateCreated()
	logger.Get(ctx).Info().
		Int("estimate_id", est.ID).
		Msg("Estimativa criada")

	s.notifyEstimates()
	return est
}

// Remove exclui a estimativa com o ID informado; IDs ausentes ou não
// numéricos não geram erro
func (s *EstimateService) Remove(ctx context.Context, idRaw string) {
	id := parseIntOrZero(idRaw)
	s.repo.Remove(id)

	metrics.Get().IncrementEstimateRemoved()
	logger.Get(ctx).Info().
		Int("estimate_id", id).
		Msg("Estimativa removida")

	s.notifyEstimates()
}

// Update edita um campo de uma estimativa e devolve o registro
// resultante
func (s *EstimateService) Update(ctx context.Context, idRaw, field, value string) (model.Estimate, error) {
	id := parseIntOrZero(idRaw)

	est, err := s.repo.Update(id, field, value)
	if err != nil {
		return model.Estimate{}, err
	}

	metrics.Get().IncrementEstimateUpdated()
	logger.Get(ctx).Info().
		Int("estimate_id", id).
		Str("field", field).
		Msg("Estimativa atualizada")

	s.notifyEstimates()
	return est, nil
}

func (s *EstimateService) notifyEstimates() {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(websocket.EventEstimatesUpdated, map[string]interface{}{
		"count": s.repo.Len(),
	})
}

// parseIntOrZero converte texto em inteiro, caindo para 0 em qualquer
// entrada inválida
func parseIntOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
