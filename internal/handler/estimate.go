package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cleberrangel/estimate-histogram-api/internal/logger"
	"github.com/cleberrangel/estimate-histogram-api/internal/metrics"
	"github.com/cleberrangel/estimate-histogram-api/internal/model"
	"github.com/cleberrangel/estimate-histogram-api/internal/service"
	"github.com/gin-gonic/gin"
)

// EstimateHandler manipula requisições de estimativas
type EstimateHandler struct {
	estimateService *service.EstimateService
	samplingService *service.SamplingService
	exporter        *service.ExcelExporter
}

// NewEstimateHandler cria um novo handler de estimativas
func NewEstimateHandler(estimateService *service.EstimateService, samplingService *service.SamplingService, exporter *service.ExcelExporter) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
		samplingService: samplingService,
		exporter:        exporter,
	}
}

// List lista as estimativas
// @Summary      Lista estimativas
// @Description  Devolve todas as estimativas ordenadas por ID
// @Tags         estimates
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.Response
// @Router       /api/v1/estimates [get]
func (h *EstimateHandler) List(c *gin.Context) {
	estimates := h.estimateService.List(c.Request.Context())
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    estimates,
	})
}

// Create cria uma nova estimativa com valores padrão
// @Summary      Cria estimativa
// @Description  Cria uma estimativa vazia com faixa padrão [0, 10]
// @Tags         estimates
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} model.Response
// @Router       /api/v1/estimates [post]
func (h *EstimateHandler) Create(c *gin.Context) {
	est := h.estimateService.Add(c.Request.Context())
	c.JSON(http.StatusCreated, model.Response{
		Success: true,
		Data:    est,
	})
}

// Delete remove uma estimativa. IDs ausentes ou não numéricos são
// ignorados silenciosamente e a resposta é sempre de sucesso.
// @Summary      Remove estimativa
// @Tags         estimates
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da estimativa"
// @Success      200 {object} model.Response
// @Router       /api/v1/estimates/{id} [delete]
func (h *EstimateHandler) Delete(c *gin.Context) {
	h.estimateService.Remove(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, model.Response{
		Success: true,
	})
}

// Update edita um campo de uma estimativa
// @Summary      Edita estimativa
// @Description  Edita description, min ou max; valores numéricos inválidos são coagidos para 0.0
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID da estimativa"
// @Param        request body model.UpdateEstimateRequest true "Campo e valor"
// @Success      200 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/v1/estimates/{id} [patch]
func (h *EstimateHandler) Update(c *gin.Context) {
	var req model.UpdateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "payload inválido",
			Details: err.Error(),
		})
		return
	}

	est, err := h.estimateService.Update(c.Request.Context(), c.Param("id"), req.Field, req.Value)
	if err != nil {
		if errors.Is(err, model.ErrInvalidField) {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Success: false,
				Error:   "campo inválido",
				Details: fmt.Sprintf("campo %q não é editável", req.Field),
			})
			return
		}

		logger.FromGin(c).Error().Err(err).Msg("Erro ao atualizar estimativa")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "erro interno",
		})
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    est,
	})
}

// Export gera a planilha Excel com estimativas e histograma
// @Summary      Exporta planilha
// @Tags         estimates
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200 {file} binary
// @Failure      500 {object} model.ErrorResponse
// @Router       /api/v1/estimates/export [get]
func (h *EstimateHandler) Export(c *gin.Context) {
	estimates := h.estimateService.List(c.Request.Context())
	hist := h.samplingService.Histogram(nil, nil, 0)

	buf, err := h.exporter.Generate(estimates, hist)
	if err != nil {
		metrics.Get().IncrementExport(false)
		logger.FromGin(c).Error().Err(err).Msg("Erro ao gerar planilha")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   model.ErrExcelGeneration.Error(),
		})
		return
	}

	metrics.Get().IncrementExport(true)

	filename := fmt.Sprintf("estimativas_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
