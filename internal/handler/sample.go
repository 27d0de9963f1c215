package handler

import (
	"net/http"
	"strconv"

	"github.com/cleberrangel/estimate-histogram-api/internal/model"
	"github.com/cleberrangel/estimate-histogram-api/internal/service"
	"github.com/gin-gonic/gin"
)

// SampleHandler manipula requisições de amostragem e histograma
type SampleHandler struct {
	samplingService *service.SamplingService
}

// NewSampleHandler cria um novo handler de amostragem
func NewSampleHandler(samplingService *service.SamplingService) *SampleHandler {
	return &SampleHandler{
		samplingService: samplingService,
	}
}

// Resample executa uma rodada de amostragem e substitui o conjunto atual
// @Summary      Gera novo conjunto de amostras
// @Description  Parâmetros omitidos ou inválidos caem nos defaults da configuração; a rodada nunca falha
// @Tags         samples
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.SampleRequest false "Parâmetros da rodada"
// @Success      200 {object} model.Response
// @Router       /api/v1/samples [post]
func (h *SampleHandler) Resample(c *gin.Context) {
	var req model.SampleRequest
	if c.Request.ContentLength > 0 {
		// Payload inválido é tratado como vazio; os defaults assumem
		_ = c.ShouldBindJSON(&req)
	}

	set := h.samplingService.Resample(c.Request.Context(), req)
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    set,
	})
}

// Current devolve o conjunto de amostras atual
// @Summary      Conjunto de amostras atual
// @Tags         samples
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} model.Response
// @Router       /api/v1/samples [get]
func (h *SampleHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    h.samplingService.Current(),
	})
}

// Histogram devolve o histograma do conjunto atual
// @Summary      Histograma do conjunto atual
// @Description  Faixa de exibição e número de baldes opcionais via query; defaults da configuração
// @Tags         samples
// @Produce      json
// @Security     BearerAuth
// @Param        min query number false "Limite inferior da faixa de exibição"
// @Param        max query number false "Limite superior da faixa de exibição"
// @Param        buckets query integer false "Número de baldes"
// @Success      200 {object} model.Response
// @Router       /api/v1/histogram [get]
func (h *SampleHandler) Histogram(c *gin.Context) {
	lo := queryFloat(c, "min")
	hi := queryFloat(c, "max")

	buckets := 0
	if raw := c.Query("buckets"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			buckets = n
		}
	}

	hist := h.samplingService.Histogram(lo, hi, buckets)
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    hist,
	})
}

// queryFloat lê um parâmetro de query como float; ausente ou inválido
// devolve nil
func queryFloat(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
