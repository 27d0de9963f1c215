package model

// UpdateEstimateRequest é o payload de edição de um campo de estimativa.
// Value é sempre texto livre; campos numéricos com texto inválido são
// coagidos silenciosamente para 0.0, nunca rejeitados.
type UpdateEstimateRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// SampleRequest é o payload de uma rodada de amostragem.
// Campos omitidos ou fora de faixa caem nos defaults da configuração.
type SampleRequest struct {
	Count int      `json:"count"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Seed  *uint64  `json:"seed"`
}

// Response é a resposta padrão de sucesso
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse é a resposta padrão de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
