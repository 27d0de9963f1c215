package model

// Valores padrão de uma estimativa recém-criada
const (
	DefaultEstimateMin = 0.0
	DefaultEstimateMax = 10.0
)

// Campos editáveis de uma estimativa
const (
	FieldDescription = "description"
	FieldMin         = "min"
	FieldMax         = "max"
)

// Estimate representa uma faixa numérica rotulada inserida pelo usuário
type Estimate struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// NewEstimate cria uma estimativa com a faixa padrão [0, 10]
func NewEstimate(id int) Estimate {
	return Estimate{
		ID:  id,
		Min: DefaultEstimateMin,
		Max: DefaultEstimateMax,
	}
}

// IsValidField verifica se o nome do campo é editável
func IsValidField(field string) bool {
	switch field {
	case FieldDescription, FieldMin, FieldMax:
		return true
	}
	return false
}
