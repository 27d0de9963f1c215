package model

import "time"

// SampleSet contém o resultado de uma rodada de amostragem.
// O conjunto é sempre substituído por inteiro, nunca acrescentado.
type SampleSet struct {
	Values      []float64 `json:"values"`
	Count       int       `json:"count"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Mode        string    `json:"mode"`
	Seed        uint64    `json:"seed"`
	Version     int64     `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
}

// HistogramBucket representa um balde do histograma
type HistogramBucket struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// Histogram contém os baldes calculados sobre o conjunto de amostras atual
type Histogram struct {
	Buckets     []HistogramBucket `json:"buckets"`
	BucketCount int               `json:"bucket_count"`
	RangeMin    float64           `json:"range_min"`
	RangeMax    float64           `json:"range_max"`
	Total       int               `json:"total"`
	Version     int64             `json:"version"`
}
