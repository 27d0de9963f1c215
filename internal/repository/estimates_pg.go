package repository

import (
	"fmt"

	"github.com/cleberrangel/estimate-histogram-api/internal/model"
)

// loadFromDB carrega estimativas e contador do PostgreSQL
func (r *EstimateRepository) loadFromDB() error {
	rows, err := r.db.Query(`
		SELECT id, description, range_min, range_max
		FROM estimates
		ORDER BY id ASC
	`)
	if err != nil {
		return fmt.Errorf("carregar estimativas: %w", err)
	}
	defer rows.Close()

	var estimates []model.Estimate
	for rows.Next() {
		var est model.Estimate
		if err := rows.Scan(&est.ID, &est.Description, &est.Min, &est.Max); err != nil {
			return fmt.Errorf("ler estimativa: %w", err)
		}
		estimates = append(estimates, est)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterar estimativas: %w", err)
	}

	var counter int
	err = r.db.QueryRow(`SELECT last_id FROM estimate_counter`).Scan(&counter)
	if err != nil {
		return fmt.Errorf("carregar contador: %w", err)
	}

	// O contador nunca anda para trás, mesmo que o banco esteja
	// inconsistente com os IDs existentes
	for _, est := range estimates {
		if est.ID > counter {
			counter = est.ID
		}
	}

	r.mu.Lock()
	r.estimates = estimates
	r.counter = counter
	r.mu.Unlock()

	return nil
}

// persistUpsert grava uma estimativa no banco (insert ou update)
func (r *EstimateRepository) persistUpsert(est model.Estimate) {
	if r.db == nil {
		return
	}

	_, err := r.db.Exec(`
		INSERT INTO estimates (id, description, range_min, range_max)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			range_min = EXCLUDED.range_min,
			range_max = EXCLUDED.range_max,
			updated_at = NOW()
	`, est.ID, est.Description, est.Min, est.Max)
	if err != nil {
		logPersistError("upsert", est.ID, err)
	}
}

// persistDelete remove uma estimativa do banco
func (r *EstimateRepository) persistDelete(id int) {
	if r.db == nil {
		return
	}

	if _, err := r.db.Exec(`DELETE FROM estimates WHERE id = $1`, id); err != nil {
		logPersistError("delete", id, err)
	}
}

// persistCounter grava o último ID atribuído
func (r *EstimateRepository) persistCounter() {
	if r.db == nil {
		return
	}

	_, err := r.db.Exec(`UPDATE estimate_counter SET last_id = $1`, r.counter)
	if err != nil {
		logPersistError("counter", r.counter, err)
	}
}
