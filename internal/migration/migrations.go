package migration

// getAllMigrations retorna todas as migrações disponíveis
func getAllMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_estimates_table",
			Up: `
				-- Estimativas inseridas pelo usuário
				CREATE TABLE estimates (
					id INTEGER PRIMARY KEY,
					description TEXT NOT NULL DEFAULT '',
					range_min DOUBLE PRECISION NOT NULL DEFAULT 0,
					range_max DOUBLE PRECISION NOT NULL DEFAULT 0,
					created_at TIMESTAMP DEFAULT NOW(),
					updated_at TIMESTAMP DEFAULT NOW()
				);

				-- Contador monotônico de IDs (sobrevive a remoções)
				CREATE TABLE estimate_counter (
					singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
					last_id INTEGER NOT NULL DEFAULT 0
				);
				INSERT INTO estimate_counter (singleton, last_id) VALUES (TRUE, 0);
			`,
			Down: `
				DROP TABLE IF EXISTS estimate_counter;
				DROP TABLE IF EXISTS estimates;
			`,
		},
	}
}
