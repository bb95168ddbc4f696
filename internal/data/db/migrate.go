package db

import (
	"fmt"

	types "github.com/ayurmap/termbridge-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Terminology sources
		// =========================
		&types.NamasteTerm{},
		&types.ICDEntity{},

		// =========================
		// Mapping outputs
		// =========================
		&types.MappingRecord{},
		&types.MappingValidation{},
		&types.ConceptMapDoc{},

		// =========================
		// Runs / worker
		// =========================
		&types.MappingRun{},
		&types.MappingRunPointer{},
	)
}

func EnsureTerminologyIndexes(db *gorm.DB) error {
	// Lexical retrieval over the cached registry entries. The candidate
	// generator ranks against title and definition together.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_icd_entities_fts
		ON icd_entities
		USING GIN (to_tsvector('english', coalesce(title, '') || ' ' || coalesce(definition, '')));
	`).Error; err != nil {
		return fmt.Errorf("create idx_icd_entities_fts: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_namaste_terms_fts
		ON namaste_terms
		USING GIN (to_tsvector('english', coalesce(display, '') || ' ' || coalesce(definition, '')));
	`).Error; err != nil {
		return fmt.Errorf("create idx_namaste_terms_fts: %w", err)
	}

	return nil
}

func EnsureMappingIndexes(db *gorm.DB) error {
	// Group assembly and translate lookups walk mappings per job in
	// source order.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_concept_mappings_job_source
		ON concept_mappings (job_id, source_system, target_system, source_code);
	`).Error; err != nil {
		return fmt.Errorf("create idx_concept_mappings_job_source: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_mapping_runs_claim
		ON mapping_runs (status, created_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_mapping_runs_claim: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureTerminologyIndexes(s.db); err != nil {
		s.log.Error("Terminology index migration failed", "error", err)
		return err
	}
	if err := EnsureMappingIndexes(s.db); err != nil {
		s.log.Error("Mapping index migration failed", "error", err)
		return err
	}

	return nil
}
