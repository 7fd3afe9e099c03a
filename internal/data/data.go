package data

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/hareeshbabu82ns/devhub-search/internal/conf"
	dictdata "github.com/hareeshbabu82ns/devhub-search/internal/dictionary/data"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/database"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/logger"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/redis"
	saveddata "github.com/hareeshbabu82ns/devhub-search/internal/savedsearch/data"
)

// Data bundles shared infrastructure clients
type Data struct {
	DB    *database.DB
	Redis *redis.Client
}

// NewData connects to PostgreSQL and Redis and runs migrations.
// Redis is optional: the search cache degrades to in-memory when it
// is unreachable.
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := migrate(db.GetDB()); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err := redis.New(&config.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, search cache will run in memory")
		redisClient = nil
	}

	d := &Data{
		DB:    db,
		Redis: redisClient,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")
		if err := db.Close(); err != nil {
			log.Warn("failed to close database")
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis")
			}
		}
	}

	return d, cleanup, nil
}

// migrate creates the schema and the full-text search machinery.
// unaccent is not IMMUTABLE, so a generated tsvector column needs an
// immutable wrapper function around it.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&dictdata.WordPO{}, &saveddata.SavedSearchPO{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS unaccent`,
		`CREATE OR REPLACE FUNCTION f_unaccent(text)
			RETURNS text
			LANGUAGE sql IMMUTABLE PARALLEL SAFE STRICT
			RETURN public.unaccent('public.unaccent', $1)`,
		`ALTER TABLE dictionary_words
			ADD COLUMN IF NOT EXISTS search_tsv tsvector
			GENERATED ALWAYS AS (
				to_tsvector('simple', f_unaccent(coalesce(word, '') || ' ' || coalesce(description, '')))
			) STORED`,
		`CREATE INDEX IF NOT EXISTS idx_dictionary_words_search_tsv
			ON dictionary_words USING GIN (search_tsv)`,
		`CREATE INDEX IF NOT EXISTS idx_dictionary_words_word_fold
			ON dictionary_words (f_unaccent(lower(word)) text_pattern_ops)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration statement failed: %w", err)
		}
	}

	return nil
}
