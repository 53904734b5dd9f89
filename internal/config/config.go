package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Merge holds configuration for the report merger.
type Merge struct {
	InputDir         string
	OutputPath       string
	TaxonomyPath     string
	LoadWorkers      int
	CleanText        bool
	KeywordLimit     int
	KeywordMinLength int
}

// LoadMerge builds a Merge config from environment variables.
func LoadMerge() (*Merge, error) {
	c := &Merge{
		InputDir:         getEnv("MERGE_INPUT_DIR", "data/artlaw/reports"),
		OutputPath:       getEnv("MERGE_OUTPUT_PATH", "data/artlaw/merged_artlaw_report.json"),
		TaxonomyPath:     strings.TrimSpace(os.Getenv("MERGE_TAXONOMY_PATH")),
		LoadWorkers:      getInt("MERGE_LOAD_WORKERS", 4),
		CleanText:        getBool("MERGE_CLEAN_TEXT", false),
		KeywordLimit:     getInt("MERGE_KEYWORD_LIMIT", 10),
		KeywordMinLength: getInt("MERGE_KEYWORD_MIN_LEN", 4),
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the values that flags may have overridden.
func (c *Merge) Validate() error {
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("MERGE_OUTPUT_PATH must not be empty")
	}
	if c.LoadWorkers <= 0 {
		return fmt.Errorf("MERGE_LOAD_WORKERS must be positive")
	}
	if c.KeywordLimit <= 0 {
		return fmt.Errorf("MERGE_KEYWORD_LIMIT must be positive")
	}
	if c.KeywordMinLength < 0 {
		return fmt.Errorf("MERGE_KEYWORD_MIN_LEN cannot be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}
