package source

import (
	"fmt"
	"strings"

	"github.com/soltixdb/insight/internal/config"
	"github.com/soltixdb/insight/internal/utils"
)

// New creates the source selected by cfg.Type. Memory is the default.
func New(cfg config.SourceConfig) (SeriesSource, error) {
	sourceType := utils.SourceType(strings.ToLower(cfg.Type))
	if sourceType == "" {
		sourceType = utils.SourceTypeMemory
	}

	switch sourceType {
	case utils.SourceTypeMemory:
		return NewMemorySource(), nil
	case utils.SourceTypeRedis:
		return NewRedisSource(cfg.Redis)
	case utils.SourceTypePostgres:
		return NewPostgresSource(cfg.Postgres)
	case utils.SourceTypeExcel:
		return NewExcelSource(cfg.Excel)
	default:
		return nil, fmt.Errorf("unsupported source type: %s (supported: memory, redis, postgres, excel)", sourceType)
	}
}
