package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StorePilot/internal/config"
	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"
	"StorePilot/internal/modules/agent/domain/tool"
	agentEmbedding "StorePilot/internal/modules/agent/infrastructure/embedding"
	"StorePilot/pkg/zlog"

	"github.com/BurntSushi/toml"
	einoEmbedding "github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

// SeederService 路由示例播种：从 TOML 文件加载人工整理的示例三元组，
// 嵌入后写入示例表。学习来源（is_learned）的示例不受重播影响
type SeederService interface {
	// SeedFromFile 重播预置示例：清掉旧的预置行，逐条嵌入入库
	SeedFromFile(ctx context.Context, path string) (int, error)

	// Stats 各业务域示例数
	Stats(ctx context.Context) (map[string]int64, error)
}

type seedFile struct {
	Examples []seedExample `toml:"example"`
}

type seedExample struct {
	Tool  string `toml:"tool"`
	Query string `toml:"query"`
}

type seederServiceImpl struct {
	exampleRepo repository.ToolExampleRepository
	index       repository.ExampleIndex
	embedder    einoEmbedding.Embedder
	dim         int
}

// NewSeederService 创建 SeederService，index 可为 nil
func NewSeederService(
	exampleRepo repository.ToolExampleRepository,
	index repository.ExampleIndex,
	embedder einoEmbedding.Embedder,
	conf *config.Config,
) SeederService {
	return &seederServiceImpl{
		exampleRepo: exampleRepo,
		index:       index,
		embedder:    embedder,
		dim:         conf.AgentConfig.EmbeddingDimensions,
	}
}

func (s *seederServiceImpl) SeedFromFile(ctx context.Context, path string) (int, error) {
	var file seedFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return 0, fmt.Errorf("load seed file: %w", err)
	}
	if len(file.Examples) == 0 {
		return 0, nil
	}

	if err := s.exampleRepo.DeleteSeeded(ctx); err != nil {
		return 0, err
	}

	seeded := 0
	var mirrored []*entity.ToolExample
	for _, item := range file.Examples {
		toolName := strings.TrimSpace(item.Tool)
		query := strings.TrimSpace(item.Query)
		if toolName == "" || query == "" {
			continue
		}
		def := tool.Get(toolName)
		if def == nil {
			zlog.Warn("seed example references unknown tool", zap.String("tool", toolName))
			continue
		}

		vec, err := agentEmbedding.EmbedQuery(ctx, s.embedder, query, s.dim)
		if err != nil {
			return seeded, fmt.Errorf("embed %q: %w", query, err)
		}

		example := &entity.ToolExample{
			ToolName:  toolName,
			Domain:    def.Domain,
			QueryText: query,
			Embedding: vec,
			CreatedAt: time.Now(),
		}
		if err := s.exampleRepo.CreateExample(ctx, example); err != nil {
			return seeded, err
		}
		mirrored = append(mirrored, example)
		seeded++
	}

	if s.index != nil && len(mirrored) > 0 {
		if err := s.index.Upsert(ctx, mirrored); err != nil {
			zlog.Warn("seed index mirror failed", zap.Error(err))
		}
	}

	zlog.Info("tool examples seeded", zap.Int("count", seeded), zap.String("file", path))
	return seeded, nil
}

func (s *seederServiceImpl) Stats(ctx context.Context) (map[string]int64, error) {
	return s.exampleRepo.CountByDomain(ctx)
}
