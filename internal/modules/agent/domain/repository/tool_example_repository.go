package repository

import (
	"context"

	"StorePilot/internal/modules/agent/domain/entity"
)

// ScoredExample 带相似度分值的候选示例，每个工具只保留其最佳示例
type ScoredExample struct {
	Example *entity.ToolExample
	Score   float64
}

// ToolExampleRepository 工具路由示例仓储接口
type ToolExampleRepository interface {
	// CreateExample 写入一条示例
	CreateExample(ctx context.Context, example *entity.ToolExample) error

	// SearchSimilar 按余弦相似度检索 topK 个候选工具（每个工具去重，只取最佳示例）。
	// candidateIds 非空时只在这些示例内排序（向量索引召回后的精排），为空则全表参与；
	// domain 非空时只在该业务域内检索。
	// 排序规则：分值降序，其次 usage_count 降序，其次 id 升序
	SearchSimilar(ctx context.Context, embedding entity.Vector, candidateIds []int64, domain string, topK int, minScore float64) ([]ScoredExample, error)

	// FindByToolAndQuery 按工具名和查询文本精确查找
	FindByToolAndQuery(ctx context.Context, toolName, queryText string) (*entity.ToolExample, error)

	// IncrementUsage 自增使用计数
	IncrementUsage(ctx context.Context, id int64) error

	// CountByDomain 各业务域的示例数统计
	CountByDomain(ctx context.Context) (map[string]int64, error)

	// DeleteSeeded 清除所有非学习来源的预置示例（重新播种前调用）
	DeleteSeeded(ctx context.Context) error
}
