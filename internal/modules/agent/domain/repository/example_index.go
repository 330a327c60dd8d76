package repository

import (
	"context"

	"StorePilot/internal/modules/agent/domain/entity"
)

// IndexHit 向量索引召回结果
type IndexHit struct {
	ExampleId int64
	ToolName  string
	Score     float32
}

// ExampleIndex 工具示例的向量索引镜像。
// MySQL 表是事实来源，索引只用于大库场景下的召回加速，缺省可为空实现。
type ExampleIndex interface {
	// Upsert 写入或覆盖示例向量
	Upsert(ctx context.Context, examples []*entity.ToolExample) error

	// Search 按向量召回 topK 个候选
	Search(ctx context.Context, vector entity.Vector, topK int) ([]IndexHit, error)

	// DeleteByIDs 删除指定示例的向量
	DeleteByIDs(ctx context.Context, ids []int64) error
}
