package persistence

import (
	"context"
	"sort"
	"strings"
	"time"

	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"
	"StorePilot/pkg/util"

	"gorm.io/gorm"
)

type toolExampleRepositoryImpl struct {
	db *gorm.DB
}

func NewToolExampleRepository(db *gorm.DB) repository.ToolExampleRepository {
	return &toolExampleRepositoryImpl{db: db}
}

func (r *toolExampleRepositoryImpl) CreateExample(ctx context.Context, example *entity.ToolExample) error {
	now := time.Now()
	if example.CreatedAt.IsZero() {
		example.CreatedAt = now
	}
	example.UpdatedAt = now
	return wrapDB(r.db.WithContext(ctx).Create(example).Error)
}

// SearchSimilar 加载示例后在进程内做余弦排序，保证平分时的确定性。
// 示例表规模在千级以内，大库场景由调用方先经向量索引召回 candidateIds
func (r *toolExampleRepositoryImpl) SearchSimilar(ctx context.Context, embedding entity.Vector, candidateIds []int64, domain string, topK int, minScore float64) ([]repository.ScoredExample, error) {
	if topK <= 0 {
		topK = 5
	}

	query := r.db.WithContext(ctx)
	if len(candidateIds) > 0 {
		query = query.Where("id IN ?", candidateIds)
	}
	if domain = strings.TrimSpace(domain); domain != "" {
		query = query.Where("domain = ?", domain)
	}
	var examples []*entity.ToolExample
	if err := query.Find(&examples).Error; err != nil {
		return nil, wrapDB(err)
	}

	return rankExamples(embedding, examples, topK, minScore)
}

// rankExamples 余弦打分，每个工具只保留最优示例，再按 scoredLess 整体排序
func rankExamples(embedding entity.Vector, examples []*entity.ToolExample, topK int, minScore float64) ([]repository.ScoredExample, error) {
	best := make(map[string]repository.ScoredExample)
	for _, ex := range examples {
		score, err := util.CosineSimilarity(embedding, ex.Embedding)
		if err != nil {
			return nil, entity.ErrDimensionMismatch
		}
		if score < minScore {
			continue
		}
		cur, ok := best[ex.ToolName]
		if !ok || scoredLess(cur, repository.ScoredExample{Example: ex, Score: score}) {
			best[ex.ToolName] = repository.ScoredExample{Example: ex, Score: score}
		}
	}

	ranked := make([]repository.ScoredExample, 0, len(best))
	for _, s := range best {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return scoredLess(ranked[j], ranked[i])
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

// scoredLess a 是否排在 b 之后：分值降序，usage_count 降序，id 升序
func scoredLess(a, b repository.ScoredExample) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.Example.UsageCount != b.Example.UsageCount {
		return a.Example.UsageCount < b.Example.UsageCount
	}
	return a.Example.Id > b.Example.Id
}

func (r *toolExampleRepositoryImpl) FindByToolAndQuery(ctx context.Context, toolName, queryText string) (*entity.ToolExample, error) {
	toolName = strings.TrimSpace(toolName)
	if toolName == "" {
		return nil, nil
	}

	var ex entity.ToolExample
	err := r.db.WithContext(ctx).
		Where("tool_name = ? AND query_text = ?", toolName, queryText).
		Take(&ex).Error
	if err == nil {
		return &ex, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return nil, wrapDB(err)
}

func (r *toolExampleRepositoryImpl) IncrementUsage(ctx context.Context, id int64) error {
	return wrapDB(r.db.WithContext(ctx).Model(&entity.ToolExample{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  time.Now(),
		}).Error)
}

func (r *toolExampleRepositoryImpl) CountByDomain(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Domain string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&entity.ToolExample{}).
		Select("domain, count(*) as total").
		Group("domain").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.Domain] = rw.Total
	}
	return out, nil
}

func (r *toolExampleRepositoryImpl) DeleteSeeded(ctx context.Context) error {
	return wrapDB(r.db.WithContext(ctx).
		Where("is_learned = ?", false).
		Delete(&entity.ToolExample{}).Error)
}
