package persistence

import (
	"sort"
	"testing"

	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(id int64, usage int, score float64) repository.ScoredExample {
	return repository.ScoredExample{
		Example: &entity.ToolExample{Id: id, UsageCount: usage},
		Score:   score,
	}
}

func TestScoredLessOrdering(t *testing.T) {
	// 分值优先
	assert.True(t, scoredLess(scored(1, 9, 0.80), scored(2, 0, 0.90)))

	// 平分时 usage_count 高者优先
	assert.True(t, scoredLess(scored(1, 2, 0.85), scored(2, 5, 0.85)))

	// 分值与 usage_count 都相同时 id 小者优先
	assert.True(t, scoredLess(scored(9, 3, 0.85), scored(4, 3, 0.85)))
}

func TestRankExamplesCosine(t *testing.T) {
	examples := []*entity.ToolExample{
		{Id: 1, ToolName: "get_orders", Embedding: entity.Vector{1, 0, 0}},
		{Id: 2, ToolName: "get_products", Embedding: entity.Vector{0, 1, 0}},
		{Id: 3, ToolName: "get_customers", Embedding: entity.Vector{0, 0, 1}},
	}

	// 与第一个示例同向，与其余正交
	ranked, err := rankExamples(entity.Vector{2, 0, 0}, examples, 5, 0.5)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "get_orders", ranked[0].Example.ToolName)
	assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)
}

func TestRankExamplesBestPerTool(t *testing.T) {
	examples := []*entity.ToolExample{
		{Id: 1, ToolName: "get_orders", Embedding: entity.Vector{1, 0, 0}},
		{Id: 2, ToolName: "get_orders", Embedding: entity.Vector{1, 1, 0}},
		{Id: 3, ToolName: "get_products", Embedding: entity.Vector{0.9, 0.1, 0}},
	}

	ranked, err := rankExamples(entity.Vector{1, 0, 0}, examples, 5, 0.0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// 同一工具只留分值最高的那条
	assert.Equal(t, "get_orders", ranked[0].Example.ToolName)
	assert.EqualValues(t, 1, ranked[0].Example.Id)
	assert.Equal(t, "get_products", ranked[1].Example.ToolName)
}

func TestRankExamplesDimensionMismatch(t *testing.T) {
	examples := []*entity.ToolExample{
		{Id: 1, ToolName: "get_orders", Embedding: entity.Vector{1, 0}},
	}
	_, err := rankExamples(entity.Vector{1, 0, 0}, examples, 5, 0.0)
	assert.ErrorIs(t, err, entity.ErrDimensionMismatch)
}

func TestScoredRankingIsDeterministic(t *testing.T) {
	ranked := []repository.ScoredExample{
		scored(3, 1, 0.85),
		scored(1, 1, 0.85),
		scored(2, 7, 0.85),
		scored(5, 0, 0.95),
	}
	sort.Slice(ranked, func(i, j int) bool {
		return scoredLess(ranked[j], ranked[i])
	})

	ids := make([]int64, 0, len(ranked))
	for _, s := range ranked {
		ids = append(ids, s.Example.Id)
	}
	assert.Equal(t, []int64{5, 2, 1, 3}, ids)
}
