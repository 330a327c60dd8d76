package service

import (
	"context"
	"sync"
	"testing"

	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredExample(id int64, toolName string, score float64) repository.ScoredExample {
	return repository.ScoredExample{
		Example: &entity.ToolExample{Id: id, ToolName: toolName, Domain: "orders", QueryText: "q"},
		Score:   score,
	}
}

func newRouterForTest(repo *fakeExampleRepo) ToolRouterService {
	return NewToolRouterService(repo, nil, newFakeEmbedder(), testConfig())
}

func TestResolveConfident(t *testing.T) {
	repo := newFakeExampleRepo()
	repo.scored = []repository.ScoredExample{
		scoredExample(1, "get_orders", 0.93),
		scoredExample(2, "get_products", 0.70),
	}

	decision, err := newRouterForTest(repo).Resolve(context.Background(), "show me today's orders", "")
	require.NoError(t, err)
	assert.Equal(t, RouteConfident, decision.Outcome)
	require.Len(t, decision.Candidates, 2)
	assert.Equal(t, "get_orders", decision.Candidates[0].ToolName)
	assert.NotEmpty(t, decision.Embedding)
}

func TestResolveDomainHintNarrowsCandidates(t *testing.T) {
	repo := newFakeExampleRepo()
	finance := scoredExample(1, "issue_refund", 0.95)
	finance.Example.Domain = "finance"
	repo.scored = []repository.ScoredExample{
		finance,
		scoredExample(2, "get_orders", 0.90),
	}

	decision, err := newRouterForTest(repo).Resolve(context.Background(), "refund order 42", "finance")
	require.NoError(t, err)
	assert.Equal(t, RouteConfident, decision.Outcome)
	require.Len(t, decision.Candidates, 1)
	assert.Equal(t, "issue_refund", decision.Candidates[0].ToolName)

	// 未登记的业务域提示被忽略，回到全量检索
	decision, err = newRouterForTest(repo).Resolve(context.Background(), "refund order 42", "warehouse_ops")
	require.NoError(t, err)
	assert.Len(t, decision.Candidates, 2)
}

func TestResolveBelowThreshold(t *testing.T) {
	repo := newFakeExampleRepo()
	repo.scored = []repository.ScoredExample{
		scoredExample(1, "get_orders", 0.75),
	}

	decision, err := newRouterForTest(repo).Resolve(context.Background(), "orders maybe", "")
	require.NoError(t, err)
	// 最高分不过阈值时整体判 no_match，由编排层回落到完整工具目录
	assert.Equal(t, RouteNoMatch, decision.Outcome)
	assert.NotEmpty(t, decision.Candidates)
}

func TestResolveNarrowMargin(t *testing.T) {
	repo := newFakeExampleRepo()
	repo.scored = []repository.ScoredExample{
		scoredExample(1, "get_orders", 0.90),
		scoredExample(2, "cancel_order", 0.88),
	}

	decision, err := newRouterForTest(repo).Resolve(context.Background(), "something about an order", "")
	require.NoError(t, err)
	assert.Equal(t, RouteAmbiguous, decision.Outcome)
}

func TestResolveNoMatch(t *testing.T) {
	repo := newFakeExampleRepo()

	decision, err := newRouterForTest(repo).Resolve(context.Background(), "what's the weather", "")
	require.NoError(t, err)
	assert.Equal(t, RouteNoMatch, decision.Outcome)
	assert.Empty(t, decision.Candidates)
}

func TestResolveEmptyQuery(t *testing.T) {
	_, err := newRouterForTest(newFakeExampleRepo()).Resolve(context.Background(), "   ", "")
	assert.Error(t, err)
}

func TestConfirmMatchLearnsNewExample(t *testing.T) {
	repo := newFakeExampleRepo()
	router := newRouterForTest(repo)

	err := router.ConfirmMatch(context.Background(), "get_orders", "show recent orders", 0, entity.Vector{1, 0, 0})
	require.NoError(t, err)

	require.Len(t, repo.examples, 1)
	learned := repo.examples[0]
	assert.True(t, learned.IsLearned)
	assert.Equal(t, 1, learned.UsageCount)
	assert.Equal(t, "orders", learned.Domain)
}

func TestConfirmMatchIncrementsExisting(t *testing.T) {
	repo := newFakeExampleRepo()
	router := newRouterForTest(repo)

	require.NoError(t, router.ConfirmMatch(context.Background(), "get_orders", "show recent orders", 0, entity.Vector{1, 0, 0}))
	require.NoError(t, router.ConfirmMatch(context.Background(), "get_orders", "show recent orders", 0, nil))

	require.Len(t, repo.examples, 1, "duplicate query must not create a second example")
	assert.Equal(t, 1, repo.usage[repo.examples[0].Id])
}

func TestConfirmMatchBumpsMatchedExample(t *testing.T) {
	repo := newFakeExampleRepo()
	matched := &entity.ToolExample{ToolName: "get_orders", Domain: "orders", QueryText: "orders today"}
	require.NoError(t, repo.CreateExample(context.Background(), matched))
	router := newRouterForTest(repo)

	// 新的表述：命中示例记一次使用，同时学习为新示例
	err := router.ConfirmMatch(context.Background(), "get_orders", "list the recent orders", matched.Id, entity.Vector{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.usage[matched.Id])
	require.Len(t, repo.examples, 2)

	// 与命中示例同款的表述只记一次，不重复累加
	err = router.ConfirmMatch(context.Background(), "get_orders", "orders today", matched.Id, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.usage[matched.Id])
	require.Len(t, repo.examples, 2)
}

func TestConfirmMatchConcurrentUsage(t *testing.T) {
	repo := newFakeExampleRepo()
	matched := &entity.ToolExample{ToolName: "get_orders", Domain: "orders", QueryText: "orders today"}
	require.NoError(t, repo.CreateExample(context.Background(), matched))
	router := newRouterForTest(repo)

	const turns = 32
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, router.ConfirmMatch(context.Background(), "get_orders", "orders today", matched.Id, nil))
		}()
	}
	wg.Wait()

	// 并发确认不丢计数，也不会复制示例
	assert.Equal(t, turns, repo.usage[matched.Id])
	assert.Len(t, repo.examples, 1)
}

func TestConfirmMatchUnknownTool(t *testing.T) {
	router := newRouterForTest(newFakeExampleRepo())
	err := router.ConfirmMatch(context.Background(), "no_such_tool", "query", 0, entity.Vector{1, 0, 0})
	assert.Error(t, err)
}
