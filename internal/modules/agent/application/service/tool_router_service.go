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

	einoEmbedding "github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

// 路由结果三态
const (
	RouteConfident = "confident"
	RouteAmbiguous = "ambiguous"
	RouteNoMatch   = "no_match"
)

// 低于该相似度的示例不参与候选
const minSimilarityFloor = 0.5

// RouteCandidate 候选工具及其最佳示例分值
type RouteCandidate struct {
	ToolName   string
	Score      float64
	ExampleId  int64
	UsageCount int
}

// RouteDecision 一次路由判定
type RouteDecision struct {
	Outcome    string
	Candidates []RouteCandidate
	Embedding  entity.Vector
}

// ToolRouterService 基于示例嵌入的工具路由
type ToolRouterService interface {
	// Resolve 判定查询应落到哪个工具：
	// 最高分低于阈值（或无候选）判 no_match，
	// 达到阈值但对次高分的领先不足边距判 ambiguous，其余判 confident。
	// domainHint 非空时把检索范围收窄到该业务域，未知的域名被忽略
	Resolve(ctx context.Context, query, domainHint string) (*RouteDecision, error)

	// ConfirmMatch 一次成功的工具调用后回写：命中的示例（matchedExampleId > 0）
	// 自增使用计数；该查询已有同款示例则同样自增，否则以 is_learned 方式入库
	ConfirmMatch(ctx context.Context, toolName, query string, matchedExampleId int64, embedding entity.Vector) error
}

type toolRouterServiceImpl struct {
	exampleRepo repository.ToolExampleRepository
	index       repository.ExampleIndex
	embedder    einoEmbedding.Embedder
	threshold   float64
	margin      float64
	topK        int
	dim         int
}

// NewToolRouterService 创建 ToolRouterService，index 可为 nil
func NewToolRouterService(
	exampleRepo repository.ToolExampleRepository,
	index repository.ExampleIndex,
	embedder einoEmbedding.Embedder,
	conf *config.Config,
) ToolRouterService {
	return &toolRouterServiceImpl{
		exampleRepo: exampleRepo,
		index:       index,
		embedder:    embedder,
		threshold:   conf.AgentConfig.SimilarityThreshold,
		margin:      conf.AgentConfig.AmbiguityMargin,
		topK:        conf.AgentConfig.TopK,
		dim:         conf.AgentConfig.EmbeddingDimensions,
	}
}

func (s *toolRouterServiceImpl) Resolve(ctx context.Context, query, domainHint string) (*RouteDecision, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if domainHint = strings.TrimSpace(domainHint); domainHint != "" && !tool.KnownDomain(domainHint) {
		zlog.Warn("unknown domain hint ignored", zap.String("domain", domainHint))
		domainHint = ""
	}

	vec, err := agentEmbedding.EmbedQuery(ctx, s.embedder, query, s.dim)
	if err != nil {
		return nil, err
	}

	// 向量索引可用时先召回一批候选，再由 SQL 层做确定性精排
	var candidateIds []int64
	if s.index != nil {
		hits, err := s.index.Search(ctx, vec, s.topK*4)
		if err != nil {
			zlog.Warn("example index search failed, falling back to full scan", zap.Error(err))
		} else {
			for _, h := range hits {
				candidateIds = append(candidateIds, h.ExampleId)
			}
		}
	}

	scored, err := s.exampleRepo.SearchSimilar(ctx, vec, candidateIds, domainHint, s.topK, minSimilarityFloor)
	if err != nil {
		return nil, err
	}

	decision := &RouteDecision{Embedding: vec}
	for _, sc := range scored {
		decision.Candidates = append(decision.Candidates, RouteCandidate{
			ToolName:   sc.Example.ToolName,
			Score:      sc.Score,
			ExampleId:  sc.Example.Id,
			UsageCount: sc.Example.UsageCount,
		})
	}

	switch {
	case len(decision.Candidates) == 0 || decision.Candidates[0].Score < s.threshold:
		decision.Outcome = RouteNoMatch
	case len(decision.Candidates) > 1 && decision.Candidates[0].Score-decision.Candidates[1].Score < s.margin:
		decision.Outcome = RouteAmbiguous
	default:
		decision.Outcome = RouteConfident
	}

	zlog.Info("tool route resolved",
		zap.String("outcome", decision.Outcome),
		zap.Int("candidates", len(decision.Candidates)))
	return decision, nil
}

func (s *toolRouterServiceImpl) ConfirmMatch(ctx context.Context, toolName, query string, matchedExampleId int64, embedding entity.Vector) error {
	toolName = strings.TrimSpace(toolName)
	query = strings.TrimSpace(query)
	if toolName == "" || query == "" {
		return fmt.Errorf("toolName and query are required")
	}

	// 命中的示例记一次使用，tie-break 靠这个计数积累
	if matchedExampleId > 0 {
		if err := s.exampleRepo.IncrementUsage(ctx, matchedExampleId); err != nil {
			return err
		}
	}

	existing, err := s.exampleRepo.FindByToolAndQuery(ctx, toolName, query)
	if err != nil {
		return err
	}
	if existing != nil {
		if existing.Id != matchedExampleId {
			return s.exampleRepo.IncrementUsage(ctx, existing.Id)
		}
		return nil
	}

	def := tool.Get(toolName)
	if def == nil {
		return fmt.Errorf("unknown tool: %s", toolName)
	}
	if len(embedding) == 0 {
		embedding, err = agentEmbedding.EmbedQuery(ctx, s.embedder, query, s.dim)
		if err != nil {
			return err
		}
	}

	example := &entity.ToolExample{
		ToolName:   toolName,
		Domain:     def.Domain,
		QueryText:  query,
		Embedding:  embedding,
		IsLearned:  true,
		UsageCount: 1,
		CreatedAt:  time.Now(),
	}
	if err := s.exampleRepo.CreateExample(ctx, example); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.Upsert(ctx, []*entity.ToolExample{example}); err != nil {
			zlog.Warn("example index upsert failed", zap.Int64("example_id", example.Id), zap.Error(err))
		}
	}
	return nil
}
