package vectordb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"StorePilot/internal/modules/agent/domain/entity"
	"StorePilot/internal/modules/agent/domain/repository"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	mentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// MilvusExampleIndex 基于 Milvus 的示例向量索引
type MilvusExampleIndex struct {
	cli        mclient.Client
	collection string
	vectorDim  int
}

var _ repository.ExampleIndex = (*MilvusExampleIndex)(nil)

func NewMilvusExampleIndex(cli mclient.Client, collection string, vectorDim int) *MilvusExampleIndex {
	if collection == "" {
		collection = "tool_example_vectors"
	}
	return &MilvusExampleIndex{
		cli:        cli,
		collection: collection,
		vectorDim:  vectorDim,
	}
}

func (s *MilvusExampleIndex) Upsert(ctx context.Context, examples []*entity.ToolExample) error {
	if len(examples) == 0 {
		return nil
	}

	ids := make([]string, 0, len(examples))
	vectors := make([][]float32, 0, len(examples))
	toolNames := make([]string, 0, len(examples))
	domains := make([]string, 0, len(examples))

	for _, ex := range examples {
		if len(ex.Embedding) != s.vectorDim {
			return fmt.Errorf("vector dim mismatch for example id=%d", ex.Id)
		}
		ids = append(ids, strconv.FormatInt(ex.Id, 10))
		vectors = append(vectors, ex.Embedding)
		toolNames = append(toolNames, ex.ToolName)
		domains = append(domains, ex.Domain)
	}

	_, err := s.cli.Upsert(
		ctx,
		s.collection,
		"", // partition
		mentity.NewColumnVarChar("id", ids),
		mentity.NewColumnFloatVector("vector", s.vectorDim, vectors),
		mentity.NewColumnVarChar("tool_name", toolNames),
		mentity.NewColumnVarChar("domain", domains),
	)
	return err
}

func (s *MilvusExampleIndex) Search(ctx context.Context, vector entity.Vector, topK int) ([]repository.IndexHit, error) {
	if len(vector) != s.vectorDim {
		return nil, entity.ErrDimensionMismatch
	}
	if topK <= 0 {
		topK = 5
	}

	sp, _ := mentity.NewIndexAUTOINDEXSearchParam(1)

	res, err := s.cli.Search(
		ctx,
		s.collection,
		nil,
		"",
		[]string{"id", "tool_name"},
		[]mentity.Vector{mentity.FloatVector(vector)},
		"vector",
		mentity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, err
	}

	hits := make([]repository.IndexHit, 0)
	if len(res) > 0 {
		sr := res[0]
		if sr.Err != nil {
			return nil, sr.Err
		}

		var toolCol mentity.Column
		for _, c := range sr.Fields {
			if c.Name() == "tool_name" {
				toolCol = c
			}
		}

		for i := 0; i < sr.ResultCount; i++ {
			idStr, _ := sr.IDs.GetAsString(i)
			exampleId, _ := strconv.ParseInt(idStr, 10, 64)
			hit := repository.IndexHit{
				ExampleId: exampleId,
				Score:     sr.Scores[i],
			}
			if toolCol != nil {
				v, _ := toolCol.GetAsString(i)
				hit.ToolName = v
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

func (s *MilvusExampleIndex) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	strIds := make([]string, 0, len(ids))
	for _, id := range ids {
		strIds = append(strIds, strconv.FormatInt(id, 10))
	}
	expr := fmt.Sprintf(`id in ["%s"]`, strings.Join(strIds, `","`))
	return s.cli.Delete(ctx, s.collection, "", expr)
}
