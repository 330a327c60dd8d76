package embedding

import (
	"context"
	"fmt"

	"StorePilot/internal/modules/agent/domain/entity"

	"github.com/cloudwego/eino/components/embedding"
)

// EmbedQuery 对单条文本做嵌入并校验维度
func EmbedQuery(ctx context.Context, embedder embedding.Embedder, text string, wantDim int) (entity.Vector, error) {
	vecs, err := embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one text", len(vecs))
	}
	if wantDim > 0 && len(vecs[0]) != wantDim {
		return nil, entity.ErrDimensionMismatch
	}
	out := make(entity.Vector, len(vecs[0]))
	for i, v := range vecs[0] {
		out[i] = float32(v)
	}
	return out, nil
}
