package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "examples.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSeedFromFile(t *testing.T) {
	repo := newFakeExampleRepo()
	seeder := NewSeederService(repo, nil, newFakeEmbedder(), testConfig())

	path := writeSeedFile(t, `
[[example]]
tool = "get_orders"
query = "show me today's orders"

[[example]]
tool = "issue_refund"
query = "refund order 1001"

[[example]]
tool = "unknown_tool"
query = "this one is skipped"
`)

	count, err := seeder.SeedFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, repo.examples, 2)
	assert.Equal(t, "orders", repo.examples[0].Domain)
	assert.False(t, repo.examples[0].IsLearned)
	assert.NotEmpty(t, repo.examples[0].Embedding)
}

func TestSeedFromFilePreservesLearned(t *testing.T) {
	repo := newFakeExampleRepo()
	router := NewToolRouterService(repo, nil, newFakeEmbedder(), testConfig())
	seeder := NewSeederService(repo, nil, newFakeEmbedder(), testConfig())

	path := writeSeedFile(t, `
[[example]]
tool = "get_orders"
query = "seeded query"
`)

	_, err := seeder.SeedFromFile(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, router.ConfirmMatch(context.Background(), "issue_refund", "learned query", 0, nil))

	// 重播只清掉预置示例，学习来的保留
	count, err := seeder.SeedFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	learned, err := repo.FindByToolAndQuery(context.Background(), "issue_refund", "learned query")
	require.NoError(t, err)
	require.NotNil(t, learned)
	assert.True(t, learned.IsLearned)

	stats, err := seeder.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats["orders"])
	assert.EqualValues(t, 1, stats["finance"])
}

func TestSeedFromFileMissing(t *testing.T) {
	seeder := NewSeederService(newFakeExampleRepo(), nil, newFakeEmbedder(), testConfig())
	_, err := seeder.SeedFromFile(context.Background(), "does/not/exist.toml")
	assert.Error(t, err)
}
