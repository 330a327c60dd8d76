package notify

import (
	"testing"
	"time"

	"StorePilot/internal/modules/agent/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAction() *entity.PendingAction {
	return &entity.PendingAction{
		ActionUuid:    "a1b2c3",
		ToolName:      "issue_refund",
		ArgumentsJson: `{"order_id":"1001"}`,
		Summary:       "退款",
		RequesterId:   "admin-1",
		Status:        entity.ActionStatusPending,
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

func TestBuildApprovalBlocks(t *testing.T) {
	blocks := BuildApprovalBlocks(sampleAction())
	require.Len(t, blocks, 3)

	actions := blocks[2]
	assert.Equal(t, "actions", actions["type"])
	elements, ok := actions["elements"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, elements, 2)

	assert.Equal(t, ApproveActionPrefix+"a1b2c3", elements[0]["action_id"])
	assert.Equal(t, RejectActionPrefix+"a1b2c3", elements[1]["action_id"])
	assert.Equal(t, "a1b2c3", elements[0]["value"])
}

func TestBuildResolvedBlocksHasNoButtons(t *testing.T) {
	action := sampleAction()
	action.Status = entity.ActionStatusExecuted
	action.ResolvedBy = "reviewer-1"

	blocks := BuildResolvedBlocks(action)
	for _, b := range blocks {
		assert.NotEqual(t, "actions", b["type"])
	}
}

func TestSplitExternalRef(t *testing.T) {
	channel, ts, ok := SplitExternalRef("C042:1700000000.123456")
	require.True(t, ok)
	assert.Equal(t, "C042", channel)
	assert.Equal(t, "1700000000.123456", ts)

	_, _, ok = SplitExternalRef("noseparator")
	assert.False(t, ok)
	_, _, ok = SplitExternalRef(":ts")
	assert.False(t, ok)
	_, _, ok = SplitExternalRef("channel:")
	assert.False(t, ok)
}
