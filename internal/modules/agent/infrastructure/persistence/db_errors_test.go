package persistence

import (
	"errors"
	"testing"

	"StorePilot/internal/modules/agent/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestWrapDB(t *testing.T) {
	assert.NoError(t, wrapDB(nil))

	wrapped := wrapDB(errors.New("connection reset"))
	assert.ErrorIs(t, wrapped, entity.ErrStorage)
	assert.Contains(t, wrapped.Error(), "connection reset")
}
