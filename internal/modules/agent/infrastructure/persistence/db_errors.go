package persistence

import (
	"fmt"

	"StorePilot/internal/modules/agent/domain/entity"
)

// wrapDB 把底层存储错误统一归到 entity.ErrStorage，调用方用 errors.Is 判定
func wrapDB(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", entity.ErrStorage, err)
}
