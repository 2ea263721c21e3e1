package editor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-manager/schedule-editor/internal/domain"
)

// uniqueKey 在确定性的复合键后追加时间戳和随机后缀，
// 使同一个格子中可以同时存在多条互不覆盖的修改
func uniqueKey(action domain.ChangeAction, empID int64, slot domain.Slot) string {
	return fmt.Sprintf("%s-%d-%s", domain.ChangeKey(action, empID, slot), time.Now().UnixMilli(), uuid.NewString()[:8])
}
