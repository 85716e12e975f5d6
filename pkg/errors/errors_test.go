package errors

import (
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("查询: %w", gorm.ErrRecordNotFound)) {
		t.Error("包装后的 ErrRecordNotFound 应识别为不存在")
	}
	if IsNotFound(gorm.ErrDuplicatedKey) {
		t.Error("ErrDuplicatedKey 不应识别为不存在")
	}
}

func TestIsDuplicate(t *testing.T) {
	if !IsDuplicate(fmt.Errorf("插入: %w", gorm.ErrDuplicatedKey)) {
		t.Error("包装后的 ErrDuplicatedKey 应识别为唯一冲突")
	}
	if IsDuplicate(nil) {
		t.Error("nil 不应识别为唯一冲突")
	}
}
