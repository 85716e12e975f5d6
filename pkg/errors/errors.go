package errors

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFound 记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate 唯一约束冲突（需开启 gorm.Config.TranslateError）
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
