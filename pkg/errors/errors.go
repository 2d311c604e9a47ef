// Package errors 定义跨层共享的哨兵错误。
// 各 service 自己的业务错误就近声明，这里只放仓储层向上抛出的通用错误。
package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
