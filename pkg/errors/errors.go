package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrDuplicateKey 唯一约束冲突：同一记录已存在
// Repository 层将数据库 23505 错误归一化为该值，
// 供 Service 层区分"并发重复写入"与一般存储故障。
var ErrDuplicateKey = errors.New("记录已存在，请勿重复提交")
