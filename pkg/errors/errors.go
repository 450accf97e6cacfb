package errors

import "errors"

// ErrNotFound 键值存储中不存在指定键
var ErrNotFound = errors.New("记录不存在")

// ErrSyncInProgress 已有一次网络校时正在进行
var ErrSyncInProgress = errors.New("时间同步进行中，请稍后再试")
