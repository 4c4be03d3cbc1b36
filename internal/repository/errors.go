package repository

import "errors"

// ErrRecordNotFound 引用的记录不存在
var ErrRecordNotFound = errors.New("record not found")
