// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package interleave

import (
	"fmt"
)

// ProductionError 流生产单元失败（非正常耗尽），调度立即终止
type ProductionError struct {
	Stream int   // 出错流的序号
	Err    error // 生产者返回的错误
}

func (e *ProductionError) Error() string {
	return fmt.Sprintf("interleave: stream #%d production failed: %v", e.Stream, e.Err)
}

// Unwrap returns the producer's error.
func (e *ProductionError) Unwrap() error { return e.Err }

// SinkError 下游写入单元失败，调度立即终止
type SinkError struct {
	Stream int
	Err    error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("interleave: forward unit of stream #%d failed: %v", e.Stream, e.Err)
}

// Unwrap returns the sink's error.
func (e *SinkError) Unwrap() error { return e.Err }
