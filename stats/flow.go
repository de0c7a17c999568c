// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"sync/atomic"
)

// FlowSample 流统计采样
type FlowSample struct {
	Frames int64 `json:"frames"` // 单元数量
	Bytes  int64 `json:"bytes"`  // 载荷字节数
}

// Flow 流统计接口，可被进度任务并发读取
type Flow interface {
	Add(size int64)        // 增加一个单元
	GetSample() FlowSample // 获取当前时点采样
}

func (fs *FlowSample) clone() FlowSample {
	return FlowSample{
		Frames: atomic.LoadInt64(&fs.Frames),
		Bytes:  atomic.LoadInt64(&fs.Bytes),
	}
}

// Add 采样累加
func (fs *FlowSample) Add(f FlowSample) {
	fs.Frames = fs.Frames + f.Frames
	fs.Bytes = fs.Bytes + f.Bytes
}

type flow struct {
	sample FlowSample
}

// NewFlow 创建流量统计
func NewFlow() Flow {
	return &flow{}
}

func (r *flow) Add(size int64) {
	atomic.AddInt64(&r.sample.Frames, 1)
	atomic.AddInt64(&r.sample.Bytes, size)
}

func (r *flow) GetSample() FlowSample {
	return r.sample.clone()
}

type childFlow struct {
	parent Flow
	sample FlowSample
}

// NewChildFlow 创建子流量计数，它会把自己的计数Add到parent上
func NewChildFlow(parent Flow) Flow {
	return &childFlow{
		parent: parent,
	}
}

func (r *childFlow) Add(size int64) {
	atomic.AddInt64(&r.sample.Frames, 1)
	atomic.AddInt64(&r.sample.Bytes, size)
	r.parent.Add(size)
}

func (r *childFlow) GetSample() FlowSample {
	return r.sample.clone()
}

// StreamFlows 每路流一个子计数，汇总到 Total
type StreamFlows struct {
	Total   Flow
	Streams []Flow
}

// NewStreamFlows 创建 n 路流的计数
func NewStreamFlows(n int) *StreamFlows {
	total := NewFlow()
	sf := &StreamFlows{
		Total:   total,
		Streams: make([]Flow, n),
	}
	for i := range sf.Streams {
		sf.Streams[i] = NewChildFlow(total)
	}
	return sf
}

// Add 记录流 stream 的一个单元，超出范围的流只计入总数
func (sf *StreamFlows) Add(stream int, size int64) {
	if stream >= 0 && stream < len(sf.Streams) {
		sf.Streams[stream].Add(size)
		return
	}
	sf.Total.Add(size)
}

// Samples 各路流的采样
func (sf *StreamFlows) Samples() []FlowSample {
	samples := make([]FlowSample, len(sf.Streams))
	for i, f := range sf.Streams {
		samples[i] = f.GetSample()
	}
	return samples
}
