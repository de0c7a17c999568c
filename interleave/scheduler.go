// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package interleave 实现多路独立时钟流的交错调度。
//
// 调度器每次从尚未耗尽的流中选出下一单元时间戳最小的流，
// 让它生产一个单元并立即转交下游，直到所有流都耗尽。
// 下游按调用顺序收到的单元在各流之间按时间非递减排列。
package interleave

import (
	"context"
	"errors"
	"io"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/timebase"
	"github.com/cnotch/xlog"
)

// Stream 调度器驱动的生产者
type Stream interface {
	// Peek 返回下一单元的时间戳，无副作用；
	// ok 为 false 表示已超过时长上限，不会再产生单元，
	// 此时 ts 仍应报告流时钟的下一刻度，无法给出时用零值。
	Peek() (ts timebase.Timestamp, ok bool)
	// Produce 生产下一单元并推进流的时钟。
	// 返回 io.EOF（可被包装）或 nil, nil 表示流已耗尽，其他错误视为生产失败。
	Produce() (*codec.Frame, error)
}

// Reason 选择流的原因
type Reason int

// 选择原因
const (
	ReasonCompare Reason = iota // 比较时间戳后选中
	ReasonSingle                // 只剩一路流
	ReasonHorizon               // 流已到达时长上限，生产一次后退出
)

func (r Reason) String() string {
	switch r {
	case ReasonCompare:
		return "compare"
	case ReasonSingle:
		return "single"
	case ReasonHorizon:
		return "horizon"
	}
	return "unknown"
}

// Decision 一次调度决定
type Decision struct {
	Stream    int                // 选中流的序号
	Reason    Reason             // 选中原因
	Timestamp timebase.Timestamp // 选中时的下一单元时间戳，流无法报告时为零值
}

// Option 调度器选项
type Option interface {
	apply(*Scheduler)
}

type optionFunc func(*Scheduler)

func (f optionFunc) apply(s *Scheduler) { f(s) }

// WithLogger 设置日志对象，调试级别输出每次调度决定
func WithLogger(logger *xlog.Logger) Option {
	return optionFunc(func(s *Scheduler) {
		s.logger = logger
	})
}

// WithObserver 设置调度决定观察者
func WithObserver(observer func(Decision)) Option {
	return optionFunc(func(s *Scheduler) {
		s.observer = observer
	})
}

type entry struct {
	index  int
	stream Stream
}

// Scheduler 交错调度器，独占活动流集合，单线程同步运行
type Scheduler struct {
	active   []entry
	sink     codec.FrameWriter
	produced []int
	observer func(Decision)
	logger   *xlog.Logger
}

// New 创建调度器，streams 的顺序即相同时间戳时的优先级
func New(streams []Stream, sink codec.FrameWriter, options ...Option) *Scheduler {
	s := &Scheduler{
		active:   make([]entry, 0, len(streams)),
		sink:     sink,
		produced: make([]int, len(streams)),
		logger:   xlog.L(),
	}
	for i, stream := range streams {
		s.active = append(s.active, entry{index: i, stream: stream})
	}
	for _, option := range options {
		option.apply(s)
	}
	return s
}

// Run 创建调度器并运行到所有流耗尽
func Run(ctx context.Context, streams []Stream, sink codec.FrameWriter, options ...Option) error {
	return New(streams, sink, options...).Run(ctx)
}

// Active 尚未耗尽的流数量
func (s *Scheduler) Active() int {
	return len(s.active)
}

// Stats 每路流已生产的单元数量
func (s *Scheduler) Stats() []int {
	stats := make([]int, len(s.produced))
	copy(stats, s.produced)
	return stats
}

// Run 阻塞直到所有流耗尽、生产失败、下游失败或 ctx 取消。
// 已写入下游的单元不会回滚。
func (s *Scheduler) Run(ctx context.Context) error {
	for len(s.active) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		pos, d, horizon := s.selectNext()
		if s.observer != nil {
			s.observer(d)
		}
		if s.logger != nil && s.logger.LevelEnabled(xlog.DebugLevel) {
			s.logger.Debugf("interleave: select stream #%d (%s) at %s", d.Stream, d.Reason, d.Timestamp)
		}

		e := s.active[pos]
		frame, err := e.stream.Produce()
		if err != nil && !errors.Is(err, io.EOF) {
			return &ProductionError{Stream: e.index, Err: err}
		}
		if err == nil && frame != nil {
			s.produced[e.index]++
			if err = s.sink.WriteFrame(frame); err != nil {
				return &SinkError{Stream: e.index, Err: err}
			}
			if !horizon {
				continue
			}
		}

		// 耗尽或已过上限：只给一次生产机会
		s.active = append(s.active[:pos], s.active[pos+1:]...)
		if s.logger != nil {
			s.logger.Debugf("interleave: stream #%d exhausted after %d units", e.index, s.produced[e.index])
		}
	}
	return nil
}

// selectNext 选择下一路要生产的流，返回其在活动集合中的位置；
// horizon 表示选中的流已超过时长上限
func (s *Scheduler) selectNext() (pos int, d Decision, horizon bool) {
	if len(s.active) == 1 {
		ts, ok := s.active[0].stream.Peek()
		return 0, Decision{Stream: s.active[0].index, Reason: ReasonSingle, Timestamp: ts}, !ok
	}

	best := -1
	var bestTs timebase.Timestamp
	bestOk := true
	for i, e := range s.active {
		ts, ok := e.stream.Peek()
		if !ok && !ts.Base.Valid() {
			// 已过上限且报告不出时钟，无从比较，直接让它退出
			return i, Decision{Stream: e.index, Reason: ReasonHorizon}, true
		}
		// 严格小于才替换，相同时间戳时保留列表中靠前的流
		if best < 0 || ts.Before(bestTs) {
			best, bestTs, bestOk = i, ts, ok
		}
	}
	reason := ReasonCompare
	if !bestOk {
		reason = ReasonHorizon
	}
	return best, Decision{Stream: s.active[best].index, Reason: reason, Timestamp: bestTs}, !bestOk
}
