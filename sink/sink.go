// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sink 提供调度器输出单元的各种消费者：
// 丢弃、分发、计数、日志和异步队列写入。
package sink

import (
	"errors"
	"io"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/stats"
)

// ErrClosed 向已关闭的 sink 写入
var ErrClosed = errors.New("sink: write to closed sink")

// Discard 只丢弃单元
var Discard codec.FrameWriteCloser = discard{}

type discard struct{}

func (discard) WriteFrame(*codec.Frame) error { return nil }
func (discard) Close() error                  { return nil }

// NopCloser 为 FrameWriter 增加空的 Close
func NopCloser(w codec.FrameWriter) codec.FrameWriteCloser {
	if wc, ok := w.(codec.FrameWriteCloser); ok {
		return wc
	}
	return nopCloser{w}
}

type nopCloser struct {
	codec.FrameWriter
}

func (nopCloser) Close() error { return nil }

type tee struct {
	writers []codec.FrameWriter
}

// Tee 按顺序把每个单元写入所有 writers，遇到第一个错误即返回。
// Close 关闭所有实现了 io.Closer 的 writers，返回第一个错误。
func Tee(writers ...codec.FrameWriter) codec.FrameWriteCloser {
	all := make([]codec.FrameWriter, 0, len(writers))
	for _, w := range writers {
		if t, ok := w.(*tee); ok {
			all = append(all, t.writers...)
		} else if w != nil {
			all = append(all, w)
		}
	}
	return &tee{all}
}

func (t *tee) WriteFrame(frame *codec.Frame) error {
	for _, w := range t.writers {
		if err := w.WriteFrame(frame); err != nil {
			return err
		}
	}
	return nil
}

func (t *tee) Close() (err error) {
	for _, w := range t.writers {
		if c, ok := w.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
	}
	return
}

type counting struct {
	codec.FrameWriter
	flows *stats.StreamFlows
}

// Counting 写入成功后按流累计单元数和字节数
func Counting(w codec.FrameWriter, flows *stats.StreamFlows) codec.FrameWriteCloser {
	return &counting{FrameWriter: w, flows: flows}
}

func (c *counting) WriteFrame(frame *codec.Frame) error {
	if err := c.FrameWriter.WriteFrame(frame); err != nil {
		return err
	}
	c.flows.Add(frame.Stream, int64(frame.Size()))
	return nil
}

func (c *counting) Close() error {
	if closer, ok := c.FrameWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
