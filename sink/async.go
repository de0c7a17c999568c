// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

import (
	"io"
	"runtime/debug"
	"sync"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/queue"
	"github.com/cnotch/xlog"
)

// 关闭标记，排在所有已提交单元之后
type closeMark struct{}

// Async 把写入放到独立 goroutine 中完成。
// 只有一个消费者，单元写入下游的顺序与提交顺序一致。
type Async struct {
	w         codec.FrameWriter
	recvQueue *queue.SyncQueue
	done      chan struct{}
	mu        sync.Mutex
	err       error // 下游第一次写入错误
	closed    bool
	logger    *xlog.Logger
}

// NewAsync 创建异步 sink，Close 时等待队列写完再关闭 w
func NewAsync(w codec.FrameWriter, logger *xlog.Logger) *Async {
	a := &Async{
		w:         w,
		recvQueue: queue.NewSyncQueue(),
		done:      make(chan struct{}),
		logger:    logger,
	}
	go a.process()
	return a
}

// WriteFrame 提交单元；下游已出错时立即返回该错误
func (a *Async) WriteFrame(frame *codec.Frame) error {
	a.mu.Lock()
	closed, err := a.closed, a.err
	a.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if err != nil {
		return err
	}
	a.recvQueue.Push(frame)
	return nil
}

// Close 等待已提交的单元写完，然后关闭下游
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	a.recvQueue.Push(closeMark{})
	<-a.done

	err := a.Err()
	if c, ok := a.w.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Err 下游第一次写入错误
func (a *Async) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Async) setErr(err error) {
	a.mu.Lock()
	if a.err == nil {
		a.err = err
	}
	a.mu.Unlock()
}

func (a *Async) process() {
	defer func() {
		defer func() { // 避免 handler 再 panic
			recover()
		}()

		if r := recover(); r != nil {
			a.logger.Errorf("async sink routine panic；r = %v \n %s", r, debug.Stack())
			a.setErr(ErrClosed)
		}

		close(a.done)
		// 尽早通知GC，回收内存
		a.recvQueue.Reset()
	}()

	failed := false
	for {
		f := a.recvQueue.Pop()
		if f == nil {
			continue
		}
		if _, ok := f.(closeMark); ok {
			return
		}

		if failed { // 出错后丢弃剩余单元
			continue
		}
		if err := a.w.WriteFrame(f.(*codec.Frame)); err != nil {
			a.logger.Errorf("async sink: write frame error - %s", err.Error())
			a.setErr(err)
			failed = true
		}
	}
}
