// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sink

import (
	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/timebase"
	"github.com/cnotch/xlog"
)

// PacketLogger 每个单元输出一行时间信息
type PacketLogger struct {
	logger *xlog.Logger
}

// NewPacketLogger .
func NewPacketLogger(logger *xlog.Logger) *PacketLogger {
	return &PacketLogger{logger: logger}
}

// WriteFrame logs pts, dts and duration of the frame in ticks and seconds.
func (l *PacketLogger) WriteFrame(frame *codec.Frame) error {
	l.logger.Infof("pts:%d pts_time:%s dts:%d dts_time:%s duration:%d duration_time:%s stream_index:%d",
		frame.Pts, timebase.At(frame.Pts, frame.TimeBase),
		frame.Dts, timebase.At(frame.Dts, frame.TimeBase),
		frame.Duration, timebase.At(frame.Duration, frame.TimeBase),
		frame.Stream)
	return nil
}
