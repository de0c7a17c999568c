// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package synth 生成合成的音视频流：YUV420P 测试图像和正弦扫频音频。
// 两种源都实现 interleave.Stream，按自己的时间基推进时钟，
// 超过时长上限后 Produce 返回 io.EOF。
package synth

import (
	"errors"

	"github.com/cnotch/avmux/av/timebase"
)

// 默认参数
const (
	DefaultDuration   = 10   // 秒
	DefaultFrameRate  = 25   // 帧率
	DefaultWidth      = 352  // 宽度，必须是偶数
	DefaultHeight     = 288  // 高度，必须是偶数
	DefaultGopSize    = 12   // 最多 12 帧一个关键帧
	DefaultSampleRate = 44100
	DefaultChannels   = 2
	DefaultFrameSize  = 1024 // 每个音频帧的采样数
	DefaultFrequency  = 110.0
)

// 参数错误
var (
	ErrInvalidSize     = errors.New("synth: width and height must be positive and even")
	ErrInvalidRate     = errors.New("synth: rate must be positive")
	ErrInvalidChannels = errors.New("synth: channels must be between 1 and 8")
	ErrInvalidHorizon  = errors.New("synth: horizon time base must be positive")
)

// Horizon 流的时长上限
func Horizon(seconds int64) timebase.Timestamp {
	return timebase.At(seconds, timebase.Second)
}

// beyond 判断 pts 是否已超过上限；恰好等于上限的单元仍然输出
func beyond(pts int64, base timebase.Rational, horizon timebase.Timestamp) bool {
	return timebase.Compare(pts, base, horizon.Value, horizon.Base) > 0
}
