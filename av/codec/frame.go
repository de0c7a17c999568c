// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cnotch/avmux/av/timebase"
)

// MediaType 媒体类型
type MediaType int

// 媒体类型常量
const (
	MediaTypeUnknown MediaType = iota - 1 // Usually treated as MediaTypeData
	MediaTypeVideo
	MediaTypeAudio
	MediaTypeData // Opaque data information usually continuous
	MediaTypeSubtitle
	MediaTypeAttachment // Opaque data information usually sparse
	MediaTypeNB
)

// String returns a lower-case ASCII representation of the media type.
func (mt MediaType) String() string {
	switch mt {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeData:
		return "data"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeAttachment:
		return "attachment"
	default:
		return ""
	}
}

// MarshalText marshals the MediaType to text.
func (mt MediaType) MarshalText() ([]byte, error) {
	return []byte(mt.String()), nil
}

// UnmarshalText unmarshals text to a MediaType.
func (mt *MediaType) UnmarshalText(text []byte) error {
	if !mt.unmarshalText(string(text)) {
		return fmt.Errorf("unrecognized media type: %q", text)
	}
	return nil
}

func (mt *MediaType) unmarshalText(text string) bool {
	switch strings.ToLower(text) {
	case "video":
		*mt = MediaTypeVideo
	case "audio":
		*mt = MediaTypeAudio
	case "data":
		*mt = MediaTypeData
	case "subtitle":
		*mt = MediaTypeSubtitle
	case "attachment":
		*mt = MediaTypeAttachment
	default:
		return false
	}
	return true
}

// Frame 音视频完整帧（调度器输出的单元）
type Frame struct {
	MediaType                   // 媒体类型
	Stream    int               // 所属流在调度列表中的序号
	Dts       int64             // DTS，单位为 TimeBase
	Pts       int64             // PTS，单位为 TimeBase
	Duration  int64             // 时长，单位为 TimeBase
	TimeBase  timebase.Rational // 时间基
	Key       bool              // 是否关键帧
	Payload   []byte            // 媒体数据载荷
}

// Size 载荷大小
func (frame *Frame) Size() int {
	return len(frame.Payload)
}

// Timestamp 帧的显示时间戳
func (frame *Frame) Timestamp() timebase.Timestamp {
	return timebase.At(frame.Pts, frame.TimeBase)
}

// Time 帧的显示时间
func (frame *Frame) Time() time.Duration {
	return frame.Timestamp().Duration()
}

// End 帧结束时间戳（Pts+Duration）
func (frame *Frame) End() timebase.Timestamp {
	return timebase.At(frame.Pts+frame.Duration, frame.TimeBase)
}

// FrameWriter 包装 WriteFrame 方法的接口
type FrameWriter interface {
	WriteFrame(frame *Frame) error
}

// FrameWriteCloser 可关闭的 FrameWriter，Close 时写入容器尾
type FrameWriteCloser interface {
	FrameWriter
	io.Closer
}

// FrameWriterFunc 函数形式的 FrameWriter
type FrameWriterFunc func(frame *Frame) error

// WriteFrame calls f(frame).
func (f FrameWriterFunc) WriteFrame(frame *Frame) error {
	return f(frame)
}
