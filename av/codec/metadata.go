// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package codec

import "github.com/cnotch/avmux/av/timebase"

// 未压缩的编码名称
const (
	CodecI420     = "I420"      // 平面 YUV 4:2:0
	CodecPCMS16LE = "PCM_S16LE" // 16 位小端交错 PCM
	CodecPCMS16BE = "PCM_S16BE" // 16 位大端交错 PCM（RTP L16）
)

// VideoMeta 视频元数据
type VideoMeta struct {
	Codec     string            `json:"codec"`
	Width     int               `json:"width,omitempty"`
	Height    int               `json:"height,omitempty"`
	FrameRate float64           `json:"framerate,omitempty"`
	DataRate  float64           `json:"datarate,omitempty"` // kbit/s
	TimeBase  timebase.Rational `json:"timebase"`
}

// FrameSize 一帧 I420 图像的字节数
func (m *VideoMeta) FrameSize() int {
	return m.Width*m.Height + 2*((m.Width/2)*(m.Height/2))
}

// AudioMeta 音频元数据
type AudioMeta struct {
	Codec      string            `json:"codec"`
	SampleRate int               `json:"samplerate,omitempty"`
	SampleSize int               `json:"samplesize,omitempty"` // bits
	Channels   int               `json:"channels,omitempty"`
	FrameSize  int               `json:"framesize,omitempty"` // samples per frame
	DataRate   float64           `json:"datarate,omitempty"`  // kbit/s
	TimeBase   timebase.Rational `json:"timebase"`
}

// BytesPerSample 每个采样（所有声道）的字节数
func (m *AudioMeta) BytesPerSample() int {
	return m.SampleSize / 8 * m.Channels
}
