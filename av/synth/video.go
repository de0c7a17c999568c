// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synth

import (
	"io"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/timebase"
)

// VideoOptions 视频源参数
type VideoOptions struct {
	Width     int                // 宽度
	Height    int                // 高度
	FrameRate int                // 帧率，时间基为 1/FrameRate
	GopSize   int                // 关键帧间隔
	Horizon   timebase.Timestamp // 时长上限
	Stream    int                // 流序号
}

func (o *VideoOptions) fill() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.FrameRate == 0 {
		o.FrameRate = DefaultFrameRate
	}
	if o.GopSize == 0 {
		o.GopSize = DefaultGopSize
	}
	if o.Horizon.Base == (timebase.Rational{}) {
		o.Horizon = Horizon(DefaultDuration)
	}
}

// Validate checks the options after defaults are applied.
func (o *VideoOptions) Validate() error {
	if o.Width <= 0 || o.Height <= 0 || o.Width%2 != 0 || o.Height%2 != 0 {
		return ErrInvalidSize
	}
	if o.FrameRate <= 0 || o.GopSize <= 0 {
		return ErrInvalidRate
	}
	if !o.Horizon.Base.Valid() {
		return ErrInvalidHorizon
	}
	return nil
}

// VideoSource 生成 YUV420P 测试图像的视频流
type VideoSource struct {
	opts    VideoOptions
	meta    codec.VideoMeta
	base    timebase.Rational
	nextPts int64
}

// NewVideoSource 创建视频源，未设置的参数使用默认值
func NewVideoSource(opts VideoOptions) (*VideoSource, error) {
	opts.fill()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	base := timebase.Rate(opts.FrameRate)
	v := &VideoSource{
		opts: opts,
		base: base,
		meta: codec.VideoMeta{
			Codec:     codec.CodecI420,
			Width:     opts.Width,
			Height:    opts.Height,
			FrameRate: float64(opts.FrameRate),
			TimeBase:  base,
		},
	}
	v.meta.DataRate = float64(v.meta.FrameSize()*8*opts.FrameRate) / 1000
	return v, nil
}

// Meta 视频元数据
func (v *VideoSource) Meta() *codec.VideoMeta {
	return &v.meta
}

// Peek 下一帧的时间戳，超过时长上限后 ok 为 false
func (v *VideoSource) Peek() (timebase.Timestamp, bool) {
	ts := timebase.At(v.nextPts, v.base)
	return ts, !beyond(v.nextPts, v.base, v.opts.Horizon)
}

// Produce 生成下一帧
func (v *VideoSource) Produce() (*codec.Frame, error) {
	if beyond(v.nextPts, v.base, v.opts.Horizon) {
		return nil, io.EOF
	}

	payload := make([]byte, v.meta.FrameSize())
	FillYUVImage(payload, int(v.nextPts), v.opts.Width, v.opts.Height)

	frame := &codec.Frame{
		MediaType: codec.MediaTypeVideo,
		Stream:    v.opts.Stream,
		Pts:       v.nextPts,
		Dts:       v.nextPts,
		Duration:  1,
		TimeBase:  v.base,
		Key:       v.nextPts%int64(v.opts.GopSize) == 0,
		Payload:   payload,
	}
	v.nextPts++
	return frame, nil
}

// FillYUVImage 在 I420 缓冲区 pict 中绘制第 frameIndex 帧的测试图像。
// 像素值按 byte 截断回绕。
func FillYUVImage(pict []byte, frameIndex, width, height int) {
	i := frameIndex
	lumaSize := width * height
	chromaWidth, chromaHeight := width/2, height/2
	cb := pict[lumaSize : lumaSize+chromaWidth*chromaHeight]
	cr := pict[lumaSize+chromaWidth*chromaHeight:]

	// Y
	for y := 0; y < height; y++ {
		row := pict[y*width : (y+1)*width]
		for x := range row {
			row[x] = byte(x + y + i*3)
		}
	}

	// Cb and Cr
	for y := 0; y < chromaHeight; y++ {
		for x := 0; x < chromaWidth; x++ {
			cb[y*chromaWidth+x] = byte(128 + y + i*2)
			cr[y*chromaWidth+x] = byte(64 + x + i*5)
		}
	}
}
