// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synth

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/timebase"
)

// 正弦波幅度
const amplitude = 10000

// AudioOptions 音频源参数
type AudioOptions struct {
	SampleRate int                // 采样率，时间基为 1/SampleRate
	Channels   int                // 声道数
	FrameSize  int                // 每帧采样数
	Frequency  float64            // 起始频率 Hz
	Horizon    timebase.Timestamp // 时长上限
	Stream     int                // 流序号
}

func (o *AudioOptions) fill() {
	if o.SampleRate == 0 {
		o.SampleRate = DefaultSampleRate
	}
	if o.Channels == 0 {
		o.Channels = DefaultChannels
	}
	if o.FrameSize == 0 {
		o.FrameSize = DefaultFrameSize
	}
	if o.Frequency == 0 {
		o.Frequency = DefaultFrequency
	}
	if o.Horizon.Base == (timebase.Rational{}) {
		o.Horizon = Horizon(DefaultDuration)
	}
}

// Validate checks the options after defaults are applied.
func (o *AudioOptions) Validate() error {
	if o.SampleRate <= 0 || o.FrameSize <= 0 || o.Frequency <= 0 {
		return ErrInvalidRate
	}
	if o.Channels <= 0 || o.Channels > 8 {
		return ErrInvalidChannels
	}
	if !o.Horizon.Base.Valid() {
		return ErrInvalidHorizon
	}
	return nil
}

// AudioSource 生成 16 位正弦扫频音频的音频流
type AudioSource struct {
	opts    AudioOptions
	meta    codec.AudioMeta
	base    timebase.Rational
	nextPts int64
	t       float64
	tincr   float64
	tincr2  float64
}

// NewAudioSource 创建音频源，未设置的参数使用默认值
func NewAudioSource(opts AudioOptions) (*AudioSource, error) {
	opts.fill()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	base := timebase.Rate(opts.SampleRate)
	sr := float64(opts.SampleRate)
	tincr := 2 * math.Pi * opts.Frequency / sr
	return &AudioSource{
		opts:   opts,
		base:   base,
		tincr:  tincr,
		tincr2: tincr / sr, // 每秒频率增加 Frequency Hz
		meta: codec.AudioMeta{
			Codec:      codec.CodecPCMS16LE,
			SampleRate: opts.SampleRate,
			SampleSize: 16,
			Channels:   opts.Channels,
			FrameSize:  opts.FrameSize,
			DataRate:   float64(opts.SampleRate*16*opts.Channels) / 1000,
			TimeBase:   base,
		},
	}, nil
}

// Meta 音频元数据
func (a *AudioSource) Meta() *codec.AudioMeta {
	return &a.meta
}

// Peek 下一帧的时间戳，超过时长上限后 ok 为 false
func (a *AudioSource) Peek() (timebase.Timestamp, bool) {
	ts := timebase.At(a.nextPts, a.base)
	return ts, !beyond(a.nextPts, a.base, a.opts.Horizon)
}

// Produce 生成下一帧交错的 s16le 采样
func (a *AudioSource) Produce() (*codec.Frame, error) {
	if beyond(a.nextPts, a.base, a.opts.Horizon) {
		return nil, io.EOF
	}

	channels := a.opts.Channels
	payload := make([]byte, a.opts.FrameSize*channels*2)
	for j := 0; j < a.opts.FrameSize; j++ {
		v := uint16(int16(math.Sin(a.t) * amplitude))
		for i := 0; i < channels; i++ {
			binary.LittleEndian.PutUint16(payload[(j*channels+i)*2:], v)
		}
		a.t += a.tincr
		a.tincr += a.tincr2
	}

	frame := &codec.Frame{
		MediaType: codec.MediaTypeAudio,
		Stream:    a.opts.Stream,
		Pts:       a.nextPts,
		Dts:       a.nextPts,
		Duration:  int64(a.opts.FrameSize),
		TimeBase:  a.base,
		Key:       true,
		Payload:   payload,
	}
	a.nextPts += int64(a.opts.FrameSize)
	return frame, nil
}
