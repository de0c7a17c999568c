// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synth

import (
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/timebase"
	"github.com/cnotch/avmux/interleave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoSource(t *testing.T) {
	v, err := NewVideoSource(VideoOptions{})
	require.NoError(t, err)
	assert.Equal(t, timebase.Rate(25), v.Meta().TimeBase)
	assert.Equal(t, 352*288*3/2, v.Meta().FrameSize())

	count := 0
	for {
		ts, ok := v.Peek()
		frame, err := v.Produce()
		if err == io.EOF {
			assert.False(t, ok)
			break
		}
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, ts.Value, frame.Pts)
		assert.Equal(t, codec.MediaTypeVideo, frame.MediaType)
		assert.Equal(t, frame.Pts%12 == 0, frame.Key)
		count++
	}
	// 0..250, the frame exactly at 10s is still produced
	assert.Equal(t, 251, count)

	_, err = v.Produce()
	assert.Equal(t, io.EOF, err, "stays exhausted")

	// 过上限后仍报告时钟的下一刻度
	ts, ok := v.Peek()
	assert.False(t, ok)
	assert.Equal(t, timebase.At(251, timebase.Rate(25)), ts)
}

func TestFillYUVImage(t *testing.T) {
	const w, h = 4, 2
	pict := make([]byte, w*h*3/2)

	FillYUVImage(pict, 3, w, h)
	assert.Equal(t, byte(1+1+9), pict[1*w+1])
	assert.Equal(t, byte(128+0+6), pict[w*h])
	assert.Equal(t, byte(64+1+15), pict[w*h+2+1])

	FillYUVImage(pict, 100, w, h)
	assert.Equal(t, byte(300%256), pict[0])
}

func TestAudioSource(t *testing.T) {
	a, err := NewAudioSource(AudioOptions{})
	require.NoError(t, err)
	meta := a.Meta()
	assert.Equal(t, timebase.Rate(44100), meta.TimeBase)
	assert.Equal(t, 4, meta.BytesPerSample())

	first, err := a.Produce()
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.Pts)
	assert.Equal(t, int64(1024), first.Duration)
	require.Len(t, first.Payload, 1024*2*2)

	s0 := int16(binary.LittleEndian.Uint16(first.Payload[0:]))
	s1l := int16(binary.LittleEndian.Uint16(first.Payload[4:]))
	s1r := int16(binary.LittleEndian.Uint16(first.Payload[6:]))
	assert.Equal(t, int16(0), s0)
	assert.Equal(t, int16(156), s1l)
	assert.Equal(t, s1l, s1r, "channels carry the same sample")

	count := 1
	for {
		frame, err := a.Produce()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, int64(count*1024), frame.Pts)
		count++
	}
	// pts <= 441000
	assert.Equal(t, 431, count)
	_, ok := a.Peek()
	assert.False(t, ok)
}

func TestInvalidOptions(t *testing.T) {
	_, err := NewVideoSource(VideoOptions{Width: 351})
	assert.Equal(t, ErrInvalidSize, err)
	_, err = NewVideoSource(VideoOptions{FrameRate: -1})
	assert.Equal(t, ErrInvalidRate, err)
	_, err = NewAudioSource(AudioOptions{Channels: 9})
	assert.Equal(t, ErrInvalidChannels, err)
	_, err = NewAudioSource(AudioOptions{Horizon: timebase.At(1, timebase.Rational{Num: 0, Den: 1})})
	assert.Equal(t, ErrInvalidHorizon, err)
}

func TestInterleaveSources(t *testing.T) {
	v, err := NewVideoSource(VideoOptions{Horizon: Horizon(2), Stream: 0})
	require.NoError(t, err)
	a, err := NewAudioSource(AudioOptions{Horizon: Horizon(2), Stream: 1})
	require.NoError(t, err)

	var frames []*codec.Frame
	sink := codec.FrameWriterFunc(func(frame *codec.Frame) error {
		frames = append(frames, frame)
		return nil
	})
	require.NoError(t, interleave.Run(context.Background(), []interleave.Stream{v, a}, sink))

	videos, audios := 0, 0
	for i, frame := range frames {
		if frame.Stream == 0 {
			videos++
		} else {
			audios++
		}
		if i > 0 {
			assert.LessOrEqual(t, frames[i-1].Timestamp().Compare(frame.Timestamp()), 0)
		}
	}
	assert.Equal(t, 51, videos)
	assert.Equal(t, 87, audios) // 1024*86 = 88064 <= 88200
	assert.Equal(t, 0, frames[0].Stream, "video wins the tie at 0")
}
