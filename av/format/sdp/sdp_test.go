// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sdp

import (
	"strings"
	"testing"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/timebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndParse(t *testing.T) {
	video := &codec.VideoMeta{Codec: codec.CodecI420, Width: 352, Height: 288, FrameRate: 25, DataRate: 30412}
	audio := &codec.AudioMeta{Codec: codec.CodecPCMS16LE, SampleRate: 44100, SampleSize: 16, Channels: 2, DataRate: 1411}

	var b strings.Builder
	require.NoError(t, Write(&b, "avmux",
		video, Track{PayloadType: 96, ClockRate: 90000, Control: "streamid=0"},
		audio, Track{PayloadType: 97, ClockRate: 44100, Control: "streamid=1"}))
	raw := b.String()
	assert.Contains(t, raw, "a=rtpmap:96 raw/90000\r\n")
	assert.Contains(t, raw, "a=rtpmap:97 L16/44100/2\r\n")

	var v codec.VideoMeta
	var a codec.AudioMeta
	require.NoError(t, ParseMetadata(raw, &v, &a))

	assert.Equal(t, codec.CodecI420, v.Codec)
	assert.Equal(t, 352, v.Width)
	assert.Equal(t, 288, v.Height)
	assert.Equal(t, float64(25), v.FrameRate)
	assert.Equal(t, float64(30412), v.DataRate)
	assert.Equal(t, timebase.MPEG, v.TimeBase)

	assert.Equal(t, codec.CodecPCMS16BE, a.Codec)
	assert.Equal(t, 44100, a.SampleRate)
	assert.Equal(t, 2, a.Channels)
	assert.Equal(t, 16, a.SampleSize)
	assert.Equal(t, timebase.Rate(44100), a.TimeBase)
}

func TestWriteAudioOnly(t *testing.T) {
	audio := &codec.AudioMeta{Channels: 1}
	var b strings.Builder
	require.NoError(t, Write(&b, "avmux", nil, Track{}, audio, Track{PayloadType: 97, ClockRate: 8000}))
	assert.NotContains(t, b.String(), "m=video")

	var v codec.VideoMeta
	var a codec.AudioMeta
	require.NoError(t, ParseMetadata(b.String(), &v, &a))
	assert.Empty(t, v.Codec)
	assert.Equal(t, 8000, a.SampleRate)
	assert.Equal(t, 1, a.Channels)
}

func TestFmtpParams(t *testing.T) {
	params := fmtpParams([]string{"sampling=YCbCr-4:2:0; width=2;height=4", "bogus"})
	assert.Equal(t, map[string]string{"sampling": "YCbCr-4:2:0", "width": "2", "height": "4"}, params)
}
