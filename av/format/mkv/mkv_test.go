// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mkv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/synth"
	"github.com/cnotch/avmux/interleave"
	"github.com/cnotch/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func muxTo(t *testing.T, w *Writer, seconds int64) {
	v, err := synth.NewVideoSource(synth.VideoOptions{Width: 32, Height: 16, Horizon: synth.Horizon(seconds)})
	require.NoError(t, err)
	a, err := synth.NewAudioSource(synth.AudioOptions{Horizon: synth.Horizon(seconds), Stream: 1})
	require.NoError(t, err)

	require.NoError(t, interleave.Run(context.Background(), []interleave.Stream{v, a}, w))
	require.NoError(t, w.Close())
}

func sourceMeta(t *testing.T) (*codec.VideoMeta, *codec.AudioMeta) {
	v, err := synth.NewVideoSource(synth.VideoOptions{Width: 32, Height: 16})
	require.NoError(t, err)
	a, err := synth.NewAudioSource(synth.AudioOptions{})
	require.NoError(t, err)
	return v.Meta(), a.Meta()
}

func TestWriterRoundTrip(t *testing.T) {
	vm, am := sourceMeta(t)
	buf := &bufferCloser{}
	w, err := NewWriter(buf, vm, am, Options{DocType: DocTypeMatroska, App: "avmux-test"}, xlog.L())
	require.NoError(t, err)
	muxTo(t, w, 2)
	assert.True(t, buf.closed)

	md, err := Probe(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, DocTypeMatroska, md.DocType)
	assert.Equal(t, "avmux-test", md.MuxingApp)
	assert.True(t, md.Interleaved)
	require.Len(t, md.Tracks, 2)

	video := md.Tracks[0]
	assert.Equal(t, "video", video.Type)
	assert.Equal(t, CodecIDRawVideo, video.CodecID)
	assert.Equal(t, uint64(32), video.Width)
	assert.Equal(t, uint64(16), video.Height)
	assert.Equal(t, 40*time.Millisecond, video.DefaultDuration)
	assert.Equal(t, 51, video.Blocks)
	assert.Equal(t, int64(51*32*16*3/2), video.Bytes)
	assert.Equal(t, 2*time.Second, video.Last)

	audio := md.Tracks[1]
	assert.Equal(t, "audio", audio.Type)
	assert.Equal(t, CodecIDPCM, audio.CodecID)
	assert.Equal(t, float64(44100), audio.SampleRate)
	assert.Equal(t, uint64(2), audio.Channels)
	assert.Equal(t, 87, audio.Blocks)
	assert.Equal(t, int64(87*1024*4), audio.Bytes)

	assert.True(t, md.Duration >= 2*time.Second)
}

func TestWriterSingleTrackFile(t *testing.T) {
	_, am := sourceMeta(t)
	path := filepath.Join(t.TempDir(), "audio.webm")
	f, err := os.Create(path)
	require.NoError(t, err)

	w, err := NewWriter(f, nil, am, Options{DocType: DocTypeWebM}, xlog.L())
	require.NoError(t, err)

	a, err := synth.NewAudioSource(synth.AudioOptions{Horizon: synth.Horizon(1)})
	require.NoError(t, err)
	require.NoError(t, interleave.Run(context.Background(), []interleave.Stream{a}, w))
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second close is a no-op")

	r, err := os.Open(path)
	require.NoError(t, err)
	defer r.Close()
	md, err := Probe(r)
	require.NoError(t, err)
	assert.Equal(t, DocTypeWebM, md.DocType)
	assert.Equal(t, "avmux", md.WritingApp)
	require.Len(t, md.Tracks, 1)
	assert.Equal(t, 44, md.Tracks[0].Blocks) // 1024*43 = 44032 <= 44100
}

func TestWriterRejectsUnknownTrack(t *testing.T) {
	_, am := sourceMeta(t)
	w, err := NewWriter(&bufferCloser{}, nil, am, Options{}, xlog.L())
	require.NoError(t, err)
	err = w.WriteFrame(&codec.Frame{MediaType: codec.MediaTypeVideo})
	assert.Error(t, err)
	assert.NoError(t, w.Close())
}

func TestNewWriterWithoutTracks(t *testing.T) {
	_, err := NewWriter(&bufferCloser{}, nil, nil, Options{}, xlog.L())
	assert.Equal(t, ErrNoTracks, err)
}

func TestProbeGarbage(t *testing.T) {
	_, err := Probe(bytes.NewReader([]byte("definitely not matroska")))
	assert.Error(t, err)
}
