// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/config"
	"github.com/cnotch/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions(output string, provider SinkProvider) Options {
	return Options{
		Output:   output,
		Duration: 1,
		Video:    config.VideoConfig{Enable: true, Width: 32, Height: 16},
		Audio:    config.AudioConfig{Enable: true},
		Sink:     provider,
	}
}

func TestGuessFormat(t *testing.T) {
	tests := []struct {
		output string
		want   string
		known  bool
	}{
		{"out.mkv", "mkv", true},
		{"OUT.WEBM", "webm", true},
		{"dir/a.rtp", "rtp", true},
		{"", "null", true},
		{os.DevNull, "null", true},
		{"movie.mp4", DefaultFormat, false},
		{"noext", DefaultFormat, false},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			got, known := GuessFormat(tt.output)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestMuxingNull(t *testing.T) {
	opts := smallOptions("", Null)
	opts.LogPackets = true
	opts.Async = true
	m, err := NewMuxing(context.Background(), opts, xlog.L())
	require.NoError(t, err)
	assert.Equal(t, 2, m.Streams())

	report, err := m.Run()
	require.NoError(t, err)
	require.Len(t, report.Streams, 2)
	assert.Equal(t, codec.MediaTypeVideo, report.Streams[0].Type)
	assert.Equal(t, int64(26), report.Streams[0].Frames)
	assert.Equal(t, int64(26*32*16*3/2), report.Streams[0].Bytes)
	assert.Equal(t, codec.MediaTypeAudio, report.Streams[1].Type)
	assert.Equal(t, int64(44), report.Streams[1].Frames)
	assert.Equal(t, int64(70), report.Total.Frames)
	assert.False(t, report.Cancelled)
}

func TestMuxingMatroskaWithReport(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out", "test.mkv")
	opts := smallOptions(output, MKV)
	opts.Report = filepath.Join(dir, "report.json")
	opts.Progress = 10 * time.Millisecond

	m, err := NewMuxing(context.Background(), opts, xlog.L())
	require.NoError(t, err)
	_, err = m.Run()
	require.NoError(t, err)

	body, err := os.ReadFile(opts.Report)
	require.NoError(t, err)
	var report Report
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, "mkv", report.Format)
	assert.Equal(t, int64(70), report.Total.Frames)

	result, err := Probe(output)
	require.NoError(t, err)
	require.NotNil(t, result.Matroska)
	assert.True(t, result.Matroska.Interleaved)
	require.Len(t, result.Matroska.Tracks, 2)
	assert.Equal(t, 26, result.Matroska.Tracks[0].Blocks)
	assert.Equal(t, 44, result.Matroska.Tracks[1].Blocks)

	var text strings.Builder
	require.NoError(t, result.WriteText(&text))
	assert.Contains(t, text.String(), "format_name=mkv\n")
	assert.Contains(t, text.String(), "stream.0.codec_type=video\n")
	assert.Contains(t, text.String(), "stream.1.nb_frames=44\n")
}

func TestMuxingRTP(t *testing.T) {
	output := filepath.Join(t.TempDir(), "dump.rtp")
	opts := smallOptions(output, RTP)
	opts.Video.Enable = false
	require.NoError(t, RTP.Configure(map[string]interface{}{"mtu": float64(1000)}))
	defer RTP.Configure(nil)

	m, err := NewMuxing(context.Background(), opts, xlog.L())
	require.NoError(t, err)
	_, err = m.Run()
	require.NoError(t, err)

	_, err = os.Stat(SDPPath(output))
	require.NoError(t, err)

	result, err := Probe(output)
	require.NoError(t, err)
	require.NotNil(t, result.RTP)
	assert.Nil(t, result.RTP.Video)
	require.Len(t, result.RTP.Channels, 1)
	audio := result.RTP.Channels[0]
	assert.Equal(t, 44, audio.Frames)
	// 1000-12 字节向下取整为 988 字节（247 个采样），每个单元 5 个包
	assert.Equal(t, 44*5, audio.Packets)
}

func TestMuxingCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := NewMuxing(ctx, smallOptions("", Null), xlog.L())
	require.NoError(t, err)
	report, err := m.Run()
	assert.Equal(t, context.Canceled, err)
	require.NotNil(t, report)
	assert.True(t, report.Cancelled)
	assert.Equal(t, int64(0), report.Total.Frames)
}

func TestMuxingInvalidOptions(t *testing.T) {
	opts := smallOptions("", Null)
	opts.Video.Width = 33
	_, err := NewMuxing(context.Background(), opts, xlog.L())
	assert.Error(t, err)
}

func TestMuxingNoTracks(t *testing.T) {
	opts := smallOptions(filepath.Join(t.TempDir(), "empty.mkv"), MKV)
	opts.Video.Enable = false
	opts.Audio.Enable = false
	m, err := NewMuxing(context.Background(), opts, xlog.L())
	require.NoError(t, err)
	_, err = m.Run()
	assert.Error(t, err)
}

func TestProbeUnsupported(t *testing.T) {
	_, err := Probe("file.mp4")
	assert.Error(t, err)
	_, err = Probe(filepath.Join(t.TempDir(), "missing.mkv"))
	assert.Error(t, err)
}
