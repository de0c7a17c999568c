// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mkv 使用 ebml-go 把未压缩的音视频单元封装成 Matroska/WebM 文件，
// 并能读回文件的容器元数据。
package mkv

import (
	"io"
	"sync"

	"github.com/at-wat/ebml-go/mkvcore"
	"github.com/at-wat/ebml-go/webm"
	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/timebase"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// 文档类型
const (
	DocTypeWebM     = "webm"
	DocTypeMatroska = "matroska"
)

// Matroska 编码 ID 和轨道类型
const (
	CodecIDRawVideo = "V_UNCOMPRESSED"
	CodecIDPCM      = "A_PCM/INT/LIT"
	TrackTypeVideo  = 1
	TrackTypeAudio  = 2
	TimecodeScale   = 1000000 // 1ms
)

// 轨道号
const (
	videoTrackNumber = 1
	audioTrackNumber = 2
)

// TimeBase 块时间戳的时间基（TimecodeScale 为 1ms）
var TimeBase = timebase.Millisecond

// ErrNoTracks 没有任何轨道
var ErrNoTracks = errors.New("mkv: no video or audio track")

// Options 写入选项
type Options struct {
	DocType string // webm 或 matroska，默认 matroska
	App     string // MuxingApp 和 WritingApp
}

// Writer Matroska 写入器，实现 codec.FrameWriteCloser
type Writer struct {
	video  webm.BlockWriteCloser
	audio  webm.BlockWriteCloser
	closed bool
	mu     sync.Mutex
	fatal  error // ebml-go 后台报告的致命错误
	logger *xlog.Logger
}

// NewWriter 创建写入器并写出 EBML 头和轨道信息；video 或 audio 可为 nil
func NewWriter(w io.WriteCloser, video *codec.VideoMeta, audio *codec.AudioMeta, opts Options, logger *xlog.Logger) (*Writer, error) {
	if video == nil && audio == nil {
		return nil, ErrNoTracks
	}
	if opts.DocType == "" {
		opts.DocType = DocTypeMatroska
	}
	if opts.App == "" {
		opts.App = "avmux"
	}

	writer := &Writer{logger: logger}

	var tracks []webm.TrackEntry
	if video != nil {
		tracks = append(tracks, webm.TrackEntry{
			Name:            "Video",
			TrackNumber:     videoTrackNumber,
			TrackUID:        videoTrackNumber,
			CodecID:         CodecIDRawVideo,
			TrackType:       TrackTypeVideo,
			DefaultDuration: uint64(timebase.At(1, video.TimeBase).Duration()),
			Video: &webm.Video{
				PixelWidth:  uint64(video.Width),
				PixelHeight: uint64(video.Height),
			},
		})
	}
	if audio != nil {
		tracks = append(tracks, webm.TrackEntry{
			Name:            "Audio",
			TrackNumber:     audioTrackNumber,
			TrackUID:        audioTrackNumber,
			CodecID:         CodecIDPCM,
			TrackType:       TrackTypeAudio,
			DefaultDuration: uint64(timebase.At(int64(audio.FrameSize), audio.TimeBase).Duration()),
			Audio: &webm.Audio{
				SamplingFrequency: float64(audio.SampleRate),
				Channels:          uint64(audio.Channels),
			},
		})
	}

	writers, err := webm.NewSimpleBlockWriter(w, tracks,
		mkvcore.WithEBMLHeader(&webm.EBMLHeader{
			EBMLVersion:        1,
			EBMLReadVersion:    1,
			EBMLMaxIDLength:    4,
			EBMLMaxSizeLength:  8,
			DocType:            opts.DocType,
			DocTypeVersion:     4,
			DocTypeReadVersion: 2,
		}),
		mkvcore.WithSegmentInfo(&webm.Info{
			TimecodeScale: TimecodeScale,
			MuxingApp:     opts.App,
			WritingApp:    opts.App,
		}),
		mkvcore.WithOnFatalHandler(writer.onFatal),
	)
	if err != nil {
		return nil, errors.Wrap(err, "mkv: create block writer")
	}

	i := 0
	if video != nil {
		writer.video = writers[i]
		i++
	}
	if audio != nil {
		writer.audio = writers[i]
	}
	return writer, nil
}

func (w *Writer) onFatal(err error) {
	w.logger.Errorf("mkv: fatal error - %s", err.Error())
	w.mu.Lock()
	if w.fatal == nil {
		w.fatal = err
	}
	w.mu.Unlock()
}

func (w *Writer) fatalErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fatal
}

// WriteFrame 按媒体类型写入对应轨道，时间戳换算为毫秒
func (w *Writer) WriteFrame(frame *codec.Frame) error {
	if w.closed {
		return io.ErrClosedPipe
	}
	if err := w.fatalErr(); err != nil {
		return err
	}

	var bw webm.BlockWriteCloser
	switch frame.MediaType {
	case codec.MediaTypeVideo:
		bw = w.video
	case codec.MediaTypeAudio:
		bw = w.audio
	}
	if bw == nil {
		return errors.Errorf("mkv: no track for %s frame of stream #%d", frame.MediaType, frame.Stream)
	}

	ts := timebase.Rescale(frame.Pts, frame.TimeBase, TimeBase)
	if _, err := bw.Write(frame.Key, ts, frame.Payload); err != nil {
		return errors.Wrapf(err, "mkv: write %s block at %dms", frame.MediaType, ts)
	}
	return nil
}

// Close 关闭所有轨道，最后一个轨道关闭时写完文件并关闭底层 writer
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	for _, bw := range []webm.BlockWriteCloser{w.video, w.audio} {
		if bw == nil {
			continue
		}
		if cerr := bw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if ferr := w.fatalErr(); ferr != nil {
		return ferr
	}
	return err
}
