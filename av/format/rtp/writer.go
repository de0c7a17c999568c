// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"bufio"
	"io"
	"math/rand"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/format/sdp"
	"github.com/cnotch/avmux/av/timebase"
	"github.com/cnotch/xlog"
	"github.com/pion/rtp"
	"github.com/pkg/errors"
)

// 打包参数
const (
	DefaultMTU       = 1400
	VideoPayloadType = 96
	AudioPayloadType = 97
	VideoClockRate   = 90000
	headerSize       = 12
)

// ErrNoTracks 没有任何轨道
var ErrNoTracks = errors.New("rtp: no video or audio track")

// Options 打包选项
type Options struct {
	MTU int // 单个 RTP 包的最大字节数（含 12 字节头）
}

type track struct {
	channel     byte
	payloadType uint8
	clock       timebase.Rational
	ssrc        uint32
	offset      uint32 // 随机的初始时间戳
	sequencer   rtp.Sequencer
	maxPayload  int
	sampleSize  int // 音频一个采样（全部声道）的字节数
}

func newTrack(channel byte, payloadType uint8, clock timebase.Rational, mtu, sampleSize int) (*track, error) {
	if mtu > MaxPacketSize {
		return nil, errors.Errorf("rtp: mtu %d exceeds %d", mtu, MaxPacketSize)
	}
	maxPayload := mtu - headerSize
	if sampleSize > 0 {
		maxPayload -= maxPayload % sampleSize
	}
	if maxPayload <= 0 {
		return nil, errors.Errorf("rtp: mtu %d too small", mtu)
	}
	return &track{
		channel:     channel,
		payloadType: payloadType,
		clock:       clock,
		ssrc:        rand.Uint32(),
		offset:      rand.Uint32(),
		sequencer:   rtp.NewRandomSequencer(),
		maxPayload:  maxPayload,
		sampleSize:  sampleSize,
	}, nil
}

func (t *track) packet(ts uint32, marker bool, payload []byte) (*Packet, error) {
	return NewPacket(t.channel, rtp.Header{
		Version:        2,
		Marker:         marker,
		PayloadType:    t.payloadType,
		SequenceNumber: t.sequencer.NextSequenceNumber(),
		Timestamp:      ts,
		SSRC:           t.ssrc,
	}, payload)
}

// Writer RTP 转储写入器，实现 codec.FrameWriteCloser
type Writer struct {
	w       *bufio.Writer
	closer  io.Closer
	video   *track
	audio   *track
	packets int
	closed  bool
	logger  *xlog.Logger
}

// NewWriter 创建转储写入器；video 或 audio 可为 nil
func NewWriter(w io.WriteCloser, video *codec.VideoMeta, audio *codec.AudioMeta, opts Options, logger *xlog.Logger) (*Writer, error) {
	if video == nil && audio == nil {
		return nil, ErrNoTracks
	}
	if opts.MTU == 0 {
		opts.MTU = DefaultMTU
	}

	writer := &Writer{
		w:      bufio.NewWriterSize(w, 64*1024),
		closer: w,
		logger: logger,
	}

	var err error
	if video != nil {
		writer.video, err = newTrack(ChannelVideo, VideoPayloadType, timebase.Rate(VideoClockRate), opts.MTU, 0)
		if err != nil {
			return nil, err
		}
	}
	if audio != nil {
		writer.audio, err = newTrack(ChannelAudio, AudioPayloadType, timebase.Rate(audio.SampleRate), opts.MTU, audio.BytesPerSample())
		if err != nil {
			return nil, err
		}
	}
	return writer, nil
}

// WriteSDP 输出与 NewWriter 参数一致的会话描述
func WriteSDP(w io.Writer, video *codec.VideoMeta, audio *codec.AudioMeta) error {
	vt := sdp.Track{PayloadType: VideoPayloadType, ClockRate: VideoClockRate, Control: "streamid=0"}
	var at sdp.Track
	if audio != nil {
		at = sdp.Track{PayloadType: AudioPayloadType, ClockRate: audio.SampleRate, Control: "streamid=1"}
	}
	return sdp.Write(w, "avmux", video, vt, audio, at)
}

// WriteFrame 打包并写出一个单元
func (w *Writer) WriteFrame(frame *codec.Frame) error {
	if w.closed {
		return io.ErrClosedPipe
	}

	switch frame.MediaType {
	case codec.MediaTypeVideo:
		if w.video != nil {
			return w.writeVideo(frame)
		}
	case codec.MediaTypeAudio:
		if w.audio != nil {
			return w.writeAudio(frame)
		}
	}
	return errors.Errorf("rtp: no track for %s frame of stream #%d", frame.MediaType, frame.Stream)
}

// writeVideo 按 MTU 分片，所有分片使用相同的时间戳，最后一片设置 marker
func (w *Writer) writeVideo(frame *codec.Frame) error {
	t := w.video
	ts := t.offset + uint32(timebase.Rescale(frame.Pts, frame.TimeBase, t.clock))

	payload := frame.Payload
	for {
		n := len(payload)
		if n > t.maxPayload {
			n = t.maxPayload
		}
		if err := w.writePacket(t, ts, n == len(payload), payload[:n]); err != nil {
			return err
		}
		payload = payload[n:]
		if len(payload) == 0 {
			return nil
		}
	}
}

// writeAudio 按采样边界分片并转为网络字节序，时间戳随已发送的采样数递增
func (w *Writer) writeAudio(frame *codec.Frame) error {
	t := w.audio
	start := t.offset + uint32(timebase.Rescale(frame.Pts, frame.TimeBase, t.clock))

	payload := frame.Payload
	if len(payload)%t.sampleSize != 0 {
		return errors.Errorf("rtp: audio payload of %d bytes is not whole samples", len(payload))
	}

	sent := 0
	for len(payload) > 0 {
		n := len(payload)
		if n > t.maxPayload {
			n = t.maxPayload
		}
		be := make([]byte, n)
		for i := 0; i+1 < n; i += 2 {
			be[i], be[i+1] = payload[i+1], payload[i]
		}
		if err := w.writePacket(t, start+uint32(sent), n == len(payload), be); err != nil {
			return err
		}
		sent += n / t.sampleSize
		payload = payload[n:]
	}
	return nil
}

func (w *Writer) writePacket(t *track, ts uint32, marker bool, payload []byte) error {
	p, err := t.packet(ts, marker, payload)
	if err != nil {
		return err
	}
	if err = p.Write(w.w, DefaultChannelConfig); err != nil {
		return errors.Wrap(err, "rtp: write packet")
	}
	w.packets++
	return nil
}

// Packets 已写出的包数
func (w *Writer) Packets() int {
	return w.packets
}

// Close 刷新缓冲并关闭底层 writer
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.w.Flush()
	if cerr := w.closer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(err, "rtp: close")
	}
	w.logger.Debugf("rtp: %d packets written", w.packets)
	return nil
}
