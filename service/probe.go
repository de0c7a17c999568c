// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cnotch/avmux/av/format/mkv"
	"github.com/cnotch/avmux/av/format/rtp"
	"github.com/pkg/errors"
)

// ProbeResult 输出文件的元数据
type ProbeResult struct {
	Path     string        `json:"path"`
	Format   string        `json:"format"`
	Matroska *mkv.Metadata `json:"matroska,omitempty"`
	RTP      *rtp.Metadata `json:"rtp,omitempty"`
}

// Probe 按扩展名读取 avmux 生成的文件
func Probe(path string) (*ProbeResult, error) {
	format, ok := GuessFormat(path)
	if !ok || format == Null.Name() {
		return nil, errors.Errorf("unsupported file '%s'", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open '%s'", path)
	}
	defer f.Close()

	result := &ProbeResult{Path: path, Format: format}
	switch format {
	case RTP.Name():
		rawsdp, err := os.ReadFile(SDPPath(path))
		if err != nil {
			return nil, errors.Wrap(err, "read sdp")
		}
		if result.RTP, err = rtp.Probe(string(rawsdp), f); err != nil {
			return nil, err
		}
	default:
		if result.Matroska, err = mkv.Probe(f); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// WriteText 以 key=value 每行一项输出
func (r *ProbeResult) WriteText(w io.Writer) error {
	var b strings.Builder
	kv := func(key string, value interface{}) {
		fmt.Fprintf(&b, "%s=%v\n", key, value)
	}

	kv("filename", filepath.Base(r.Path))
	kv("format_name", r.Format)
	if md := r.Matroska; md != nil {
		kv("doctype", md.DocType)
		kv("muxing_app", md.MuxingApp)
		kv("writing_app", md.WritingApp)
		kv("duration", md.Duration.Seconds())
		kv("clusters", md.Clusters)
		kv("nb_streams", len(md.Tracks))
		kv("interleaved", md.Interleaved)
		for i, t := range md.Tracks {
			prefix := fmt.Sprintf("stream.%d.", i)
			kv(prefix+"codec_type", t.Type)
			kv(prefix+"codec_id", t.CodecID)
			if t.Type == "video" {
				kv(prefix+"width", t.Width)
				kv(prefix+"height", t.Height)
			} else if t.Type == "audio" {
				kv(prefix+"sample_rate", t.SampleRate)
				kv(prefix+"channels", t.Channels)
			}
			kv(prefix+"nb_frames", t.Blocks)
			kv(prefix+"size", t.Bytes)
			kv(prefix+"start_time", t.First.Seconds())
			kv(prefix+"end_time", t.Last.Seconds())
		}
	}
	if md := r.RTP; md != nil {
		if md.Video != nil {
			kv("video.codec", md.Video.Codec)
			kv("video.width", md.Video.Width)
			kv("video.height", md.Video.Height)
			kv("video.framerate", md.Video.FrameRate)
		}
		if md.Audio != nil {
			kv("audio.codec", md.Audio.Codec)
			kv("audio.sample_rate", md.Audio.SampleRate)
			kv("audio.channels", md.Audio.Channels)
		}
		kv("nb_streams", len(md.Channels))
		kv("interleaved", md.Interleaved)
		for i, c := range md.Channels {
			prefix := fmt.Sprintf("stream.%d.", i)
			kv(prefix+"codec_type", c.Name)
			kv(prefix+"channel", c.Channel)
			kv(prefix+"payload_type", c.PayloadType)
			kv(prefix+"nb_packets", c.Packets)
			kv(prefix+"nb_frames", c.Frames)
			kv(prefix+"size", c.Bytes)
			kv(prefix+"duration", c.Duration.Seconds())
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
