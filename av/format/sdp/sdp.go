// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sdp 生成和解析 RTP 转储文件配套的会话描述。
package sdp

import (
	"io"
	"strconv"
	"strings"

	"github.com/cnotch/avmux/av/codec"
)

// RTP 负载编码
const (
	EncodingRaw    = "raw" // RFC 4175
	EncodingL16    = "L16" // RFC 3551
	SamplingYUV420 = "YCbCr-4:2:0"
)

// Track 一路 RTP 媒体的传输参数
type Track struct {
	PayloadType int
	ClockRate   int
	Control     string
}

// Write 输出描述 video 和 audio 的 SDP，为 nil 的媒体不输出
func Write(w io.Writer, name string, video *codec.VideoMeta, vt Track, audio *codec.AudioMeta, at Track) error {
	var b strings.Builder
	b.WriteString("v=0\r\n")
	b.WriteString("o=- 0 0 IN IP4 127.0.0.1\r\n")
	b.WriteString("s=" + name + "\r\n")
	b.WriteString("c=IN IP4 127.0.0.1\r\n")
	b.WriteString("t=0 0\r\n")

	if video != nil {
		pt := strconv.Itoa(vt.PayloadType)
		b.WriteString("m=video 0 RTP/AVP " + pt + "\r\n")
		if video.DataRate > 0 {
			b.WriteString("b=AS:" + strconv.Itoa(int(video.DataRate)) + "\r\n")
		}
		b.WriteString("a=rtpmap:" + pt + " " + EncodingRaw + "/" + strconv.Itoa(vt.ClockRate) + "\r\n")
		b.WriteString("a=fmtp:" + pt + " sampling=" + SamplingYUV420 +
			"; width=" + strconv.Itoa(video.Width) +
			"; height=" + strconv.Itoa(video.Height) +
			"; exactframerate=" + strconv.FormatFloat(video.FrameRate, 'f', -1, 64) +
			"; depth=8; colorimetry=BT601-5\r\n")
		if vt.Control != "" {
			b.WriteString("a=control:" + vt.Control + "\r\n")
		}
	}

	if audio != nil {
		pt := strconv.Itoa(at.PayloadType)
		b.WriteString("m=audio 0 RTP/AVP " + pt + "\r\n")
		if audio.DataRate > 0 {
			b.WriteString("b=AS:" + strconv.Itoa(int(audio.DataRate)) + "\r\n")
		}
		b.WriteString("a=rtpmap:" + pt + " " + EncodingL16 + "/" + strconv.Itoa(at.ClockRate) +
			"/" + strconv.Itoa(audio.Channels) + "\r\n")
		if at.Control != "" {
			b.WriteString("a=control:" + at.Control + "\r\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
