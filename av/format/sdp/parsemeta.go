// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sdp

import (
	"strconv"
	"strings"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/timebase"
	"github.com/cnotch/avmux/utils/scan"
	"github.com/pixelbender/go-sdp/sdp"
	"github.com/pkg/errors"
)

// ParseMetadata 从 SDP 中解析音视频元数据，未描述的媒体对应的 Codec 为空
func ParseMetadata(rawsdp string, video *codec.VideoMeta, audio *codec.AudioMeta) error {
	sess, err := sdp.ParseString(rawsdp)
	if err != nil {
		return errors.Wrap(err, "sdp: parse")
	}

	for _, media := range sess.Media {
		if len(media.Format) == 0 {
			continue
		}
		switch media.Type {
		case "video":
			video.Codec = media.Format[0].Name
			if video.Codec != "" {
				for _, bw := range media.Bandwidth {
					if bw.Type == "AS" {
						video.DataRate = float64(bw.Value)
					}
				}
				parseVideoMeta(media.Format[0], video)
			}

		case "audio":
			audio.Codec = media.Format[0].Name
			if audio.Codec != "" {
				for _, bw := range media.Bandwidth {
					if bw.Type == "AS" {
						audio.DataRate = float64(bw.Value)
					}
				}
				parseAudioMeta(media.Format[0], audio)
			}
		}
	}
	return nil
}

func parseAudioMeta(m *sdp.Format, audio *codec.AudioMeta) {
	if strings.EqualFold(audio.Codec, EncodingL16) {
		audio.Codec = codec.CodecPCMS16BE
		audio.SampleSize = 16
	}
	audio.Channels = 1 // RFC 3551 缺省单声道
	if m.ClockRate > 0 {
		audio.SampleRate = m.ClockRate
		audio.TimeBase = timebase.Rate(m.ClockRate)
	}
	if m.Channels > 0 {
		audio.Channels = m.Channels
	}
}

func parseVideoMeta(m *sdp.Format, video *codec.VideoMeta) {
	if m.ClockRate > 0 {
		video.TimeBase = timebase.Rate(m.ClockRate)
	}

	params := fmtpParams(m.Params)
	if strings.EqualFold(video.Codec, EncodingRaw) && params["sampling"] == SamplingYUV420 {
		video.Codec = codec.CodecI420
	}
	if v, err := strconv.Atoi(params["width"]); err == nil {
		video.Width = v
	}
	if v, err := strconv.Atoi(params["height"]); err == nil {
		video.Height = v
	}
	if v, err := strconv.ParseFloat(params["exactframerate"], 64); err == nil {
		video.FrameRate = v
	}
}

// fmtpParams 把 "k1=v1; k2=v2" 形式的参数拆成 map
func fmtpParams(lines []string) map[string]string {
	params := make(map[string]string)
	for _, line := range lines {
		scan.Params(params, line, scan.Semicolon, scan.EqualPair)
	}
	return params
}
