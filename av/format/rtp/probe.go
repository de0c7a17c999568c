// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtp

import (
	"bufio"
	"io"
	"time"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/format/sdp"
	"github.com/cnotch/avmux/av/timebase"
	"github.com/pkg/errors"
)

// ChannelInfo 一个通道的统计
type ChannelInfo struct {
	Channel        int           `json:"channel"`
	Name           string        `json:"name"`
	PayloadType    uint8         `json:"payload_type"`
	SSRC           uint32        `json:"ssrc"`
	Packets        int           `json:"packets"`
	Bytes          int64         `json:"bytes"`  // 负载字节数
	Frames         int           `json:"frames"` // marker 数量，即单元数
	FirstTimestamp uint32        `json:"first_timestamp"`
	LastTimestamp  uint32        `json:"last_timestamp"`
	Duration       time.Duration `json:"duration"` // 首包到末包的时间跨度
}

// Metadata 转储文件元数据
type Metadata struct {
	Video       *codec.VideoMeta `json:"video,omitempty"`
	Audio       *codec.AudioMeta `json:"audio,omitempty"`
	Channels    []*ChannelInfo   `json:"channels"`
	Interleaved bool             `json:"interleaved"` // 包时间跨通道非递减
}

// Probe 根据 SDP 描述读取转储数据 r，统计每个通道的包
func Probe(rawsdp string, r io.Reader) (*Metadata, error) {
	var video codec.VideoMeta
	var audio codec.AudioMeta
	if err := sdp.ParseMetadata(rawsdp, &video, &audio); err != nil {
		return nil, err
	}

	md := &Metadata{Interleaved: true}
	clocks := make(map[byte]timebase.Rational)
	if video.Codec != "" {
		md.Video = &video
		clocks[ChannelVideo] = video.TimeBase
	}
	if audio.Codec != "" {
		md.Audio = &audio
		clocks[ChannelAudio] = audio.TimeBase
	}

	infos := make(map[byte]*ChannelInfo)
	unitStart := make(map[byte]bool) // 下一个包是否是单元的第一个分片
	var last timebase.Timestamp
	br := bufio.NewReader(r)
	for {
		p, err := ReadPacket(br, DefaultChannelConfig)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "rtp: read packet #%d", packetCount(md))
		}

		clock, ok := clocks[p.Channel]
		if !ok {
			continue // 控制通道或未描述的媒体
		}

		info := infos[p.Channel]
		if info == nil {
			info = &ChannelInfo{
				Channel:        int(p.Channel),
				Name:           ChannelName(int(p.Channel)),
				PayloadType:    p.PayloadType,
				SSRC:           p.SSRC,
				FirstTimestamp: p.Timestamp,
			}
			infos[p.Channel] = info
			md.Channels = append(md.Channels, info)
			unitStart[p.Channel] = true
		}
		info.Packets++
		info.Bytes += int64(len(p.Payload()))
		if p.Marker {
			info.Frames++
		}
		info.LastTimestamp = p.Timestamp

		// 时间戳回绕按 32 位差值处理
		elapsed := timebase.At(int64(p.Timestamp-info.FirstTimestamp), clock)
		info.Duration = elapsed.Duration()
		// 只比较单元的起始时间
		if unitStart[p.Channel] {
			if elapsed.Before(last) {
				md.Interleaved = false
			}
			last = elapsed
		}
		unitStart[p.Channel] = p.Marker
	}
	return md, nil
}

func packetCount(md *Metadata) int {
	n := 0
	for _, info := range md.Channels {
		n += info.Packets
	}
	return n
}
