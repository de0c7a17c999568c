// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mkv

import (
	"io"
	"time"

	"github.com/at-wat/ebml-go"
	"github.com/at-wat/ebml-go/webm"
	"github.com/pkg/errors"
)

// TrackInfo 轨道信息
type TrackInfo struct {
	Number          uint64        `json:"number"`
	Name            string        `json:"name,omitempty"`
	Type            string        `json:"type"`
	CodecID         string        `json:"codec_id"`
	Width           uint64        `json:"width,omitempty"`
	Height          uint64        `json:"height,omitempty"`
	SampleRate      float64       `json:"samplerate,omitempty"`
	Channels        uint64        `json:"channels,omitempty"`
	DefaultDuration time.Duration `json:"default_duration,omitempty"`
	Blocks          int           `json:"blocks"`
	Bytes           int64         `json:"bytes"`
	First           time.Duration `json:"first"`
	Last            time.Duration `json:"last"`
}

// Metadata 容器元数据
type Metadata struct {
	DocType     string        `json:"doctype"`
	MuxingApp   string        `json:"muxing_app,omitempty"`
	WritingApp  string        `json:"writing_app,omitempty"`
	Duration    time.Duration `json:"duration"`
	Clusters    int           `json:"clusters"`
	Tracks      []TrackInfo   `json:"tracks"`
	Interleaved bool          `json:"interleaved"` // 块时间戳是否跨轨道非递减
}

func trackType(t uint64) string {
	switch t {
	case TrackTypeVideo:
		return "video"
	case TrackTypeAudio:
		return "audio"
	}
	return "unknown"
}

// Probe 读取 Matroska/WebM 数据并统计轨道和块信息
func Probe(r io.Reader) (*Metadata, error) {
	var doc struct {
		Header  webm.EBMLHeader `ebml:"EBML"`
		Segment webm.Segment    `ebml:"Segment"`
	}
	if err := ebml.Unmarshal(r, &doc); err != nil {
		// 直播方式写入的 Segment 没有长度，读到结尾即可
		if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, errors.Wrap(err, "mkv: unmarshal")
		}
	}
	if doc.Header.DocType == "" {
		return nil, errors.New("mkv: missing EBML header")
	}

	scale := doc.Segment.Info.TimecodeScale
	if scale == 0 {
		scale = TimecodeScale
	}
	toDuration := func(tc int64) time.Duration {
		return time.Duration(tc * int64(scale))
	}

	md := &Metadata{
		DocType:     doc.Header.DocType,
		MuxingApp:   doc.Segment.Info.MuxingApp,
		WritingApp:  doc.Segment.Info.WritingApp,
		Clusters:    len(doc.Segment.Cluster),
		Interleaved: true,
	}

	index := make(map[uint64]int)
	for _, entry := range doc.Segment.Tracks.TrackEntry {
		info := TrackInfo{
			Number:          entry.TrackNumber,
			Name:            entry.Name,
			Type:            trackType(entry.TrackType),
			CodecID:         entry.CodecID,
			DefaultDuration: time.Duration(entry.DefaultDuration),
		}
		if entry.Video != nil {
			info.Width = entry.Video.PixelWidth
			info.Height = entry.Video.PixelHeight
		}
		if entry.Audio != nil {
			info.SampleRate = entry.Audio.SamplingFrequency
			info.Channels = entry.Audio.Channels
		}
		index[entry.TrackNumber] = len(md.Tracks)
		md.Tracks = append(md.Tracks, info)
	}

	var last int64 = -1 << 63
	for _, cluster := range doc.Segment.Cluster {
		for _, block := range cluster.SimpleBlock {
			tc := int64(cluster.Timecode) + int64(block.Timecode)
			if tc < last {
				md.Interleaved = false
			}
			last = tc

			i, ok := index[block.TrackNumber]
			if !ok {
				continue
			}
			track := &md.Tracks[i]
			ts := toDuration(tc)
			if track.Blocks == 0 {
				track.First = ts
			}
			track.Last = ts
			track.Blocks++
			for _, data := range block.Data {
				track.Bytes += int64(len(data))
			}
		}
	}

	for _, track := range md.Tracks {
		if track.Blocks == 0 {
			continue
		}
		if end := track.Last + track.DefaultDuration; end > md.Duration {
			md.Duration = end
		}
	}
	return md, nil
}
