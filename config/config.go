// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"

	"github.com/cnotch/avmux/av/synth"
)

// config 程序配置
type config struct {
	Output     string         `json:"output,omitempty"` // 输出文件，命令行第一个参数优先
	Duration   int64          `json:"duration"`         // 流时长（秒）
	Video      VideoConfig    `json:"video"`            // 视频流
	Audio      AudioConfig    `json:"audio"`            // 音频流
	Sink       ProviderConfig `json:"sink"`             // 输出格式提供者
	LogPackets bool           `json:"log_packets"`      // 记录每个输出单元
	Async      bool           `json:"async"`            // 在独立的 goroutine 中写输出
	Progress   int            `json:"progress"`         // 进度日志间隔（秒），0 不输出
	Report     string         `json:"report,omitempty"` // 结束后写出 JSON 统计报告
	Log        LogConfig      `json:"log"`              // 日志配置
}

func (c *config) initFlags(fs *flag.FlagSet) {
	fs.Int64Var(&c.Duration, "duration", synth.DefaultDuration,
		"Set the duration of every stream in seconds")
	fs.StringVar(&c.Sink.Provider, "format", "",
		"Set the output format (mkv, webm, rtp, null), guessed from the output name if empty")
	fs.BoolVar(&c.LogPackets, "log-packets", false,
		"Determines if every muxed unit should be logged")
	fs.BoolVar(&c.Async, "async", false,
		"Determines if output should be written in a separate goroutine")
	fs.IntVar(&c.Progress, "progress", 0,
		"Set the interval in seconds of progress logs, 0 disables")
	fs.StringVar(&c.Report, "report", "", "Set the file to write the JSON report to")

	c.Video.initFlags(fs)
	c.Audio.initFlags(fs)
	// 初始化日志配置
	c.Log.initFlags(fs)
}

// VideoConfig 视频流配置
type VideoConfig struct {
	Enable    bool `json:"enable"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	FrameRate int  `json:"framerate"`
	GopSize   int  `json:"gop"`
}

func (c *VideoConfig) initFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Enable, "video", true, "Determines if the video stream is muxed")
	fs.IntVar(&c.Width, "video-width", synth.DefaultWidth, "Set the picture width")
	fs.IntVar(&c.Height, "video-height", synth.DefaultHeight, "Set the picture height")
	fs.IntVar(&c.FrameRate, "video-rate", synth.DefaultFrameRate, "Set the frames per second")
	fs.IntVar(&c.GopSize, "video-gop", synth.DefaultGopSize, "Set the key frame interval")
}

// AudioConfig 音频流配置
type AudioConfig struct {
	Enable     bool    `json:"enable"`
	SampleRate int     `json:"samplerate"`
	Channels   int     `json:"channels"`
	FrameSize  int     `json:"framesize"`
	Frequency  float64 `json:"frequency"`
}

func (c *AudioConfig) initFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.Enable, "audio", true, "Determines if the audio stream is muxed")
	fs.IntVar(&c.SampleRate, "audio-rate", synth.DefaultSampleRate, "Set the audio sample rate")
	fs.IntVar(&c.Channels, "audio-channels", synth.DefaultChannels, "Set the number of audio channels")
	fs.IntVar(&c.FrameSize, "audio-framesize", synth.DefaultFrameSize, "Set the samples per audio unit")
	fs.Float64Var(&c.Frequency, "audio-freq", synth.DefaultFrequency, "Set the initial tone frequency in Hz")
}
