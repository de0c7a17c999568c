// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cnotch/avmux/av/synth"
	cfg "github.com/cnotch/loader"
	"github.com/cnotch/xlog"
)

// 程序名
const (
	Vendor  = "CAOHONGJU"
	Name    = "avmux"
	Version = "V1.0.0"
)

var (
	globalC    *config
	configPath string
)

// InitConfig 初始化 Config，依次加载配置文件、环境变量和命令行参数
func InitConfig() {
	exe, err := os.Executable()
	if err != nil {
		xlog.Panic(err.Error())
	}

	configPath = filepath.Join(filepath.Dir(exe), Name+".conf")

	globalC = new(config)
	globalC.initFlags(flag.CommandLine)

	// 创建或加载配置文件
	if err := cfg.Load(globalC,
		&cfg.JSONLoader{Path: configPath, CreatedIfNonExsit: true},
		&cfg.EnvLoader{Prefix: strings.ToUpper(Name)},
		&cfg.FlagLoader{}); err != nil {
		// 异常，直接退出
		xlog.Panic(err.Error())
	}

	// 输出文件来自第一个位置参数
	if flag.NArg() > 0 {
		globalC.Output = flag.Arg(0)
	}

	// 初始化日志
	globalC.Log.initLogger()
}

// ConfigPath 配置文件路径
func ConfigPath() string {
	return configPath
}

// Output 输出文件
func Output() string {
	if globalC == nil {
		return ""
	}
	return globalC.Output
}

// Format 配置的输出格式，为空时按输出文件扩展名选择
func Format() string {
	if globalC == nil {
		return ""
	}
	return globalC.Sink.Provider
}

// Duration 每路流的时长
func Duration() int64 {
	if globalC == nil || globalC.Duration <= 0 {
		return synth.DefaultDuration
	}
	return globalC.Duration
}

// Video 视频流配置
func Video() VideoConfig {
	if globalC == nil {
		return VideoConfig{Enable: true}
	}
	return globalC.Video
}

// Audio 音频流配置
func Audio() AudioConfig {
	if globalC == nil {
		return AudioConfig{Enable: true}
	}
	return globalC.Audio
}

// LogPackets 是否记录每个输出单元
func LogPackets() bool {
	if globalC == nil {
		return false
	}
	return globalC.LogPackets
}

// Async 是否异步写输出
func Async() bool {
	if globalC == nil {
		return false
	}
	return globalC.Async
}

// Progress 进度日志间隔，0 不输出
func Progress() time.Duration {
	if globalC == nil || globalC.Progress <= 0 {
		return 0
	}
	return time.Duration(globalC.Progress) * time.Second
}

// Report JSON 报告文件
func Report() string {
	if globalC == nil {
		return ""
	}
	return globalC.Report
}

// LoadSinkProvider 加载输出格式提供者，未配置时按输出文件扩展名选择
func LoadSinkProvider(guess func(output string) string, providers ...Provider) (Provider, error) {
	if globalC == nil {
		return LoadProvider(nil, providers...)
	}

	pc := globalC.Sink
	if pc.Provider == "" && guess != nil {
		pc.Provider = guess(globalC.Output)
	}
	return LoadProvider(&pc, providers...)
}
