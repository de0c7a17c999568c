// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package service

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/format/mkv"
	"github.com/cnotch/avmux/av/format/rtp"
	"github.com/cnotch/avmux/config"
	"github.com/cnotch/avmux/sink"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// SinkProvider 输出格式提供者
type SinkProvider interface {
	config.Provider
	// Extensions 该格式的文件扩展名，第一个为缺省扩展名
	Extensions() []string
	// Open 创建输出，video 或 audio 为 nil 表示没有该流
	Open(path string, video *codec.VideoMeta, audio *codec.AudioMeta, logger *xlog.Logger) (codec.FrameWriteCloser, error)
}

// 内置的输出格式
var (
	MKV  SinkProvider = &mkvProvider{name: "mkv", docType: mkv.DocTypeMatroska, exts: []string{".mkv", ".mka"}}
	WebM SinkProvider = &mkvProvider{name: "webm", docType: mkv.DocTypeWebM, exts: []string{".webm", ".weba"}}
	RTP  SinkProvider = &rtpProvider{}
	Null SinkProvider = nullProvider{}
)

// DefaultFormat 无法识别扩展名时使用的格式
const DefaultFormat = "mkv"

// Providers 所有内置的输出格式，第一个为缺省
func Providers() []config.Provider {
	return []config.Provider{MKV, WebM, RTP, Null}
}

// GuessFormat 根据输出文件扩展名猜测格式名
func GuessFormat(output string) (string, bool) {
	if output == "" || output == os.DevNull {
		return Null.Name(), true
	}

	ext := strings.ToLower(filepath.Ext(output))
	for _, p := range Providers() {
		for _, e := range p.(SinkProvider).Extensions() {
			if e == ext {
				return p.Name(), true
			}
		}
	}
	return DefaultFormat, false
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, errors.Wrapf(err, "create directory of '%s'", path)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open '%s'", path)
	}
	return f, nil
}

type mkvProvider struct {
	name    string
	docType string
	app     string
	exts    []string
}

func (p *mkvProvider) Name() string         { return p.name }
func (p *mkvProvider) Extensions() []string { return p.exts }

func (p *mkvProvider) Configure(cfg map[string]interface{}) (err error) {
	p.app, err = config.String(cfg, "app", "avmux "+config.Version)
	return
}

func (p *mkvProvider) Open(path string, video *codec.VideoMeta, audio *codec.AudioMeta, logger *xlog.Logger) (codec.FrameWriteCloser, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	w, err := mkv.NewWriter(f, video, audio, mkv.Options{DocType: p.docType, App: p.app}, logger)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

type rtpProvider struct {
	mtu int
}

func (p *rtpProvider) Name() string         { return "rtp" }
func (p *rtpProvider) Extensions() []string { return []string{".rtp"} }

func (p *rtpProvider) Configure(cfg map[string]interface{}) (err error) {
	p.mtu, err = config.Int(cfg, "mtu", rtp.DefaultMTU)
	return
}

// SDPPath RTP 转储文件配套的会话描述文件
func SDPPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".sdp"
}

func (p *rtpProvider) Open(path string, video *codec.VideoMeta, audio *codec.AudioMeta, logger *xlog.Logger) (codec.FrameWriteCloser, error) {
	f, err := createFile(path)
	if err != nil {
		return nil, err
	}
	w, err := rtp.NewWriter(f, video, audio, rtp.Options{MTU: p.mtu}, logger)
	if err != nil {
		f.Close()
		return nil, err
	}

	sdpFile, err := createFile(SDPPath(path))
	if err != nil {
		w.Close()
		return nil, err
	}
	defer sdpFile.Close()
	if err = rtp.WriteSDP(sdpFile, video, audio); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "write sdp")
	}
	return w, nil
}

type nullProvider struct{}

func (nullProvider) Name() string                           { return "null" }
func (nullProvider) Extensions() []string                   { return nil }
func (nullProvider) Configure(map[string]interface{}) error { return nil }

func (nullProvider) Open(path string, video *codec.VideoMeta, audio *codec.AudioMeta, logger *xlog.Logger) (codec.FrameWriteCloser, error) {
	return sink.Discard, nil
}

// LoadSinkProvider 按配置加载输出格式
func LoadSinkProvider(logger *xlog.Logger) (SinkProvider, error) {
	p, err := config.LoadSinkProvider(func(output string) string {
		name, ok := GuessFormat(output)
		if !ok {
			logger.Warnf("could not deduce output format from file extension: using %s", name)
		}
		return name
	}, Providers()...)
	if err != nil {
		return nil, err
	}
	return p.(SinkProvider), nil
}
