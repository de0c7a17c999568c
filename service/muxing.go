// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package service 组织合成流、调度器和输出，完成一次完整的合成任务。
package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cnotch/avmux/av/codec"
	"github.com/cnotch/avmux/av/synth"
	"github.com/cnotch/avmux/av/timebase"
	"github.com/cnotch/avmux/config"
	"github.com/cnotch/avmux/interleave"
	"github.com/cnotch/avmux/sink"
	"github.com/cnotch/avmux/stats"
	"github.com/cnotch/avmux/utils"
	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

// Options 合成任务参数
type Options struct {
	Output     string
	Duration   int64 // 每路流的时长（秒）
	Video      config.VideoConfig
	Audio      config.AudioConfig
	Sink       SinkProvider
	LogPackets bool
	Async      bool
	Progress   time.Duration // 0 不输出进度
	Report     string        // JSON 报告文件
}

// OptionsFromConfig 从全局配置生成参数
func OptionsFromConfig(provider SinkProvider) Options {
	return Options{
		Output:     config.Output(),
		Duration:   config.Duration(),
		Video:      config.Video(),
		Audio:      config.Audio(),
		Sink:       provider,
		LogPackets: config.LogPackets(),
		Async:      config.Async(),
		Progress:   config.Progress(),
		Report:     config.Report(),
	}
}

// StreamReport 一路流的统计
type StreamReport struct {
	Index    int               `json:"index"`
	Type     codec.MediaType   `json:"type"`
	Codec    string            `json:"codec"`
	TimeBase timebase.Rational `json:"timebase"`
	Frames   int64             `json:"frames"`
	Bytes    int64             `json:"bytes"`
}

// Report 合成结果
type Report struct {
	Output    string           `json:"output,omitempty"`
	Format    string           `json:"format"`
	Started   time.Time        `json:"started"`
	Elapsed   string           `json:"elapsed"`
	Cancelled bool             `json:"cancelled,omitempty"`
	Error     string           `json:"error,omitempty"`
	Streams   []StreamReport   `json:"streams"`
	Total     stats.FlowSample `json:"total"`
	Runtime   *stats.Runtime   `json:"runtime,omitempty"`
}

// Muxing 一次合成任务
type Muxing struct {
	context context.Context
	cancel  context.CancelFunc
	logger  *xlog.Logger
	opts    Options
	streams []interleave.Stream
	infos   []StreamReport
	video   *codec.VideoMeta
	audio   *codec.AudioMeta
	flows   *stats.StreamFlows
	tag     string // 进度任务的标记
}

// NewMuxing 创建合成任务，视频流排在音频流之前
func NewMuxing(ctx context.Context, opts Options, l *xlog.Logger) (*Muxing, error) {
	if opts.Duration <= 0 {
		opts.Duration = synth.DefaultDuration
	}
	if opts.Sink == nil {
		opts.Sink = MKV
	}

	ctx, cancel := context.WithCancel(ctx)
	m := &Muxing{
		context: ctx,
		cancel:  cancel,
		logger:  l,
		opts:    opts,
	}
	m.tag = fmt.Sprintf("progress of muxing %p", m)

	horizon := synth.Horizon(opts.Duration)
	if opts.Video.Enable {
		v, err := synth.NewVideoSource(synth.VideoOptions{
			Width:     opts.Video.Width,
			Height:    opts.Video.Height,
			FrameRate: opts.Video.FrameRate,
			GopSize:   opts.Video.GopSize,
			Horizon:   horizon,
			Stream:    len(m.streams),
		})
		if err != nil {
			cancel()
			return nil, errors.Wrap(err, "video stream")
		}
		m.video = v.Meta()
		m.add(v, codec.MediaTypeVideo, m.video.Codec, m.video.TimeBase)
	}

	if opts.Audio.Enable {
		a, err := synth.NewAudioSource(synth.AudioOptions{
			SampleRate: opts.Audio.SampleRate,
			Channels:   opts.Audio.Channels,
			FrameSize:  opts.Audio.FrameSize,
			Frequency:  opts.Audio.Frequency,
			Horizon:    horizon,
			Stream:     len(m.streams),
		})
		if err != nil {
			cancel()
			return nil, errors.Wrap(err, "audio stream")
		}
		m.audio = a.Meta()
		m.add(a, codec.MediaTypeAudio, m.audio.Codec, m.audio.TimeBase)
	}

	m.flows = stats.NewStreamFlows(len(m.streams))
	return m, nil
}

func (m *Muxing) add(s interleave.Stream, mt codec.MediaType, codecName string, base timebase.Rational) {
	m.infos = append(m.infos, StreamReport{
		Index:    len(m.streams),
		Type:     mt,
		Codec:    codecName,
		TimeBase: base,
	})
	m.streams = append(m.streams, s)
}

// Streams 参与调度的流数
func (m *Muxing) Streams() int {
	return len(m.streams)
}

// Run 打开输出，调度所有流直到结束，然后关闭输出并生成报告。
// 被取消时已写出的内容保留，返回的错误为 context.Canceled。
func (m *Muxing) Run() (*Report, error) {
	defer m.Close()
	stop := m.hookSignals()
	defer stop()

	started := time.Now()
	out, err := m.opts.Sink.Open(m.opts.Output, m.video, m.audio, m.logger)
	if err != nil {
		return nil, err
	}
	m.logger.Infof("muxing %d streams into '%s' (%s), duration %ds",
		len(m.streams), m.opts.Output, m.opts.Sink.Name(), m.opts.Duration)

	var w codec.FrameWriteCloser = sink.Counting(out, m.flows)
	if m.opts.Async {
		w = sink.NewAsync(w, m.logger)
	}
	if m.opts.LogPackets {
		w = sink.Tee(sink.NewPacketLogger(m.logger), w)
	}

	m.startProgress()
	runErr := interleave.Run(m.context, m.streams, w, interleave.WithLogger(m.logger))
	m.stopProgress()

	// 写文件尾
	closeErr := w.Close()
	if runErr == nil && closeErr != nil {
		runErr = errors.Wrap(closeErr, "close output")
	} else if closeErr != nil {
		m.logger.Errorf("close output - %s", closeErr.Error())
	}

	report := m.report(started, runErr)
	if m.opts.Report != "" {
		if err := utils.EncodeJSONFile(m.opts.Report, report); err != nil {
			m.logger.Errorf("write report '%s' - %s", m.opts.Report, err.Error())
		}
	}

	if runErr != nil {
		return report, runErr
	}
	m.logger.Infof("muxing finished: %d units, %d bytes in %s",
		report.Total.Frames, report.Total.Bytes, report.Elapsed)
	return report, nil
}

func (m *Muxing) report(started time.Time, runErr error) *Report {
	r := &Report{
		Output:    m.opts.Output,
		Format:    m.opts.Sink.Name(),
		Started:   started,
		Elapsed:   time.Since(started).String(),
		Cancelled: errors.Is(runErr, context.Canceled),
		Total:     m.flows.Total.GetSample(),
		Runtime:   stats.MeasureFullRuntime(),
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}

	samples := m.flows.Samples()
	r.Streams = make([]StreamReport, len(m.infos))
	for i, info := range m.infos {
		info.Frames = samples[i].Frames
		info.Bytes = samples[i].Bytes
		r.Streams[i] = info
	}
	return r
}

func (m *Muxing) startProgress() {
	if m.opts.Progress <= 0 {
		return
	}
	scheduler.PeriodFunc(m.opts.Progress, m.opts.Progress, m.logProgress, m.tag)
}

func (m *Muxing) stopProgress() {
	for _, job := range scheduler.Jobs() {
		if job.Tag() == m.tag {
			job.Cancel()
		}
	}
}

func (m *Muxing) logProgress() {
	samples := m.flows.Samples()
	for i, s := range samples {
		m.logger.Infof("stream #%d %s: %d units, %d bytes", i, m.infos[i].Type, s.Frames, s.Bytes)
	}
	proc := stats.MeasureRuntime()
	m.logger.Infof("process: cpu %.1f%%, memory %dKB", proc.CPU, proc.Priv)
}

// Close 取消运行中的任务
func (m *Muxing) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	m.stopProgress()
}

// hookSignals 收到 SIGINT 或 SIGTERM 时取消任务
func (m *Muxing) hookSignals() (stop func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			select {
			case sig := <-c:
				m.onSignal(sig)
			case <-m.context.Done():
				return
			}
		}
	}()
	return func() { signal.Stop(c) }
}

// onSignal will be called when a OS-level signal is received.
func (m *Muxing) onSignal(sig os.Signal) {
	switch sig {
	case syscall.SIGTERM:
		fallthrough
	case syscall.SIGINT:
		m.logger.Warn(fmt.Sprintf("received signal %s, stopping...", sig.String()))
		m.cancel()
	}
}
