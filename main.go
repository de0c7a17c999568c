// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"strings"

	"github.com/cnotch/avmux/config"
	"github.com/cnotch/avmux/service"
	"github.com/cnotch/scheduler"
	"github.com/cnotch/xlog"
	"github.com/pkg/errors"
)

func main() {
	// 初始化配置
	config.InitConfig()
	// 初始化全局计划任务
	scheduler.SetPanicHandler(func(job *scheduler.ManagedJob, r interface{}) {
		xlog.Errorf("scheduler task panic. tag: %v, recover: %v", job.Tag, r)
	})

	if config.Output() == "" && !strings.EqualFold(config.Format(), service.Null.Name()) {
		xlog.Errorf("usage: %s [options] output_file", config.Name)
		os.Exit(1)
	}

	// 输出格式提供者
	provider, err := service.LoadSinkProvider(xlog.L())
	if err != nil {
		xlog.Errorf("%s", err.Error())
		os.Exit(1)
	}

	muxing, err := service.NewMuxing(context.Background(), service.OptionsFromConfig(provider), xlog.L())
	if err != nil {
		xlog.Errorf("%s", err.Error())
		os.Exit(1)
	}

	if _, err = muxing.Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			xlog.Warnf("muxing interrupted, output '%s' is kept", config.Output())
			return
		}
		xlog.Errorf("muxing failed - %s", err.Error())
		os.Exit(1)
	}
}
