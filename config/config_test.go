// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"flag"
	"testing"

	"github.com/cnotch/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags(t *testing.T) {
	c := new(config)
	fs := flag.NewFlagSet(Name, flag.ContinueOnError)
	c.initFlags(fs)

	assert.Equal(t, int64(10), c.Duration)
	assert.True(t, c.Video.Enable)
	assert.Equal(t, 352, c.Video.Width)
	assert.Equal(t, 44100, c.Audio.SampleRate)
	assert.Equal(t, 110.0, c.Audio.Frequency)

	require.NoError(t, fs.Parse([]string{
		"-duration", "3", "-format", "webm", "-video=false",
		"-audio-channels", "1", "-log-level", "debug", "out.webm",
	}))
	assert.Equal(t, int64(3), c.Duration)
	assert.Equal(t, "webm", c.Sink.Provider)
	assert.False(t, c.Video.Enable)
	assert.Equal(t, 1, c.Audio.Channels)
	assert.Equal(t, xlog.DebugLevel, c.Log.Level)
	assert.Equal(t, "out.webm", fs.Arg(0))
}

type testProvider struct {
	name string
	mtu  int
}

func (p *testProvider) Name() string { return p.name }

func (p *testProvider) Configure(config map[string]interface{}) (err error) {
	p.mtu, err = Int(config, "mtu", 1400)
	return
}

func TestLoadProvider(t *testing.T) {
	a, b := &testProvider{name: "mkv"}, &testProvider{name: "rtp"}

	p, err := LoadProvider(nil, a, b)
	require.NoError(t, err)
	assert.Same(t, a, p, "first provider is the default")

	p, err = LoadProvider(&ProviderConfig{Provider: "RTP", Config: map[string]interface{}{"mtu": float64(500)}}, a, b)
	require.NoError(t, err)
	assert.Same(t, b, p)
	assert.Equal(t, 500, b.mtu)

	_, err = LoadProvider(&ProviderConfig{Provider: "rtp", Config: map[string]interface{}{"mtu": "big"}}, a, b)
	assert.Error(t, err)

	_, err = LoadProvider(&ProviderConfig{Provider: "flv"}, a, b)
	assert.Error(t, err)

	_, err = LoadProvider(nil)
	assert.True(t, errors.Is(err, ErrNoProviders))
}

func TestProviderValues(t *testing.T) {
	config := map[string]interface{}{"doctype": "webm", "n": 3}
	s, err := String(config, "doctype", "matroska")
	require.NoError(t, err)
	assert.Equal(t, "webm", s)

	s, err = String(nil, "doctype", "matroska")
	require.NoError(t, err)
	assert.Equal(t, "matroska", s)

	n, err := Int(config, "n", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = String(config, "n", "")
	assert.Error(t, err)
}
