// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"strings"

	"github.com/pkg/errors"
)

// Provider 提供者接口
type Provider interface {
	Name() string
	Configure(config map[string]interface{}) error
}

// ProviderConfig 可扩展提供者配置
type ProviderConfig struct {
	Provider string                 `json:"provider"`         // 提供者类型
	Config   map[string]interface{} `json:"config,omitempty"` // 提供者配置
}

// ErrNoProviders 没有可选的提供者
var ErrNoProviders = errors.New("no builtin providers")

// Load 加载Provider
func (c *ProviderConfig) Load(builtins ...Provider) (Provider, error) {
	for _, builtin := range builtins {
		if strings.EqualFold(builtin.Name(), c.Provider) {
			if err := builtin.Configure(c.Config); err != nil {
				return nil, errors.Wrapf(err, "the provider '%s' could not be loaded", c.Provider)
			}

			return builtin, nil
		}
	}

	return nil, errors.Errorf("the provider '%s' could not be loaded", c.Provider)
}

// LoadProvider 加载Provider，未配置时使用第一个provider
func LoadProvider(config *ProviderConfig, providers ...Provider) (Provider, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	if config == nil || config.Provider == "" {
		config = &ProviderConfig{
			Provider: providers[0].Name(),
		}
	}

	// Load the provider according to the configuration
	return config.Load(providers...)
}

// Int 从提供者配置中读取整数，JSON 数字为 float64
func Int(config map[string]interface{}, key string, def int) (int, error) {
	v, ok := config[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	}
	return 0, errors.Errorf("config '%s' must be a number", key)
}

// String 从提供者配置中读取字符串
func String(config map[string]interface{}, key string, def string) (string, error) {
	v, ok := config[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("config '%s' must be a string", key)
	}
	return s, nil
}
