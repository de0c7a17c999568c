// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scan 扫描分隔的字串和 Key Value 对。
package scan

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// 扫描器
var (
	// 分号分割，如 SDP fmtp 参数
	Semicolon = NewScanner(';', unicode.IsSpace)

	// EqualPair 扫描 K=V这类形式的Pair字串
	EqualPair = NewPair('=', func(r rune) bool {
		return unicode.IsSpace(r) || r == '"'
	})
)

// Scanner 按分隔符逐段扫描
type Scanner struct {
	delim    rune
	delimLen int
	trimFunc func(r rune) bool
}

// NewScanner 创建扫描器
func NewScanner(delim rune, trimFunc func(r rune) bool) Scanner {
	if trimFunc == nil {
		trimFunc = func(r rune) bool { return false }
	}
	return Scanner{
		delim:    delim,
		delimLen: utf8.RuneLen(delim),
		trimFunc: trimFunc,
	}
}

// Scan 返回第一段 token 和剩余的 advance；没有更多分隔符时 continueScan 为 false
func (s Scanner) Scan(str string) (advance, token string, continueScan bool) {
	i := strings.IndexRune(str, s.delim)
	if i < 0 {
		return "", strings.TrimFunc(str, s.trimFunc), false
	}
	return strings.TrimFunc(str[i+s.delimLen:], s.trimFunc), strings.TrimFunc(str[:i], s.trimFunc), true
}

// Pair 从字串扫描Key Value 值
type Pair struct {
	delim    rune
	delimLen int
	trimFunc func(r rune) bool
}

// NewPair 新建 Pair 扫描器
func NewPair(delim rune, trimFunc func(r rune) bool) Pair {
	if trimFunc == nil {
		trimFunc = func(r rune) bool { return false }
	}
	return Pair{
		delim:    delim,
		delimLen: utf8.RuneLen(delim),
		trimFunc: trimFunc,
	}
}

// Scan 提取 K V
func (p Pair) Scan(s string) (key, value string, found bool) {
	i := strings.IndexRune(s, p.delim)
	if i < 0 {
		return strings.TrimFunc(s, p.trimFunc), "", false
	}
	return strings.TrimFunc(s[:i], p.trimFunc),
		strings.TrimFunc(s[i+p.delimLen:], p.trimFunc), true
}

// Params 用 sep 拆分 s，再用 pair 提取每段的 Key Value 存入 params；
// 没有分隔符的段被忽略。
func Params(params map[string]string, s string, sep Scanner, pair Pair) {
	advance, ok := s, true
	var token string
	for ok {
		advance, token, ok = sep.Scan(advance)
		if k, v, found := pair.Scan(token); found && k != "" {
			params[k] = v
		}
	}
}
