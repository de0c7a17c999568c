// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scan

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestScanner_Scan(t *testing.T) {
	advance, token, ok := Semicolon.Scan("width=352; height=288;depth=8")
	assert.True(t, ok)
	assert.Equal(t, "width=352", token)
	assert.Equal(t, "height=288;depth=8", advance)

	i := 0
	for ok {
		advance, token, ok = Semicolon.Scan(advance)
		if ok {
			i++
		}
	}
	assert.Equal(t, 1, i)
	assert.Equal(t, "depth=8", token)
}

func TestPair_Scan(t *testing.T) {
	tests := []struct {
		name      string
		args      string
		wantKey   string
		wantValue string
		wantOk    bool
	}{
		{"plain", "a=chj", "a", "chj", true},
		{"quoted", "a=\"chj\"", "a", "chj", true},
		{"spaces", " \ta=  \"chj\"\t", "a", "chj", true},
		{"no delim", " flag ", "flag", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotKey, gotValue, gotOk := EqualPair.Scan(tt.args)
			assert.Equal(t, tt.wantKey, gotKey)
			assert.Equal(t, tt.wantValue, gotValue)
			assert.Equal(t, tt.wantOk, gotOk)
		})
	}
}

func TestPair_ScanMultiRune(t *testing.T) {
	chinesePair := NewPair('是', unicode.IsSpace)
	k, v, ok := chinesePair.Scan("a是 chj\t")
	assert.True(t, ok)
	assert.Equal(t, "a", k)
	assert.Equal(t, "chj", v)
}

func TestParams(t *testing.T) {
	params := make(map[string]string)
	Params(params, "sampling=YCbCr-4:2:0; width=352; bogus; =x; exactframerate=25", Semicolon, EqualPair)
	assert.Equal(t, map[string]string{
		"sampling":       "YCbCr-4:2:0",
		"width":          "352",
		"exactframerate": "25",
	}, params)
}
