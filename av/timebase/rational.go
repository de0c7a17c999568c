// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package timebase 提供有理数时间基以及跨时间基的精确比较和换算。
//
// 所有比较均使用整数交叉相乘（128 位中间结果），不使用浮点除法，
// 保证在任何平台上相等时间戳的判定结果一致。
package timebase

import (
	"fmt"
	"math/big"
	"math/bits"
	"strconv"
	"time"
)

// Rational 有理数时间基，一个 tick 的时长为 Num/Den 秒
type Rational struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// 常用时间基
var (
	Second      = Rational{1, 1}
	Millisecond = Rational{1, 1000}
	Microsecond = Rational{1, 1000000}
	Nanosecond  = Rational{1, 1000000000}
	// MPEG 90kHz 时钟
	MPEG = Rational{1, 90000}
)

// New 创建时间基，分母总是规范为正数
func New(num, den int64) Rational {
	if den < 0 {
		num, den = -num, -den
	}
	return Rational{Num: num, Den: den}
}

// Rate 创建频率 rate 对应的时间基（1/rate）
func Rate(rate int) Rational {
	return New(1, int64(rate))
}

// Valid 时间基是否可用于计算
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// Float64 returns the rational as a float, for display only.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Invert 倒数，如时间基转帧率
func (r Rational) Invert() Rational {
	return New(r.Den, r.Num)
}

func (r Rational) String() string {
	return strconv.FormatInt(r.Num, 10) + "/" + strconv.FormatInt(r.Den, 10)
}

// MarshalText marshals the rational as "num/den".
func (r Rational) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses "num/den" or a plain integer rate denominator ("25" => 1/25).
func (r *Rational) UnmarshalText(text []byte) error {
	var num, den int64
	if n, err := fmt.Sscanf(string(text), "%d/%d", &num, &den); err == nil && n == 2 {
		if den == 0 {
			return fmt.Errorf("timebase: zero denominator in %q", text)
		}
		*r = New(num, den)
		return nil
	}
	rate, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil || rate <= 0 {
		return fmt.Errorf("timebase: unrecognized time base %q", text)
	}
	*r = New(1, rate)
	return nil
}

// int128 符号+幅值形式的 128 位整数，只用于比较
type int128 struct {
	neg    bool
	hi, lo uint64
}

func abs64(v int64) uint64 {
	if v < 0 {
		return uint64(-v) // MinInt64 wraps to 1<<63, which is the right magnitude
	}
	return uint64(v)
}

func mul128(a, b int64) int128 {
	hi, lo := bits.Mul64(abs64(a), abs64(b))
	return int128{
		neg: (a < 0) != (b < 0) && (hi|lo) != 0,
		hi:  hi,
		lo:  lo,
	}
}

func (x int128) cmp(y int128) int {
	if x.neg != y.neg {
		if x.neg {
			return -1
		}
		return 1
	}

	m := 0
	switch {
	case x.hi < y.hi:
		m = -1
	case x.hi > y.hi:
		m = 1
	case x.lo < y.lo:
		m = -1
	case x.lo > y.lo:
		m = 1
	}
	if x.neg {
		return -m
	}
	return m
}

// mul64 带溢出检测的乘法
func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	hi, lo := bits.Mul64(abs64(a), abs64(b))
	if hi != 0 || lo > 1<<63 {
		return 0, false
	}
	neg := (a < 0) != (b < 0)
	if lo == 1<<63 {
		if !neg {
			return 0, false
		}
		return -1 << 63, true
	}
	if neg {
		return -int64(lo), true
	}
	return int64(lo), true
}

// Compare 比较 a 个 ta 与 b 个 tb 的时间先后，
// 返回 -1 表示 a 在前，0 表示同时，1 表示 a 在后。
func Compare(a int64, ta Rational, b int64, tb Rational) int {
	if ta == tb && ta.Valid() {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}

	// a*ta.Num/ta.Den <=> b*tb.Num/tb.Den
	// a*(ta.Num*tb.Den) <=> b*(tb.Num*ta.Den)
	k1, ok1 := mul64(ta.Num, tb.Den)
	k2, ok2 := mul64(tb.Num, ta.Den)
	if ok1 && ok2 {
		return mul128(a, k1).cmp(mul128(b, k2))
	}

	lhs := new(big.Int).Mul(big.NewInt(a), new(big.Int).Mul(big.NewInt(ta.Num), big.NewInt(tb.Den)))
	rhs := new(big.Int).Mul(big.NewInt(b), new(big.Int).Mul(big.NewInt(tb.Num), big.NewInt(ta.Den)))
	return lhs.Cmp(rhs)
}

// Rescale 把时间基 from 下的 v 换算到时间基 to，
// 四舍五入（正负对称，.5 远离零）。to 不可为 0。
func Rescale(v int64, from, to Rational) int64 {
	if from == to {
		return v
	}
	if to.Num == 0 || from.Den == 0 {
		panic("timebase: rescale with zero time base")
	}

	num := new(big.Int).Mul(big.NewInt(v), big.NewInt(from.Num))
	num.Mul(num, big.NewInt(to.Den))
	den := new(big.Int).Mul(big.NewInt(from.Den), big.NewInt(to.Num))

	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		twice := new(big.Int).Abs(r)
		twice.Lsh(twice, 1)
		if twice.Cmp(new(big.Int).Abs(den)) >= 0 {
			if num.Sign()*den.Sign() < 0 {
				q.Sub(q, big.NewInt(1))
			} else {
				q.Add(q, big.NewInt(1))
			}
		}
	}
	return q.Int64()
}

// Timestamp 带时间基的时间戳
type Timestamp struct {
	Value int64    `json:"value"`
	Base  Rational `json:"base"`
}

// At 构造时间戳
func At(value int64, base Rational) Timestamp {
	return Timestamp{Value: value, Base: base}
}

// Compare 与另一个时间戳比较先后
func (ts Timestamp) Compare(other Timestamp) int {
	return Compare(ts.Value, ts.Base, other.Value, other.Base)
}

// Before reports whether ts is strictly earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	return ts.Compare(other) < 0
}

// After reports whether ts is strictly later than other.
func (ts Timestamp) After(other Timestamp) bool {
	return ts.Compare(other) > 0
}

// In 换算到另一个时间基
func (ts Timestamp) In(base Rational) Timestamp {
	return Timestamp{Value: Rescale(ts.Value, ts.Base, base), Base: base}
}

// Duration 换算为 time.Duration
func (ts Timestamp) Duration() time.Duration {
	return time.Duration(Rescale(ts.Value, ts.Base, Nanosecond))
}

// Seconds 以秒表示的时间，只用于显示
func (ts Timestamp) Seconds() float64 {
	return float64(ts.Value) * ts.Base.Float64()
}

// String 格式与 ffmpeg 的 av_ts2timestr 一致（%.6g 秒）
func (ts Timestamp) String() string {
	return strconv.FormatFloat(ts.Seconds(), 'g', 6, 64)
}
