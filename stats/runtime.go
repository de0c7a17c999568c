// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats

import (
	"runtime"
	"time"

	"github.com/kelindar/process"
)

// 创建时间
var (
	StartingTime = time.Now()
)

// Runtime 运行结束时的内存统计
type Runtime struct {
	Heap Heap `json:"heap"`
	GC   GC   `json:"gc"`
	Go   Go   `json:"go"`
}

// Proc 进程信息统计
type Proc struct {
	CPU    float64 `json:"cpu"`    // cpu使用情况
	Priv   int32   `json:"priv"`   // 私有内存 KB
	Virt   int32   `json:"virt"`   // 虚拟内存 KB
	Uptime int32   `json:"uptime"` // 运行时间 S
}

// Heap 运行是堆信息
type Heap struct {
	Inuse   int32 `json:"inuse"`   // KB MemStats.HeapInuse
	Sys     int32 `json:"sys"`     // KB MemStats.HeapSys
	Alloc   int32 `json:"alloc"`   // KB MemStats.HeapAlloc
	Objects int32 `json:"objects"` // = MemStats.HeapObjects
}

// GC 垃圾回收信息
type GC struct {
	CPU   float64 `json:"cpu"`   // cpu使用情况
	Count uint32  `json:"count"` // MemStats.NumGC
	Sys   int32   `json:"sys"`   // KB MemStats.GCSys
}

// Go Go运行时 goroutines 和 total memory
type Go struct {
	Count int32 `json:"count"` // runtime.NumGoroutine()
	Sys   int32 `json:"sys"`   // KB MemStats.Sys
	Alloc int32 `json:"alloc"` // KB MemStats.TotalAlloc，合成的帧都在这里
}

// MeasureRuntime 获取进程信息，读取失败时只有 Uptime 有效
func MeasureRuntime() (proc Proc) {
	proc.Uptime = int32(time.Since(StartingTime).Seconds())
	defer func() { recover() }()

	var memoryPriv, memoryVirtual int64
	var cpu float64
	process.ProcUsage(&cpu, &memoryPriv, &memoryVirtual)
	return Proc{
		CPU:    cpu,
		Priv:   toKB(uint64(memoryPriv)),
		Virt:   toKB(uint64(memoryVirtual)),
		Uptime: proc.Uptime,
	}
}

// MeasureFullRuntime 获取运行时信息。
func MeasureFullRuntime() *Runtime {
	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)

	return &Runtime{
		Heap: Heap{
			Alloc:   toKB(memory.HeapAlloc),
			Inuse:   toKB(memory.HeapInuse),
			Objects: int32(memory.HeapObjects),
			Sys:     toKB(memory.HeapSys),
		},
		GC: GC{
			CPU:   memory.GCCPUFraction,
			Count: memory.NumGC,
			Sys:   toKB(memory.GCSys),
		},
		Go: Go{
			Count: int32(runtime.NumGoroutine()),
			Sys:   toKB(memory.Sys),
			Alloc: toKB(memory.TotalAlloc),
		},
	}
}

// Converts the memory in bytes to KBs, otherwise it would overflow our int32
func toKB(v uint64) int32 {
	return int32(v / 1024)
}
