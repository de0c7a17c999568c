// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// avmeta 输出 avmux 生成的文件的容器元数据。
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cnotch/avmux/service"
	"github.com/cnotch/xlog"
)

func main() {
	asJSON := flag.Bool("json", false, "Determines if metadata is printed as JSON")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: avmeta [options] input_file\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	result, err := service.Probe(flag.Arg(0))
	if err != nil {
		xlog.Errorf("%s", err.Error())
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "\t")
		err = enc.Encode(result)
	} else {
		err = result.WriteText(os.Stdout)
	}
	if err != nil {
		xlog.Errorf("%s", err.Error())
		os.Exit(1)
	}
}
