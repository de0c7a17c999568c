// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// EncodeJSONFile 以缩进格式把 obj 编码到 path，必要时创建目录
func EncodeJSONFile(path string, obj interface{}) error {
	body, err := json.MarshalIndent(obj, "", "\t")
	if err != nil {
		return errors.Wrap(err, "encode json")
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.Wrapf(err, "create directory of '%s'", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "open '%s'", path)
	}
	defer f.Close()

	if _, err := f.Write(append(body, '\n')); err != nil {
		return errors.Wrapf(err, "write '%s'", path)
	}
	return f.Sync()
}
