// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "report.json")
	require.NoError(t, EncodeJSONFile(path, map[string]int{"frames": 3}))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"frames\": 3\n}\n", string(body))

	assert.Error(t, EncodeJSONFile(path, func() {}), "functions cannot be encoded")
}
