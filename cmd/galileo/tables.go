// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"strconv"
	"strings"

	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/eltwise"
	"github.com/gomlx/galileo/ui/commandline"
)

func dtypesTable() string {
	rows := make([][]string, 0, dtypes.NumDTypes)
	for _, dtype := range dtypes.All() {
		pjrt := dtype.PJRTName()
		if pjrt == "" {
			pjrt = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(int(dtype)),
			dtype.String(),
			dtype.CName(),
			dtype.GoStr(),
			strconv.Itoa(dtype.Size()),
			pjrt,
		})
	}
	return commandline.RenderTable([]string{"Tag", "DType", "C Name", "Go Type", "Bytes", "PJRT"}, rows)
}

func opsTable() string {
	ops := eltwise.Ops()
	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		names := make([]string, 0, dtypes.NumDTypes)
		for _, dtype := range op.TypePolicy().DTypes() {
			names = append(names, dtype.String())
		}
		rows = append(rows, []string{
			op.OpName(),
			strconv.Itoa(op.Arity()),
			op.TypePolicy().String(),
			strings.Join(names, " "),
		})
	}
	return commandline.RenderTable([]string{"Operation", "Arity", "Policy", "DTypes"}, rows)
}
