// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dex2oat

import "strings"

// CompilerFilter is the optimization tier passed to every invocation.
const CompilerFilter = "speed"

// Request describes one compilation.
type Request struct {
	// DexFile is the bytecode input.
	DexFile string

	// OatFile and VdexFile are the compiled-code and verification-data
	// outputs.
	OatFile  string
	VdexFile string

	// BootClasspath is passed through unmodified, colon-joined, as the
	// boot image. Empty omits the flag.
	BootClasspath []string
}

// Arguments returns the compiler argument vector for request, without
// the binary itself:
//
//	--dex-file=<dex> --output-oat-file=<oat> --oat-file-format=vdex
//	--output-vdex-file=<vdex> --compiler-filter=speed [--boot-image=<a:b:...>]
func Arguments(request Request) []string {
	args := []string{
		"--dex-file=" + request.DexFile,
		"--output-oat-file=" + request.OatFile,
		"--oat-file-format=vdex",
		"--output-vdex-file=" + request.VdexFile,
		"--compiler-filter=" + CompilerFilter,
	}
	if len(request.BootClasspath) > 0 {
		args = append(args, "--boot-image="+strings.Join(request.BootClasspath, ":"))
	}
	return args
}
