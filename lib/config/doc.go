// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads odexpatch configuration files.
//
// Configuration comes from a single file named by either the
// ODEXPATCH_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no automatic file search. Without a file,
// [Default] applies and command-line flags fill in the rest.
//
// YAML is the primary format. Files ending in .json or .jsonc are read
// as JSON extended with comments and trailing commas, matching the
// other authored configuration in the tree.
//
// Path fields (sdk_root, scratch_directory, output_directory, and each
// boot_classpath entry) undergo ${VAR} and ${VAR:-default} expansion
// after loading. ${SDK_ROOT} refers to the expanded sdk_root.
//
// Key exports:
//
//   - [Config] -- the file schema
//   - [Default] -- defaults matching the patcher's
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Patcher] -- validation and conversion to odex.Config
package config
