// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Odexpatch converts Android application archives between dex bytecode
// and ahead-of-time compiled form. "odex" runs dex2oat over each
// archive's classes.dex and writes <name>-odexed.apk with the .oat and
// .vdex artifacts under oat/; "deodex" writes <name>-deodexed.apk with
// classes.dex and oat/ removed. Archives are processed concurrently and
// a failure in one never affects the others.
package main
