// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package odex

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/odexpatch/lib/apk"
	"github.com/bureau-foundation/odexpatch/lib/dex2oat"
	"github.com/bureau-foundation/odexpatch/lib/digest"
	"github.com/bureau-foundation/odexpatch/lib/testutil"
)

var dexPayload = []byte("dex\n035\x00LFoo;->bar()V")

func appEntries() []testutil.ArchiveEntry {
	return []testutil.ArchiveEntry{
		{Name: "AndroidManifest.xml", Data: []byte("<manifest package=\"com.example\"/>"), Method: testutil.MethodDeflate},
		{Name: "classes.dex", Data: dexPayload, Method: testutil.MethodDeflate},
		{Name: "resources.arsc", Data: bytes.Repeat([]byte{0x02, 0x00}, 512), Method: testutil.MethodStore},
		{Name: "lib/arm64-v8a/libfoo.so", Data: bytes.Repeat([]byte("ELF"), 300), Method: testutil.MethodZstd},
	}
}

// writeApp writes an archive named name into directory. Without dex the
// classes.dex entry is left out.
func writeApp(t *testing.T, directory, name string, withDex bool) string {
	t.Helper()
	if err := os.MkdirAll(directory, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	var entries []testutil.ArchiveEntry
	for _, entry := range appEntries() {
		if entry.Name == apk.PrimaryBytecode && !withDex {
			continue
		}
		entries = append(entries, entry)
	}
	path := filepath.Join(directory, name)
	testutil.WriteArchive(t, path, entries...)
	return path
}

type fixture struct {
	patcher  *Patcher
	compiler *testutil.FakeCompiler
	inputs   string
	outputs  string
	scratch  string
}

// newFixture builds a Patcher over a stub SDK root with fake as its
// runner. configure, when non-nil, adjusts the Config before New.
func newFixture(t *testing.T, fake *testutil.FakeCompiler, configure func(*Config)) *fixture {
	t.Helper()

	root := t.TempDir()
	sdkRoot := filepath.Join(root, "sdk")
	testutil.StubExecutable(t, filepath.Dir(dex2oat.SDKPath(sdkRoot)), dex2oat.BinaryName, "exit 0")

	config := DefaultConfig()
	config.SDKRoot = sdkRoot
	config.ScratchDirectory = filepath.Join(root, "tmp_odex_patcher")
	config.OutputDirectory = filepath.Join(root, "out")
	if configure != nil {
		configure(&config)
	}

	patcher, err := New(config, WithRunner(fake))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{
		patcher:  patcher,
		compiler: fake,
		inputs:   filepath.Join(root, "in"),
		outputs:  config.OutputDirectory,
		scratch:  config.ScratchDirectory,
	}
}

// requireScratchEmpty fails when any run directory or artifact is left
// in the workspace.
func requireScratchEmpty(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("reading scratch root: %v", err)
	}
	if len(entries) != 0 {
		var names []string
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Errorf("scratch root not cleaned up: %v", names)
	}
}

func TestOdex(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	source := writeApp(t, f.inputs, "app.apk", true)
	before, err := os.ReadFile(source)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	result := f.patcher.Odex(context.Background(), source)
	if result.Status != StatusSuccess {
		t.Fatalf("Odex status = %s (%s): %s", result.Status, result.Kind, result.Message)
	}
	wantOutput := filepath.Join(f.outputs, "app-odexed.apk")
	if result.OutputPath != wantOutput {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, wantOutput)
	}
	if result.Message != "Odexed APK created at: "+wantOutput {
		t.Errorf("Message = %q", result.Message)
	}
	if result.Source != source || result.Operation != OperationOdex || result.Kind != "" || result.Err != nil {
		t.Errorf("unexpected result fields: %+v", result)
	}

	entries := testutil.ReadArchive(t, wantOutput)
	wantNames := []string{
		"AndroidManifest.xml",
		"resources.arsc",
		"lib/arm64-v8a/libfoo.so",
		"oat/a/app.oat",
		"oat/a/app.vdex",
	}
	if names := testutil.EntryNames(entries); !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("output entries = %q, want %q", names, wantNames)
	}

	originals := make(map[string]testutil.ArchiveEntry)
	for _, entry := range appEntries() {
		originals[entry.Name] = entry
	}
	for _, entry := range entries[:3] {
		original := originals[entry.Name]
		if entry.Method != original.Method || !bytes.Equal(entry.Data, original.Data) {
			t.Errorf("entry %s changed: method %d, want %d", entry.Name, entry.Method, original.Method)
		}
	}
	if got := string(entries[3].Data); got != "oat:"+string(dexPayload) {
		t.Errorf("oat payload = %q", got)
	}
	if got := string(entries[4].Data); got != "vdex:"+string(dexPayload) {
		t.Errorf("vdex payload = %q", got)
	}
	for _, entry := range entries[3:] {
		if entry.Method != testutil.MethodDeflate {
			t.Errorf("artifact %s method = %d, want deflate", entry.Name, entry.Method)
		}
	}

	wantDigest, err := digest.HashFile(wantOutput)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if result.OutputDigest != digest.FormatDigest(wantDigest) {
		t.Errorf("OutputDigest = %q, want %q", result.OutputDigest, digest.FormatDigest(wantDigest))
	}

	after, err := os.ReadFile(source)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("source archive was modified")
	}

	calls := f.compiler.Calls()
	if len(calls) != 1 {
		t.Fatalf("compiler ran %d times, want 1", len(calls))
	}
	if calls[0][0] != f.patcher.Compiler() {
		t.Errorf("ran %q, want resolved compiler %q", calls[0][0], f.patcher.Compiler())
	}
	requireScratchEmpty(t, f.scratch)
}

func TestOdexArtifactCompression(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, func(config *Config) {
		config.ArtifactMethod = apk.Zstd
	})
	source := writeApp(t, f.inputs, "Settings.apk", true)

	result := f.patcher.Odex(context.Background(), source)
	if result.Status != StatusSuccess {
		t.Fatalf("Odex: %s", result.Message)
	}
	for _, entry := range testutil.ReadArchive(t, result.OutputPath) {
		if apk.IsArtifact(entry.Name) && entry.Method != testutil.MethodZstd {
			t.Errorf("artifact %s method = %d, want zstd", entry.Name, entry.Method)
		}
		if apk.IsArtifact(entry.Name) && !strings.HasPrefix(entry.Name, "oat/S/Settings.") {
			t.Errorf("artifact %s not sharded by the archive name", entry.Name)
		}
	}
}

func TestOdexFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture) string
		fake  *testutil.FakeCompiler
		want  Kind
	}{
		{
			name: "source not found",
			setup: func(t *testing.T, f *fixture) string {
				return filepath.Join(f.inputs, "absent.apk")
			},
			want: KindSourceNotFound,
		},
		{
			name: "source is a directory",
			setup: func(t *testing.T, f *fixture) string {
				directory := filepath.Join(f.inputs, "dir.apk")
				if err := os.MkdirAll(directory, 0o755); err != nil {
					t.Fatalf("MkdirAll: %v", err)
				}
				return directory
			},
			want: KindSourceNotFound,
		},
		{
			name: "invalid archive",
			setup: func(t *testing.T, f *fixture) string {
				path := filepath.Join(f.inputs, "garbage.apk")
				if err := os.MkdirAll(f.inputs, 0o755); err != nil {
					t.Fatalf("MkdirAll: %v", err)
				}
				if err := os.WriteFile(path, []byte("PK but not really"), 0o644); err != nil {
					t.Fatalf("WriteFile: %v", err)
				}
				return path
			},
			want: KindInvalidArchive,
		},
		{
			name: "missing classes.dex",
			setup: func(t *testing.T, f *fixture) string {
				return writeApp(t, f.inputs, "app.apk", false)
			},
			want: KindMissingPrimaryBytecode,
		},
		{
			name: "compiler exits non-zero",
			setup: func(t *testing.T, f *fixture) string {
				return writeApp(t, f.inputs, "app.apk", true)
			},
			fake: &testutil.FakeCompiler{Failures: map[string]int{"app": 1}, Stderr: "dex2oat: bad bytecode"},
			want: KindCompileFailed,
		},
		{
			name: "compiler cannot launch",
			setup: func(t *testing.T, f *fixture) string {
				return writeApp(t, f.inputs, "app.apk", true)
			},
			fake: &testutil.FakeCompiler{LaunchError: errors.New("fork/exec dex2oat: exec format error")},
			want: KindLaunchFailed,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			fake := test.fake
			if fake == nil {
				fake = &testutil.FakeCompiler{}
			}
			f := newFixture(t, fake, nil)
			source := test.setup(t, f)

			result := f.patcher.Odex(context.Background(), source)
			if result.Status != StatusError {
				t.Fatalf("status = %s, want error", result.Status)
			}
			if result.Kind != test.want {
				t.Errorf("Kind = %s, want %s (%s)", result.Kind, test.want, result.Message)
			}
			if KindOf(result.Err) != test.want {
				t.Errorf("KindOf(Err) = %s, want %s", KindOf(result.Err), test.want)
			}
			if result.Source != source {
				t.Errorf("Source = %q, want %q", result.Source, source)
			}
			if result.OutputPath != "" {
				t.Errorf("OutputPath = %q on failure", result.OutputPath)
			}
			if _, err := os.Stat(OutputPath(f.outputs, source, OperationOdex)); err == nil {
				t.Error("an output archive was written for a failed run")
			}
			requireScratchEmpty(t, f.scratch)
		})
	}
}

func TestOdexShortCircuits(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	source := writeApp(t, f.inputs, "app.apk", false)

	f.patcher.Odex(context.Background(), source)
	if calls := f.compiler.Calls(); len(calls) != 0 {
		t.Errorf("compiler ran %d times after extraction failed", len(calls))
	}
}

func TestOdexCompileFailureCarriesStderr(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeCompiler{
		Failures: map[string]int{"app": 2},
		Stderr:   "Failed to open dex file: bad magic",
	}
	f := newFixture(t, fake, nil)
	source := writeApp(t, f.inputs, "app.apk", true)

	result := f.patcher.Odex(context.Background(), source)
	if !strings.Contains(result.Message, "bad magic") {
		t.Errorf("Message = %q, want compiler stderr", result.Message)
	}
	if !errors.Is(result.Err, dex2oat.ErrCompileFailed) {
		t.Errorf("Err = %v, want dex2oat.ErrCompileFailed in chain", result.Err)
	}
}

func TestOdexTimeout(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeCompiler{Release: make(chan struct{})}
	f := newFixture(t, fake, func(config *Config) {
		config.CompileTimeout = 20 * time.Millisecond
	})
	source := writeApp(t, f.inputs, "app.apk", true)

	result := f.patcher.Odex(context.Background(), source)
	if result.Kind != KindCompileTimeout {
		t.Fatalf("Kind = %s (%s), want compile_timeout", result.Kind, result.Message)
	}
	requireScratchEmpty(t, f.scratch)
}

func TestOdexCanceled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	source := writeApp(t, f.inputs, "app.apk", true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.patcher.Odex(ctx, source)
	if result.Kind != KindCanceled {
		t.Fatalf("Kind = %s, want canceled", result.Kind)
	}
	if len(f.compiler.Calls()) != 0 {
		t.Error("compiler ran for a canceled context")
	}
}

func TestOdexOverwritesPreviousOutput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	source := writeApp(t, f.inputs, "app.apk", true)
	if err := os.MkdirAll(f.outputs, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	stale := OutputPath(f.outputs, source, OperationOdex)
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result := f.patcher.Odex(context.Background(), source)
	if result.Status != StatusSuccess {
		t.Fatalf("Odex: %s", result.Message)
	}
	if names := testutil.EntryNames(testutil.ReadArchive(t, stale)); len(names) != 5 {
		t.Errorf("output entries = %q", names)
	}
}

func TestStrip(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	entries := append(appEntries(),
		testutil.ArchiveEntry{Name: "oat/a/app.oat", Data: []byte("compiled"), Method: testutil.MethodDeflate},
		testutil.ArchiveEntry{Name: "oat/a/app.vdex", Data: []byte("verified"), Method: testutil.MethodStore},
		testutil.ArchiveEntry{Name: "assets/oat/readme.txt", Data: []byte("not an artifact"), Method: testutil.MethodDeflate},
	)
	if err := os.MkdirAll(f.inputs, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	source := filepath.Join(f.inputs, "app.apk")
	testutil.WriteArchive(t, source, entries...)

	result := f.patcher.Strip(context.Background(), source)
	if result.Status != StatusSuccess {
		t.Fatalf("Strip status = %s: %s", result.Status, result.Message)
	}
	wantOutput := filepath.Join(f.outputs, "app-deodexed.apk")
	if result.OutputPath != wantOutput {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, wantOutput)
	}
	if result.Message != "Deodexed APK created at: "+wantOutput+" (OAT/VDEX removed)" {
		t.Errorf("Message = %q", result.Message)
	}

	wantNames := []string{"AndroidManifest.xml", "resources.arsc", "lib/arm64-v8a/libfoo.so", "assets/oat/readme.txt"}
	if names := testutil.EntryNames(testutil.ReadArchive(t, wantOutput)); !reflect.DeepEqual(names, wantNames) {
		t.Errorf("output entries = %q, want %q", names, wantNames)
	}
	if len(f.compiler.Calls()) != 0 {
		t.Error("strip must not invoke the compiler")
	}
}

func TestStripOdexedOutput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	source := writeApp(t, f.inputs, "app.apk", true)

	odexed := f.patcher.Odex(context.Background(), source)
	if odexed.Status != StatusSuccess {
		t.Fatalf("Odex: %s", odexed.Message)
	}

	// An odexed archive no longer carries classes.dex, so stripping it
	// writes the output but warns.
	stripped := f.patcher.Strip(context.Background(), odexed.OutputPath)
	if stripped.Status != StatusWarning {
		t.Fatalf("Strip status = %s, want warning", stripped.Status)
	}
	if stripped.Kind != KindAlreadyStripped {
		t.Errorf("Kind = %s, want already_stripped", stripped.Kind)
	}
	if !strings.Contains(stripped.Message, "already deodexed?") {
		t.Errorf("Message = %q", stripped.Message)
	}
	if stripped.Failed() {
		t.Error("a warning must not count as a failure")
	}
	wantOutput := filepath.Join(f.outputs, "app-odexed-deodexed.apk")
	if stripped.OutputPath != wantOutput {
		t.Errorf("OutputPath = %q, want %q", stripped.OutputPath, wantOutput)
	}

	var want []testutil.ArchiveEntry
	for _, entry := range appEntries() {
		if entry.Name != apk.PrimaryBytecode {
			want = append(want, entry)
		}
	}
	if got := testutil.ReadArchive(t, wantOutput); !reflect.DeepEqual(got, want) {
		t.Errorf("output entries = %q, want %q", testutil.EntryNames(got), testutil.EntryNames(want))
	}
}

func TestStripFailures(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)

	result := f.patcher.Strip(context.Background(), filepath.Join(f.inputs, "absent.apk"))
	if result.Kind != KindSourceNotFound {
		t.Errorf("absent source Kind = %s, want source_not_found", result.Kind)
	}

	if err := os.MkdirAll(f.inputs, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	garbage := filepath.Join(f.inputs, "garbage.apk")
	if err := os.WriteFile(garbage, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	result = f.patcher.Strip(context.Background(), garbage)
	if result.Kind != KindInvalidArchive {
		t.Errorf("garbage source Kind = %s, want invalid_archive", result.Kind)
	}
	if _, err := os.Stat(OutputPath(f.outputs, garbage, OperationStrip)); err == nil {
		t.Error("an output archive was written for an unreadable source")
	}
}

func TestNewToolNotFound(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.SDKRoot = t.TempDir()
	config.ScratchDirectory = filepath.Join(t.TempDir(), "scratch")

	_, err := New(config)
	if !errors.Is(err, dex2oat.ErrToolNotFound) {
		t.Fatalf("New error = %v, want dex2oat.ErrToolNotFound", err)
	}
	if KindOf(err) != KindToolNotFound {
		t.Errorf("KindOf = %s, want tool_not_found", KindOf(err))
	}
	if _, err := os.Stat(config.ScratchDirectory); err == nil {
		t.Error("scratch workspace created although the compiler is missing")
	}
}

func TestNewIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	marker := filepath.Join(f.scratch, "keep")
	if err := os.WriteFile(marker, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	config := f.patcher.config
	second, err := New(config)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}
	if second.ScratchRoot() != f.patcher.ScratchRoot() {
		t.Errorf("ScratchRoot = %q, want %q", second.ScratchRoot(), f.patcher.ScratchRoot())
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("existing workspace contents lost: %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, func(config *Config) {
		config.Workers = 0
		config.OutputDirectory = ""
	})
	if f.patcher.config.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", f.patcher.config.Workers, DefaultWorkers)
	}
	if f.patcher.config.OutputDirectory != DefaultOutputDirectory {
		t.Errorf("OutputDirectory = %q, want %q", f.patcher.config.OutputDirectory, DefaultOutputDirectory)
	}
}

func TestPurge(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	leftover := filepath.Join(f.scratch, "app-deadbeef0000")
	if err := os.MkdirAll(leftover, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := f.patcher.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	info, err := os.Stat(f.scratch)
	if err != nil || !info.IsDir() {
		t.Fatalf("scratch root missing after Purge: %v", err)
	}
	requireScratchEmpty(t, f.scratch)
}

func TestLogging(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	f.patcher.logger = logger
	good := writeApp(t, f.inputs, "good.apk", true)
	bad := writeApp(t, f.inputs, "bad.apk", false)

	f.patcher.Odex(context.Background(), good)
	f.patcher.Odex(context.Background(), bad)

	output := buffer.String()
	for _, want := range []string{
		"msg=\"archive processed\"",
		"msg=\"archive failed\"",
		"kind=missing_primary_bytecode",
		"msg=\"compiled bytecode\"",
		"source=" + good,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("log output missing %q:\n%s", want, output)
		}
	}
}

func TestStripWithoutBytecodeKeepsEveryEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	source := writeApp(t, f.inputs, "plain.apk", false)
	want := testutil.ReadArchive(t, source)

	result := f.patcher.Strip(context.Background(), source)
	if result.Status != StatusWarning {
		t.Fatalf("Strip status = %s, want warning", result.Status)
	}

	got := testutil.ReadArchive(t, result.OutputPath)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stripped archive differs from its input:\n got %+v\nwant %+v", got, want)
	}
}

func TestOdexPerCallOverrides(t *testing.T) {
	t.Parallel()

	fake := &testutil.FakeCompiler{}
	f := newFixture(t, fake, func(config *Config) {
		config.BootClasspath = []string{"/system/framework/core-oj.jar"}
	})
	source := writeApp(t, f.inputs, "app.apk", true)
	elsewhere := filepath.Join(t.TempDir(), "elsewhere")

	defaulted := f.patcher.Odex(context.Background(), source)
	overridden := f.patcher.Odex(context.Background(), source,
		WithOutputDirectory(elsewhere), WithBootClasspath("/a.jar", "/b.jar"))
	cleared := f.patcher.Odex(context.Background(), source, WithBootClasspath())

	if defaulted.OutputPath != filepath.Join(f.outputs, "app-odexed.apk") {
		t.Errorf("default OutputPath = %q", defaulted.OutputPath)
	}
	if overridden.OutputPath != filepath.Join(elsewhere, "app-odexed.apk") {
		t.Errorf("overridden OutputPath = %q", overridden.OutputPath)
	}
	if cleared.OutputPath != defaulted.OutputPath {
		t.Errorf("boot classpath override moved the output to %q", cleared.OutputPath)
	}

	calls := fake.Calls()
	if len(calls) != 3 {
		t.Fatalf("compiler ran %d times, want 3", len(calls))
	}
	bootImage := func(call []string) string {
		for _, arg := range call {
			if strings.HasPrefix(arg, "--boot-image=") {
				return arg
			}
		}
		return ""
	}
	if got := bootImage(calls[0]); got != "--boot-image=/system/framework/core-oj.jar" {
		t.Errorf("default run boot image = %q", got)
	}
	if got := bootImage(calls[1]); got != "--boot-image=/a.jar:/b.jar" {
		t.Errorf("overridden run boot image = %q", got)
	}
	if got := bootImage(calls[2]); got != "" {
		t.Errorf("cleared run boot image = %q, want none", got)
	}
}

func TestStripOutputDirectoryOverride(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	source := writeApp(t, f.inputs, "app.apk", true)
	elsewhere := filepath.Join(t.TempDir(), "elsewhere")

	result := f.patcher.Strip(context.Background(), source, WithOutputDirectory(elsewhere))
	if result.OutputPath != filepath.Join(elsewhere, "app-deodexed.apk") {
		t.Errorf("OutputPath = %q", result.OutputPath)
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Errorf("output missing: %v", err)
	}
	if _, err := os.Stat(f.outputs); err == nil {
		t.Error("configured output directory was used despite the override")
	}
}

func TestConfigLiteralStoresArtifacts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	sdkRoot := filepath.Join(root, "sdk")
	testutil.StubExecutable(t, filepath.Dir(dex2oat.SDKPath(sdkRoot)), dex2oat.BinaryName, "exit 0")

	// A literal leaves ArtifactMethod at its zero value, apk.Store.
	patcher, err := New(Config{
		SDKRoot:          sdkRoot,
		ScratchDirectory: filepath.Join(root, "scratch"),
		OutputDirectory:  filepath.Join(root, "out"),
	}, WithRunner(&testutil.FakeCompiler{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if DefaultConfig().ArtifactMethod != apk.Deflate {
		t.Errorf("DefaultConfig().ArtifactMethod = %v, want deflate", DefaultConfig().ArtifactMethod)
	}

	source := writeApp(t, filepath.Join(root, "in"), "app.apk", true)
	result := patcher.Odex(context.Background(), source)
	if result.Status != StatusSuccess {
		t.Fatalf("Odex: %s", result.Message)
	}
	for _, entry := range testutil.ReadArchive(t, result.OutputPath) {
		if apk.IsArtifact(entry.Name) && entry.Method != testutil.MethodStore {
			t.Errorf("artifact %s method = %d, want store", entry.Name, entry.Method)
		}
	}
}

func TestOdexDotOnlyName(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &testutil.FakeCompiler{}, nil)
	source := writeApp(t, f.inputs, ".apk", true)

	result := f.patcher.Odex(context.Background(), source)
	if result.Status != StatusSuccess {
		t.Fatalf("Odex: %s", result.Message)
	}
	if want := filepath.Join(f.outputs, ".apk-odexed.apk"); result.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, want)
	}
	names := testutil.EntryNames(testutil.ReadArchive(t, result.OutputPath))
	wantNames := []string{
		"AndroidManifest.xml",
		"resources.arsc",
		"lib/arm64-v8a/libfoo.so",
		"oat/./.apk.oat",
		"oat/./.apk.vdex",
	}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("output entries = %q, want %q", names, wantNames)
	}
}
