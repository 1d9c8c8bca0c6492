package onnxmodel

import (
	"os"
	"path/filepath"
	"runtime"
)

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// BundledLibDir is the directory name under which platform-specific
// ONNX Runtime shared libraries are stored, e.g.
// lib/darwin_arm64/libonnxruntime.dylib.
const BundledLibDir = "lib"

// DataDir is the directory where model files and, optionally, the
// runtime library are stored, e.g. data/onnxruntime_arm64.dylib.
const DataDir = "data"

func bundledLibNames() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"libonnxruntime.dylib"}
	case "windows":
		return []string{"onnxruntime.dll"}
	default:
		return []string{"libonnxruntime.so.1.23.2", "libonnxruntime.so"}
	}
}

func dataDirLibName() string {
	switch runtime.GOOS {
	case "darwin":
		return "onnxruntime_" + runtime.GOARCH + ".dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "onnxruntime_" + runtime.GOARCH + ".so"
	}
}

func bundledLibPlatform() string {
	return runtime.GOOS + "_" + runtime.GOARCH
}

func candidateBaseDirs() []string {
	cwd, _ := os.Getwd()
	exe, err := os.Executable()
	if err != nil {
		return []string{cwd}
	}
	exeDir := filepath.Dir(exe)
	if exeDir == cwd {
		return []string{cwd}
	}
	return []string{cwd, exeDir}
}

// ResolveBundledLibrary searches, in order, DataDir (platform-named
// file) then BundledLibDir/<platform>/ (standard name) under the
// working directory and the running executable's directory, returning
// the first path found or "" if none exists. Session.Open calls this
// when no explicit shared-library path is configured, so a binary
// shipped with a data/ or lib/ directory next to it needs no extra
// configuration.
func ResolveBundledLibrary() string {
	bases := candidateBaseDirs()
	platform := bundledLibPlatform()
	dataName := dataDirLibName()
	for _, base := range bases {
		if base == "" {
			continue
		}
		p := filepath.Join(base, DataDir, dataName)
		if pathExists(p) {
			return p
		}
	}
	for _, base := range bases {
		if base == "" {
			continue
		}
		for _, name := range bundledLibNames() {
			p := filepath.Join(base, BundledLibDir, platform, name)
			if pathExists(p) {
				return p
			}
		}
	}
	return ""
}
