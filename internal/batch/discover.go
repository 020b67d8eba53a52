// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package batch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/edsrzf/mmap-go"
)

const (
	SourceExt = ".py"
	TargetExt = ".lua"
)

// Discover walks input, a file or a directory, and returns the source
// files and the other regular files beneath it, each sorted. A single
// input file is returned as a source whatever its extension.
func Discover(input string) (sources, assets []string, err error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil, nil
	}
	err = filepath.Walk(input, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if strings.HasSuffix(path, SourceExt) {
			sources = append(sources, path)
		} else {
			assets = append(assets, path)
		}
		return nil
	})
	sort.Strings(sources)
	sort.Strings(assets)
	return sources, assets, err
}

// Mirror returns where the file at path under input goes under output.
// Source files get the target extension.
func Mirror(input, output, path string) (string, error) {
	rel := filepath.Base(path)
	if info, err := os.Stat(input); err == nil && info.IsDir() {
		if rel, err = filepath.Rel(input, path); err != nil {
			return "", err
		}
	}
	if strings.HasSuffix(rel, SourceExt) {
		rel = strings.TrimSuffix(rel, SourceExt) + TargetExt
	} else if path == input {
		rel += TargetExt
	}
	return filepath.Join(output, rel), nil
}

// readSource maps a source file into memory and copies it into a string.
func readSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	// Zero-length files cannot be mapped.
	if info.Size() == 0 {
		return "", nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return "", err
	}
	defer m.Unmap()
	return string(m), nil
}
