// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunGeneratesOutput(t *testing.T) {
	dir := t.TempDir()
	fixturePath := filepath.Join(dir, "design.json")
	if err := os.WriteFile(fixturePath, []byte(sampleFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "design.cc")

	if err := run([]string{"-input", fixturePath, "-O2", outPath}); err != nil {
		t.Fatalf("run: %v", err)
	}
	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "namespace cxxrtl_design") {
		t.Fatalf("output missing expected namespace wrapper:\n%s", out)
	}
	if !strings.Contains(string(out), "struct") {
		t.Fatalf("output missing expected struct declaration:\n%s", out)
	}
}

func TestRunRequiresInput(t *testing.T) {
	if err := run([]string{"out.cc"}); err == nil {
		t.Fatal("run: expected error when -input is missing")
	}
}

func TestRunRejectsInvalidOptLevel(t *testing.T) {
	dir := t.TempDir()
	fixturePath := filepath.Join(dir, "design.json")
	if err := os.WriteFile(fixturePath, []byte(sampleFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run([]string{"-input", fixturePath, "-O", "9", filepath.Join(dir, "design.cc")}); err == nil {
		t.Fatal("run: expected error for optimization level 9")
	}
}

func TestRunHeaderRequiresNamedOutput(t *testing.T) {
	dir := t.TempDir()
	fixturePath := filepath.Join(dir, "design.json")
	if err := os.WriteFile(fixturePath, []byte(sampleFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run([]string{"-input", fixturePath, "-header"}); err == nil {
		t.Fatal("run: expected error when -header is used without a named output file")
	}
}
