package language

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadToolchainMissing(t *testing.T) {
	tc, err := LoadToolchain(filepath.Join(t.TempDir(), "language.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if tc.CPP.Compiler != "g++" || tc.Python3.Interpreter != "python3" {
		t.Errorf("expected defaults, got %+v", tc)
	}
}

func TestLoadToolchain(t *testing.T) {
	p := filepath.Join(t.TempDir(), "language.yaml")
	conf := `
env:
  - PATH=/opt/bin:/usr/bin
cpp:
  compiler: clang++
  flags: '-O0 -DLOCAL "-I/opt/my include"'
java:
  runFlags: -Xss64m
`
	if err := os.WriteFile(p, []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}
	tc, err := LoadToolchain(p)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(tc.Env, []string{"PATH=/opt/bin:/usr/bin"}) {
		t.Errorf("env = %v", tc.Env)
	}
	// unset keys keep defaults
	if tc.Java.Compiler != "javac" || tc.Java.Runtime != "java" || tc.Python3.Interpreter != "python3" {
		t.Errorf("defaults overwritten: %+v", tc)
	}

	args, err := command(tc.CPP.Compiler, tc.CPP.Flags, "solution.cpp")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"clang++", "-O0", "-DLOCAL", "-I/opt/my include", "solution.cpp"}
	if !slices.Equal(args, want) {
		t.Errorf("args = %q, want %q", args, want)
	}
}

func TestLoadToolchainInvalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "language.yaml")
	if err := os.WriteFile(p, []byte("cpp: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadToolchain(p); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCommandEmpty(t *testing.T) {
	if _, err := command("", "-O2"); err == nil {
		t.Fatal("expected error for empty command")
	}
}
