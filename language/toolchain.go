package language

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/shlex"
)

// Toolchain defines the commands used for each language, loaded from language.yaml
type Toolchain struct {
	Env     []string         `yaml:"env"`
	Python3 Python3Toolchain `yaml:"python3"`
	CPP     CPPToolchain     `yaml:"cpp"`
	Java    JavaToolchain    `yaml:"java"`
}

// Python3Toolchain defines the interpreter
type Python3Toolchain struct {
	Interpreter string `yaml:"interpreter"`
	Flags       string `yaml:"flags"`
}

// CPPToolchain defines the c++ compiler
type CPPToolchain struct {
	Compiler string `yaml:"compiler"`
	Flags    string `yaml:"flags"`
}

// JavaToolchain defines the java compiler and runtime
type JavaToolchain struct {
	Compiler     string `yaml:"compiler"`
	CompileFlags string `yaml:"compileFlags"`
	Runtime      string `yaml:"runtime"`
	RunFlags     string `yaml:"runFlags"`
}

// DefaultToolchain returns commands found on a typical linux host
func DefaultToolchain() *Toolchain {
	return &Toolchain{
		Env: []string{"PATH=/usr/local/bin:/usr/bin:/bin"},
		Python3: Python3Toolchain{
			Interpreter: "python3",
		},
		CPP: CPPToolchain{
			Compiler: "g++",
			Flags:    "-O2 -std=c++17",
		},
		Java: JavaToolchain{
			Compiler: "javac",
			Runtime:  "java",
		},
	}
}

// LoadToolchain reads the toolchain file at p. Keys absent from the file
// keep their defaults and a missing file yields the defaults.
func LoadToolchain(p string) (*Toolchain, error) {
	if p == "" {
		return DefaultToolchain(), nil
	}
	d, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultToolchain(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("toolchain: read %s: %w", p, err)
	}
	var tc Toolchain
	if err := yaml.Unmarshal(d, &tc); err != nil {
		return nil, fmt.Errorf("toolchain: parse %s: %w", p, err)
	}
	tc.fillDefaults(DefaultToolchain())
	return &tc, nil
}

func (tc *Toolchain) fillDefaults(def *Toolchain) {
	setDefault := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	if len(tc.Env) == 0 {
		tc.Env = def.Env
	}
	setDefault(&tc.Python3.Interpreter, def.Python3.Interpreter)
	setDefault(&tc.CPP.Compiler, def.CPP.Compiler)
	setDefault(&tc.CPP.Flags, def.CPP.Flags)
	setDefault(&tc.Java.Compiler, def.Java.Compiler)
	setDefault(&tc.Java.Runtime, def.Java.Runtime)
}

// command builds argv from an executable and a shell style flag string
func command(name, flags string, extra ...string) ([]string, error) {
	if name == "" {
		return nil, errors.New("toolchain: empty command")
	}
	f, err := shlex.Split(flags)
	if err != nil {
		return nil, fmt.Errorf("toolchain: flags %q: %w", flags, err)
	}
	args := make([]string, 0, 1+len(f)+len(extra))
	args = append(args, name)
	args = append(args, f...)
	return append(args, extra...), nil
}
