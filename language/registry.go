package language

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnsupportedLanguage is matched by every UnsupportedLanguageError
var ErrUnsupportedLanguage = errors.New("unsupported language")

// UnsupportedLanguageError is returned for a language without adapter
type UnsupportedLanguageError struct {
	Language  string
	Supported []string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q (supported: %s)", e.Language, strings.Join(e.Supported, ", "))
}

// Is makes errors.Is(err, ErrUnsupportedLanguage) hold
func (e *UnsupportedLanguageError) Is(target error) bool {
	return target == ErrUnsupportedLanguage
}

// Registry maps language identifiers to adapters.
// All adapters are registered before the registry is shared.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds or replaces the adapter for name
func (r *Registry) Register(name string, a Adapter) {
	r.adapters[name] = a
}

// Get returns the adapter for name
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, &UnsupportedLanguageError{Language: name, Supported: r.Languages()}
	}
	return a, nil
}

// Languages returns registered identifiers in sorted order
func (r *Registry) Languages() []string {
	names := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// NewDefaultRegistry registers python3, cpp and java built from the toolchain
func NewDefaultRegistry(tc *Toolchain, opt Options) (*Registry, error) {
	if tc == nil {
		tc = DefaultToolchain()
	}
	e := newExecutor(tc.Env, opt)

	pyAdapter, err := newPython3(e, tc.Python3)
	if err != nil {
		return nil, err
	}
	cppAdapter, err := newCPP(e, tc.CPP)
	if err != nil {
		return nil, err
	}
	javaAdapter, err := newJava(e, tc.Java)
	if err != nil {
		return nil, err
	}

	r := NewRegistry()
	r.Register("python3", pyAdapter)
	r.Register("cpp", cppAdapter)
	r.Register("java", javaAdapter)
	return r, nil
}
