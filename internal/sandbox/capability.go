package sandbox

import (
	"fmt"
	"path"
	"reflect"
	"sort"

	"github.com/traefik/yaegi/interp"

	"scenegen/internal/three"
)

// Capability is the single package a script may import. Symbols must hold
// exactly one entry keyed "<ImportPath>/<name>" and IsRoot decides whether a
// script's return value is acceptable.
type Capability struct {
	ImportPath string
	Symbols    interp.Exports
	IsRoot     func(any) bool
}

// SceneCapability exposes the three scene library and accepts *three.Scene.
func SceneCapability() Capability {
	return Capability{
		ImportPath: three.ImportPath,
		Symbols:    three.Symbols,
		IsRoot:     three.IsScene,
	}
}

// validate checks the capability and returns the package name and one
// exported function used to anchor the import.
func (c Capability) validate() (pkg, anchor string, err error) {
	if c.ImportPath == "" {
		return "", "", fmt.Errorf("capability has no import path")
	}
	if c.IsRoot == nil {
		return "", "", fmt.Errorf("capability %q has no root check", c.ImportPath)
	}
	if len(c.Symbols) != 1 {
		return "", "", fmt.Errorf("capability %q must export exactly one package, got %d", c.ImportPath, len(c.Symbols))
	}

	pkg = path.Base(c.ImportPath)
	syms, ok := c.Symbols[c.ImportPath+"/"+pkg]
	if !ok {
		return "", "", fmt.Errorf("capability symbols are not keyed by %q", c.ImportPath+"/"+pkg)
	}

	names := make([]string, 0, len(syms))
	for name, v := range syms {
		if v.IsValid() && v.Kind() == reflect.Func {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", "", fmt.Errorf("capability %q exports no functions", c.ImportPath)
	}
	sort.Strings(names)
	return pkg, names[0], nil
}
