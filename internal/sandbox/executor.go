// Package sandbox runs untrusted scene scripts in a yaegi interpreter that
// can see exactly one package: the capability handed to Execute. Scripts get
// no standard library, no filesystem, no environment, no goroutines and no
// function literals.
package sandbox

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"

	"scenegen/internal/logging"
	"scenegen/internal/types"
)

const (
	// scriptFile is the name positions in script errors are reported against.
	scriptFile = "script"

	// entryPoint is the function the script body is wrapped in.
	entryPoint = "Build"

	maxCapturedOutput = 64 << 10
)

// Executor interprets scripts. It holds no state between calls: every
// Execute gets a fresh interpreter.
type Executor struct{}

// NewExecutor creates an executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute interprets script as the body of a function returning the root
// object and returns that object. Failures are *types.Error with kind
// KindScriptSyntax, KindScriptRuntime or KindScriptContract.
func (e *Executor) Execute(script string, capability Capability) (result any, err error) {
	timer := logging.StartTimer(logging.CategorySandbox, "Execute")
	defer timer.Stop()

	pkg, anchor, err := capability.validate()
	if err != nil {
		return nil, types.NewError(types.KindScriptRuntime, "sandbox.Execute", err)
	}

	src := wrap(script, capability.ImportPath, pkg, anchor)
	if err := check(src); err != nil {
		return nil, err
	}

	var output limitedBuffer
	i := interp.New(interp.Options{
		SourcecodeFilesystem: emptyFS{},
		Stdin:                strings.NewReader(""),
		Stdout:               &output,
		Stderr:               &output,
		Env:                  []string{},
		Args:                 []string{},
	})
	if err := i.Use(capability.Symbols); err != nil {
		return nil, types.NewError(types.KindScriptRuntime, "sandbox.Execute", fmt.Errorf("failed to load capability %q: %w", capability.ImportPath, err))
	}

	if _, err := eval(i, src); err != nil {
		return nil, evalError(err)
	}
	v, err := eval(i, "main."+entryPoint)
	if err != nil {
		return nil, evalError(err)
	}
	build, ok := v.Interface().(func() interface{})
	if !ok {
		return nil, types.NewError(types.KindScriptContract, "sandbox.Execute",
			fmt.Errorf("entry point has type %s", v.Type()))
	}

	result, err = call(build)
	if output.Len() > 0 {
		logging.SandboxDebug("script output (%d bytes): %s", output.Len(), output.String())
	}
	if err != nil {
		return nil, types.NewError(types.KindScriptRuntime, "sandbox.Execute", err)
	}

	if result == nil {
		return nil, types.NewError(types.KindScriptContract, "sandbox.Execute",
			fmt.Errorf("script returned nil"))
	}
	if !capability.IsRoot(result) {
		return nil, types.NewError(types.KindScriptContract, "sandbox.Execute",
			fmt.Errorf("script returned %T, not a %s root", result, pkg))
	}
	logging.SandboxDebug("script produced %T", result)
	return result, nil
}

// eval runs one interpreter step. The yaegi compiler can panic on input it
// does not support; such panics come back as errors.
func eval(i *interp.Interpreter, src string) (v reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("interpreter rejected script: %v", r)
		}
	}()
	return i.Eval(src)
}

// evalError classifies an Eval failure. Code that ran and panicked is a
// runtime error; everything else failed to compile.
func evalError(err error) error {
	var p interp.Panic
	if errors.As(err, &p) {
		return types.NewError(types.KindScriptRuntime, "sandbox.Execute", fmt.Errorf("panic: %v", p.Value))
	}
	return types.NewError(types.KindScriptSyntax, "sandbox.Execute", err)
}

func call(fn func() interface{}) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(), nil
}

// wrap places script inside the entry point. The line directive makes
// positions in parse and compile errors refer to lines of the script itself.
func wrap(script, importPath, pkg, anchor string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "package main\n\nimport %q\n\nvar _ = %s.%s\n\n", importPath, pkg, anchor)
	fmt.Fprintf(&b, "func %s() interface{} {\n//line %s:1\n", entryPoint, scriptFile)
	b.WriteString(script)
	b.WriteString("\n}\n")
	return b.String()
}

// check parses the wrapped source and enforces the shape of a script before
// it reaches the interpreter.
func check(src string) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, scriptFile, src, parser.SkipObjectResolution)
	if err != nil {
		return types.NewError(types.KindScriptSyntax, "sandbox.check", err)
	}

	// import, anchor var and the entry point; anything else means the script
	// closed the function body early.
	if len(file.Decls) != 3 || len(file.Imports) != 1 {
		return types.NewError(types.KindScriptSyntax, "sandbox.check",
			fmt.Errorf("script must be a single function body"))
	}
	fn, ok := file.Decls[2].(*ast.FuncDecl)
	if !ok || fn.Name.Name != entryPoint || fn.Recv != nil {
		return types.NewError(types.KindScriptSyntax, "sandbox.check",
			fmt.Errorf("script must be a single function body"))
	}

	// Without function literals a script cannot recurse, so it cannot
	// overflow the stack.
	var banned ast.Node
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.GoStmt, *ast.FuncLit:
			banned = n
		}
		return banned == nil
	})
	switch banned.(type) {
	case *ast.GoStmt:
		return types.NewError(types.KindScriptSyntax, "sandbox.check",
			fmt.Errorf("%s: go statements are not allowed", fset.Position(banned.Pos())))
	case *ast.FuncLit:
		return types.NewError(types.KindScriptSyntax, "sandbox.check",
			fmt.Errorf("%s: function literals are not allowed", fset.Position(banned.Pos())))
	}

	returns := 0
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if _, ok := n.(*ast.ReturnStmt); ok {
			returns++
		}
		return true
	})
	if returns == 0 {
		return types.NewError(types.KindScriptContract, "sandbox.check",
			fmt.Errorf("script never returns a scene"))
	}
	return nil
}

// emptyFS denies every source import.
type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// limitedBuffer keeps the first maxCapturedOutput bytes written to it.
type limitedBuffer struct {
	bytes.Buffer
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if room := maxCapturedOutput - l.Buffer.Len(); room > 0 {
		if len(p) > room {
			l.Buffer.Write(p[:room])
		} else {
			l.Buffer.Write(p)
		}
	}
	return len(p), nil
}
