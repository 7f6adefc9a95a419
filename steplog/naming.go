package steplog

import (
	"fmt"
	"net/url"
	"reflect"
	"runtime"
	"strings"
)

// identity is the step name and the sink name derived from a function value.
type identity struct {
	pkg  string
	name string
}

func identify(fn any) identity {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return identity{name: "step"}
	}

	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return identity{name: "step"}
	}

	return splitFuncName(f.Name())
}

// splitFuncName splits a runtime function name like
// "github.com/acme/pipeline/steps.removeOutliers" into package path and name.
func splitFuncName(full string) identity {
	if i := strings.IndexByte(full, '['); i >= 0 {
		if j := strings.IndexByte(full[i:], ']'); j >= 0 {
			full = full[:i] + full[i+j+1:]
		}
	}

	full = strings.TrimSuffix(full, "-fm")

	slash := strings.LastIndexByte(full, '/')
	dot := strings.IndexByte(full[slash+1:], '.')
	if dot < 0 {
		return identity{name: full}
	}

	dot += slash + 1

	return identity{pkg: unescapePath(full[:dot]), name: full[dot+1:]}
}

// unescapePath undoes the %xx escaping the linker applies to symbol prefixes,
// e.g. the dot in the last element of gopkg.in/yaml.v3.
func unescapePath(pkg string) string {
	if !strings.Contains(pkg, "%") {
		return pkg
	}

	unescaped, err := url.PathUnescape(pkg)
	if err != nil {
		return pkg
	}

	return unescaped
}

func argRepr(in any) string {
	if in == nil {
		return "nil"
	}

	if v := reflect.ValueOf(in); v.Kind() == reflect.Pointer && v.IsNil() {
		return fmt.Sprintf("%T", in)
	}

	if s, ok := in.(fmt.Stringer); ok {
		return s.String()
	}

	return fmt.Sprintf("%T", in)
}
