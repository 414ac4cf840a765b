package validate

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schema.cue
var schemaCUE string

// JSONStructure checks raw JSON bytes against the embedded structural
// schema before any decoding. Returns one violation per schema error, each
// with the CUE path that failed. A nil result means the shape is valid;
// value semantics still need Log after decoding.
//
// Schema and input are compiled in the same context on every call - CUE
// values from different contexts cannot be unified.
func JSONStructure(data []byte) ([]Violation, error) {
	ctx := cuecontext.New()
	compiled := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := compiled.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}
	schema := compiled.LookupPath(cue.ParsePath("#Log"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Log: %w", err)
	}

	expr, err := cuejson.Extract("input.json", data)
	if err != nil {
		// Unparseable JSON is a single structural violation, not an
		// internal error: the caller reports it alongside any others.
		return []Violation{{Entity: "log", Message: fmt.Sprintf("invalid JSON: %v", err)}}, nil
	}
	val := ctx.BuildExpr(expr)
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("build JSON value: %w", err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var violations []Violation
		for _, e := range cueerrors.Errors(err) {
			violations = append(violations, Violation{
				Entity:  "log",
				Attr:    cuePathString(e.Path()),
				Message: e.Error(),
			})
		}
		return violations, nil
	}
	return nil, nil
}

func cuePathString(parts []string) string {
	path := ""
	for i, p := range parts {
		if i > 0 {
			path += "."
		}
		path += p
	}
	return path
}
