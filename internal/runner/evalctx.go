package runner

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// buildEvalContext exposes the process environment and the CI flag to step
// argument expressions, e.g. `target = env["DOCS_PUBLISH_URL"]`.
func (r *Runner) buildEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": r.envVars.Get(),
			"ci":  cty.BoolVal(r.ci.Get()),
		},
	}
}

// environMap snapshots the process environment as a cty map. Computed at
// most once per run through the memoized slot holding it.
func environMap() cty.Value {
	vals := make(map[string]cty.Value)
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			vals[k] = cty.StringVal(v)
		}
	}
	if len(vals) == 0 {
		return cty.MapValEmpty(cty.String)
	}
	return cty.MapVal(vals)
}

// ciFlag interprets the CI environment variable the way CI providers set
// it: any value other than empty, "0" or "false" counts as true.
func ciFlag() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("CI")))
	return v != "" && v != "0" && v != "false"
}
