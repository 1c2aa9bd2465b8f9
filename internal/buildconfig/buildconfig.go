// Package buildconfig decodes the HCL configuration file a user writes
// (spec.md §6's optimization level, defines, externs, and formatting
// options) into a buildrequest.Request. Loading happens once at startup;
// the rest of the build never touches HCL again.
package buildconfig

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/buildgraphgo/internal/buildrequest"
)

// defineBlock is one `define "name" { value = ... }` block. Value is
// decoded as a raw hcl.Expression, not a typed Go field, because its
// value may be a bool, number, or string — the same "defer evaluation"
// approach the HCL ecosystem uses for polymorphic attributes.
type defineBlock struct {
	Name  string         `hcl:"name,label"`
	Value hcl.Expression `hcl:"value"`
}

// externBlock is one `extern "name" {}` block. It carries no body
// attributes; the label is the extern's name.
type externBlock struct {
	Name string `hcl:"name,label"`
}

type formattingBlock struct {
	PrettyPrint  bool `hcl:"pretty_print,optional"`
	SingleQuotes bool `hcl:"single_quotes,optional"`
}

// File is the on-disk representation decoded straight out of
// gohcl.DecodeBody.
type File struct {
	OptimizationLevel string           `hcl:"optimization_level"`
	ClasspathScope    string           `hcl:"classpath_scope,optional"`
	LanguageOut       string           `hcl:"language_out,optional"`
	TargetDir         string           `hcl:"target_dir,optional"`
	BaseCacheDir      string           `hcl:"base_cache_dir,optional"`
	TestID            string           `hcl:"test_id,optional"`
	Defines           []*defineBlock   `hcl:"define,block"`
	Externs           []*externBlock   `hcl:"extern,block"`
	Formatting        *formattingBlock `hcl:"formatting,block"`
}

// Load parses path as HCL and decodes it into a buildrequest.Request,
// ready to hand to the Scheduler. Optimization level and classpath scope
// are upper-cased defensively; everything else passes through as written.
func Load(path string) (*buildrequest.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("buildconfig: reading %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("buildconfig: parsing %s: %w", path, diags)
	}

	var f File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &f); diags.HasErrors() {
		return nil, fmt.Errorf("buildconfig: decoding %s: %w", path, diags)
	}

	return f.toRequest()
}

// toRequest translates the decoded HCL shape into the concrete
// buildrequest.Request fields, sorting Defines and Externs per spec.md
// §4.2 item 1 — they feed the artifact hash and must be order-stable.
func (f *File) toRequest() (*buildrequest.Request, error) {
	defines := make([][2]string, 0, len(f.Defines))
	for _, d := range f.Defines {
		val, diags := d.Value.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("buildconfig: evaluating define %q: %w", d.Name, diags)
		}
		str, err := ctyToDefineString(val)
		if err != nil {
			return nil, fmt.Errorf("buildconfig: define %q: %w", d.Name, err)
		}
		defines = append(defines, [2]string{d.Name, str})
	}
	sort.Slice(defines, func(i, j int) bool { return defines[i][0] < defines[j][0] })

	externs := make([]string, 0, len(f.Externs))
	for _, e := range f.Externs {
		externs = append(externs, e.Name)
	}
	sort.Strings(externs)

	var formatting []buildrequest.FormattingOption
	if f.Formatting != nil {
		if f.Formatting.PrettyPrint {
			formatting = append(formatting, "PRETTY_PRINT")
		}
		if f.Formatting.SingleQuotes {
			formatting = append(formatting, "SINGLE_QUOTES")
		}
	}

	return &buildrequest.Request{
		BaseCacheDir:      f.BaseCacheDir,
		TargetDir:         f.TargetDir,
		ClasspathScope:    buildrequest.ClasspathScope(strings.ToUpper(f.ClasspathScope)),
		Optimization:      buildrequest.OptimizationLevel(strings.ToUpper(f.OptimizationLevel)),
		LanguageOut:       f.LanguageOut,
		Defines:           defines,
		Externs:           externs,
		FormattingOptions: formatting,
		TestID:            f.TestID,
	}, nil
}

// ctyToDefineString renders a cty.Value as the string form the closure
// compiler's --define flag expects, following the same cty-to-native
// mapping as the rest of the HCL ecosystem: bool, number, and string
// values each have one canonical textual form.
func ctyToDefineString(v cty.Value) (string, error) {
	if v.IsNull() || !v.IsKnown() {
		return "", fmt.Errorf("value must be a known, non-null bool, number, or string")
	}
	switch v.Type() {
	case cty.Bool:
		var b bool
		if err := gocty.FromCtyValue(v, &b); err != nil {
			return "", err
		}
		if b {
			return "true", nil
		}
		return "false", nil
	case cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return "", err
		}
		return fmt.Sprintf("%v", f), nil
	case cty.String:
		return v.AsString(), nil
	default:
		return "", fmt.Errorf("unsupported define value type %s", v.Type().FriendlyName())
	}
}
