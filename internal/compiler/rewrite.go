package compiler

import (
	"regexp"
	"strings"

	"github.com/caarlos0/go-shellwords"
	"k8s.io/klog/v2"

	"github.com/Norgate-AV/hipify-batch/internal/config"
)

// Denylist holds nvcc-only options that clang cannot parse. Removal is a plain
// substring strip applied in this order, so spelling must match the command exactly.
var Denylist = []string{
	"--cudart=static",
	"--expt-extended-lambda",
	"-forward-unknown-to-host-compiler",
	"-compress-all",
	"-fmax-errors=2",
	"-gencode",
	"-x cu",
	"-Xfatbin",
	"-Xcompiler=-fPIC ",
}

var (
	objectPattern = regexp.MustCompile(`-o\s.*\.(cu|cpp)\.o`)
	archPattern   = regexp.MustCompile(`arch=compute_\d+,code=sm_\d+`)

	objectToken = regexp.MustCompile(`\.(cu|cpp)\.o$`)
	archToken   = regexp.MustCompile(`^arch=compute_\d+,code=sm_\d+$`)
)

// Rewriter turns an nvcc command line into the flags hipify-clang passes to clang
type Rewriter struct {
	mode string
	nvcc string
}

// NewRewriter creates a rewriter for the configured mode and CUDA toolkit
func NewRewriter(cfg *config.Config) *Rewriter {
	return &Rewriter{
		mode: cfg.RewriteMode,
		nvcc: cfg.NvccPath(),
	}
}

// Rewrite returns the compiler flags of command with nvcc specifics removed.
// It never fails: anything the rules do not recognise is passed through.
func (r *Rewriter) Rewrite(command, file string) []string {
	if r.mode == config.RewriteTokens {
		tokens, err := shellwords.Parse(command)
		if err == nil {
			return r.rewriteTokens(tokens, file)
		}

		klog.Warningf("Cannot tokenize command for %s, using literal rewrite: %v", file, err)
	}

	return r.rewriteLiteral(command, file)
}

// rewriteLiteral applies the substitutions in order on the raw string. Later
// steps see text left behind by earlier ones.
func (r *Rewriter) rewriteLiteral(cmd, file string) []string {
	cmd = strings.ReplaceAll(cmd, "-c "+file, "")

	for _, flag := range Denylist {
		cmd = strings.ReplaceAll(cmd, flag, "")
	}

	cmd = strings.ReplaceAll(cmd, "-isystem=", "-I")
	cmd = strings.ReplaceAll(cmd, r.nvcc, "")
	cmd = objectPattern.ReplaceAllString(cmd, "")
	cmd = archPattern.ReplaceAllString(cmd, "")

	return strings.Fields(cmd)
}

// tokenRule describes what to do with a flag token in token mode
type tokenRule struct {
	// pair drops the following token together with the flag
	pair bool

	// accept, when set, must approve the following token for the pair to be dropped
	accept func(next, file string) bool

	// keepUnpaired leaves the flag alone when accept rejects the following token
	keepUnpaired bool
}

var tokenRules = map[string]tokenRule{
	"--cudart=static":                   {},
	"--expt-extended-lambda":            {},
	"-forward-unknown-to-host-compiler": {},
	"-compress-all":                     {},
	"-fmax-errors=2":                    {},
	"-Xcompiler=-fPIC":                  {},
	"-Xfatbin":                          {pair: true},
	"-gencode": {
		pair:   true,
		accept: func(next, _ string) bool { return archToken.MatchString(next) },
	},
	"-c": {
		pair:         true,
		accept:       func(next, file string) bool { return next == file },
		keepUnpaired: true,
	},
	"-o": {
		pair:         true,
		accept:       func(next, _ string) bool { return objectToken.MatchString(next) },
		keepUnpaired: true,
	},
	"-x": {
		pair:         true,
		accept:       func(next, _ string) bool { return next == "cu" },
		keepUnpaired: true,
	},
}

// rewriteTokens applies the same rules per token, keyed by flag name. Unlike the
// literal rewrite it never touches flags that merely contain a denylisted string.
func (r *Rewriter) rewriteTokens(tokens []string, file string) []string {
	args := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if tok == r.nvcc || archToken.MatchString(tok) {
			continue
		}

		if spec, ok := strings.CutPrefix(tok, "-gencode="); ok && archToken.MatchString(spec) {
			continue
		}

		if dir, ok := strings.CutPrefix(tok, "-isystem="); ok {
			args = append(args, "-I"+dir)
			continue
		}

		rule, ok := tokenRules[tok]
		if !ok {
			args = append(args, tok)
			continue
		}

		if rule.pair && i+1 < len(tokens) && (rule.accept == nil || rule.accept(tokens[i+1], file)) {
			i++
			continue
		}

		if rule.keepUnpaired {
			args = append(args, tok)
		}
	}

	return args
}
