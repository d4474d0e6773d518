// Package resolver walks a tree repeatedly, replacing every String node
// whose content parses as an interpolation template with the template's
// resolved value, until a pass produces no further replacements (a fixed
// point) or the pass limit is hit, which signals a cyclic interpolation.
package resolver

import (
	"errors"
	"fmt"

	"github.com/kodegenix/kgtree/pkg/interpolation"
	"github.com/kodegenix/kgtree/pkg/opath"
	"github.com/kodegenix/kgtree/pkg/opath/scope"
	"github.com/kodegenix/kgtree/pkg/symbol"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// ErrInterpolationDepthReached is returned when resolution has not reached a
// fixed point within the pass limit, which means some interpolation's output
// feeds back into its own input.
var ErrInterpolationDepthReached = errors.New("interpolation depth limit reached (cyclic interpolation)")

// defaultMaxPasses bounds the fixed-point iteration.
const defaultMaxPasses = 100

// ResolveStrategy decides which node an interpolation is evaluated against.
type ResolveStrategy interface {
	ResolveInterpolation(i interpolation.Interpolation, node, parent, root *tree.Node, s *scope.Scope) (*tree.Node, bool, error)
}

// DefaultResolveStrategy evaluates each interpolation with the interpolated
// string's parent as the current node, so sibling properties are reachable
// as bare names.
type DefaultResolveStrategy struct{}

func (DefaultResolveStrategy) ResolveInterpolation(i interpolation.Interpolation, _, parent, root *tree.Node, s *scope.Scope) (*tree.Node, bool, error) {
	current := parent
	if current == nil {
		current = root
	}

	return i.ResolveExt(root, current, s)
}

// RootedResolveStrategy evaluates every interpolation with the tree root as
// the current node, so all references are absolute.
type RootedResolveStrategy struct{}

func (RootedResolveStrategy) ResolveInterpolation(i interpolation.Interpolation, _, _, root *tree.Node, s *scope.Scope) (*tree.Node, bool, error) {
	return i.ResolveExt(root, root, s)
}

// TreeResolver drives the fixed-point resolution. It memoizes the parse of
// each distinct string content, so a value repeated across the tree is only
// parsed once no matter how many passes run.
type TreeResolver struct {
	parser    *interpolation.Parser
	scope     *scope.Scope
	exprs     map[string]interpolation.Interpolation
	maxPasses int
}

// New returns a TreeResolver with the default `<%`/`%>` delimiters and a
// built-ins-only scope.
func New() *TreeResolver { return NewWithParser(interpolation.NewParser()) }

// NewWithDelims returns a TreeResolver with custom delimiters.
func NewWithDelims(open, close string) *TreeResolver {
	return NewWithParser(interpolation.NewParserDelims(open, close))
}

// NewWithParser returns a TreeResolver using the given template parser.
func NewWithParser(p *interpolation.Parser) *TreeResolver {
	return &TreeResolver{
		parser:    p,
		scope:     opath.NewScope(),
		exprs:     make(map[string]interpolation.Interpolation),
		maxPasses: defaultMaxPasses,
	}
}

// WithScope replaces the evaluation scope, letting callers expose their own
// functions and variables to the templates.
func (t *TreeResolver) WithScope(s *scope.Scope) *TreeResolver {
	t.scope = s

	return t
}

// WithMaxPasses replaces the cyclic-interpolation pass limit.
func (t *TreeResolver) WithMaxPasses(n int) *TreeResolver {
	if n > 0 {
		t.maxPasses = n
	}

	return t
}

// Resolve runs fixed-point resolution over the tree rooted at root with the
// default strategy.
func (t *TreeResolver) Resolve(root *tree.Node) error {
	return t.ResolveCustom(DefaultResolveStrategy{}, root)
}

// replacement is one scheduled splice: old, a String child of parent, is to
// be replaced by new at the same index/key.
type replacement struct {
	parent *tree.Node
	old    *tree.Node
	new    *tree.Node
}

// ResolveCustom runs fixed-point resolution with the caller's strategy.
func (t *TreeResolver) ResolveCustom(strategy ResolveStrategy, root *tree.Node) error {
	for pass := 0; ; pass++ {
		if pass >= t.maxPasses {
			return fmt.Errorf("%w after %d passes", ErrInterpolationDepthReached, t.maxPasses)
		}

		reps, err := t.collect(strategy, root)
		if err != nil {
			return err
		}

		if len(reps) == 0 {
			return nil
		}

		for _, rep := range reps {
			if err := t.apply(rep); err != nil {
				return err
			}
		}
	}
}

// collect runs one pass over the tree, scheduling a replacement for every
// String node whose content resolves to a value.
func (t *TreeResolver) collect(strategy ResolveStrategy, root *tree.Node) ([]replacement, error) {
	var (
		reps    []replacement
		walkErr error
	)

	root.VisitRecursive(func(r, p, n *tree.Node) bool {
		if walkErr != nil || !n.Value().IsString() {
			return walkErr == nil
		}

		if p == nil {
			// A parentless string root has no container to splice into.
			return true
		}

		content := n.Value().String()

		ip, ok := t.exprs[content]
		if !ok {
			ip = t.parser.ParseAlways(content)
			t.exprs[content] = ip
		}

		if ip.IsEmpty() {
			return true
		}

		nn, ok, err := strategy.ResolveInterpolation(ip, n, p, r, t.scope)
		if err != nil {
			walkErr = fmt.Errorf("resolving %q at %s: %w", content, n.Path(), err)

			return false
		}

		if !ok {
			return true
		}

		if !nn.IsConsumable() {
			nn = nn.DeepCopy()
		}

		reps = append(reps, replacement{parent: p, old: n, new: nn})

		return true
	})

	return reps, walkErr
}

// apply splices one resolved node into place, carrying the replaced node's
// file provenance over when the replacement has none of its own.
func (t *TreeResolver) apply(rep replacement) error {
	if rep.new.OwnFile() == nil {
		rep.new.SetFile(rep.old.OwnFile())
	}

	idx := rep.old.Index()
	key := rep.old.Key()

	if err := rep.parent.AddChild(&idx, keyPtr(key), rep.new); err != nil {
		return fmt.Errorf("replacing %s: %w", rep.old.Path(), err)
	}

	return nil
}

func keyPtr(k symbol.Symbol) *symbol.Symbol { return &k }
