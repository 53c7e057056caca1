package tree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/hydroflow"
	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/relation"
)

// ErrFeatureNotFound indicates a relation pointing outside the drainage set.
var ErrFeatureNotFound = errors.New("tree: feature not in drainage set")

// walker carries the run-scoped state through the recursion.
type walker struct {
	store *relation.Store
	fs    *core.FeatureSet
	opts  Options
	mode  StrahlerMode // effective mode; strict may switch to relaxed once
	root  int          // feature id of the outlet being walked
	res   *Result
}

// Build classifies every feature reachable from the store's mouths.
// store.BuildIndexes must have run. On error the Result holds the roots
// finished before the failure.
func Build(store *relation.Store, drainage *core.FeatureSet, opts ...Option) (*Result, error) {
	// 1. Validate input
	if store == nil || drainage == nil {
		return nil, ErrNilStore
	}

	// 2. Apply options
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if o.Log == nil {
		o.Log = &core.Log{}
	}

	res := &Result{Mode: o.Strahler}
	w := &walker{store: store, fs: drainage, opts: o, mode: o.Strahler, root: -1, res: res}

	// 3. Outlets
	mouths := store.Mouths()
	if len(mouths) == 0 {
		o.Log.Append("no outlet found: no drainage feature abuts the boundary")
		return res, ErrNoOutletFound
	}

	// 4. One tree per outlet
	for _, m := range mouths {
		node, err := w.createNode(relation.Link{Child: m.Source, Parent: m.Destination, At: m.At}, nil)
		res.Mode = w.mode
		if err != nil {
			return res, err
		}
		res.Roots = append(res.Roots, node)
	}
	hydroflow.Logger().Debug("tree: built",
		"outlets", len(res.Roots), "classified", res.Classified, "strahler", res.Mode.String())

	return res, nil
}

// createNode classifies the feature of link.Child and everything upstream.
func (w *walker) createNode(link relation.Link, siblings []relation.Link) (*Node, error) {
	seg := link.Child
	f := w.fs.Feature(seg.FeatureID)
	if f == nil {
		return nil, fmt.Errorf("%w: %d", ErrFeatureNotFound, seg.FeatureID)
	}
	isRoot := link.Parent.Set == core.SetBoundary

	// 1. Claim the feature for the current basin
	if err := w.visit(f, isRoot); err != nil {
		return nil, err
	}

	// 2. Orientation
	node := &Node{FeatureID: f.ID, Flow: w.flow(f, link)}

	// 3. Upstream reaches
	parentID := -1
	if !isRoot {
		parentID = link.Parent.FeatureID
	}
	children, err := w.store.FindChildSegments(f.ID, parentID, siblings)
	if err != nil {
		return nil, fmt.Errorf("tree: feature %d: %w", f.ID, err)
	}

	// 4. Orders
	switch len(children) {
	case 0:
		if w.mode != StrahlerOff {
			node.Strahler = 1
		}
		if w.opts.Shreve {
			node.Shreve = 1
		}

	case 1:
		child, err := w.createNode(children[0], children)
		if err != nil {
			return nil, err
		}
		node.Children = []*Node{child}
		node.Strahler = child.Strahler
		node.Shreve = child.Shreve

	default:
		if len(children) > 2 && w.opts.Strahler == StrahlerStrict {
			if err := w.wideConfluence(f, children); err != nil {
				return nil, err
			}
		}
		orders := make([]int, 0, len(children))
		for _, c := range children {
			child, err := w.createNode(c, children)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			orders = append(orders, child.Strahler)
			if w.opts.Shreve {
				node.Shreve += child.Shreve
			}
		}
		if w.mode != StrahlerOff {
			node.Strahler = CalculateStrahler(orders)
		}
	}

	// 5. Write back
	f.Flow = node.Flow
	f.Strahler = node.Strahler
	f.Shreve = node.Shreve
	w.res.Classified++

	return node, nil
}

// visit writes MouthFeatureID or reports why it cannot.
func (w *walker) visit(f *core.Feature, isRoot bool) error {
	if isRoot {
		if f.MouthFeatureID != -1 {
			return w.fatal(ErrCrossBasinConnection, f, f.MouthFeatureID, f.ID)
		}
		f.MouthFeatureID = f.ID
		w.root = f.ID
		return nil
	}

	switch f.MouthFeatureID {
	case -1:
		f.MouthFeatureID = w.root
		return nil
	case w.root:
		return w.fatal(ErrLoopDetected, f, f.MouthFeatureID, w.root)
	default:
		return w.fatal(ErrCrossBasinConnection, f, f.MouthFeatureID, w.root)
	}
}

func (w *walker) fatal(sentinel error, f *core.Feature, claimed, current int) error {
	msg := fmt.Sprintf("feature %d already in basin of outlet %d, reached again from outlet %d",
		f.ID, claimed, current)
	w.opts.Log.Append("%s: %s", strings.TrimPrefix(sentinel.Error(), "tree: "), msg)
	hydroflow.Logger().Warn("tree: walk aborted", "reason", sentinel.Error(), "feature", f.ID)

	return fmt.Errorf("%w: %s", sentinel, msg)
}

// wideConfluence handles more than two tributaries when strict Strahler was
// requested. Every one is logged and counted; only the first switches the mode.
func (w *walker) wideConfluence(f *core.Feature, children []relation.Link) error {
	ids := make([]string, len(children))
	for i, c := range children {
		ids[i] = fmt.Sprint(c.Child.FeatureID)
	}
	w.res.WideConfluences++

	effect := "Strahler order already relaxed"
	if w.mode == StrahlerStrict {
		effect = "Strahler order switched to relaxed"
	}
	w.opts.Log.Append("feature %d: %d tributaries (%s) meet at %s; %s",
		f.ID, len(children), strings.Join(ids, ", "), children[0].At, effect)
	hydroflow.Logger().Warn("tree: too many tributaries", "feature", f.ID, "tributaries", len(children))

	if w.opts.FailOnTooManyTributaries {
		return fmt.Errorf("%w: feature %d has %d", ErrTooManyTributaries, f.ID, len(children))
	}
	w.mode = StrahlerRelaxed

	return nil
}

// flow orients the feature so that its parent lies downstream.
//
// Multi-segment features are oriented by which segment meets the parent:
// segment 0 means the chain starts downstream. Single-segment features look
// at which endpoint meets the parent.
func (w *walker) flow(f *core.Feature, link relation.Link) core.Flow {
	seg := link.Child
	if len(f.Segments) > 1 {
		if seg.Index == 0 {
			return core.FlowReverse
		}
		return core.FlowKeep
	}

	k := w.opts.Kernel
	meets := func(v *core.Vertex) bool {
		return k.Equal(v, link.Parent.A) || k.Equal(v, link.Parent.B)
	}
	meet := seg.B
	switch {
	case meets(seg.A):
		meet = seg.A
	case meets(seg.B):
	case k.Equal(seg.A, &link.At):
		meet = seg.A
	}
	if meet.Index == 0 {
		return core.FlowReverse
	}
	return core.FlowKeep
}

// CalculateStrahler combines tributary orders: with a ≥ b the two largest,
// the result is a+1 when a == b, else a. A single value passes through.
func CalculateStrahler(values []int) int {
	a, b := 0, 0
	for _, v := range values {
		switch {
		case v > a:
			a, b = v, a
		case v > b:
			b = v
		}
	}
	if len(values) >= 2 && a == b {
		return a + 1
	}
	return a
}
