package tree_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/relation"
	"github.com/katalvlaran/hydroflow/tree"
)

var tol = decimal.NewFromFloat(0.001)

// network is a hand-wired relation store over a drainage arena.
type network struct {
	t        *testing.T
	drainage *core.FeatureSet
	boundary *core.FeatureSet
	store    *relation.Store
}

func newNetwork(t *testing.T) *network {
	return &network{
		t:        t,
		drainage: core.NewFeatureSet(core.SetDrainage),
		boundary: core.NewFeatureSet(core.SetBoundary),
		store:    relation.NewStore(),
	}
}

func (n *network) reach(coords ...[]float64) *core.Feature {
	f, err := n.drainage.Add(core.VerticesFromFloats(coords), tol)
	require.NoError(n.t, err)
	return f
}

func (n *network) outlet(f *core.Feature, x, y float64) {
	b, err := n.boundary.Add(core.VerticesFromFloats([][]float64{{x, y - 1}, {x, y}, {x, y + 1}}), tol)
	require.NoError(n.t, err)
	n.store.AddRelation(f.Segments[0], b.Segments[0], relation.Abut, core.Point(x, y))
}

func (n *network) abut(a, b *core.Feature, x, y float64) {
	n.store.AddRelation(a.Segments[0], b.Segments[0], relation.Abut, core.Point(x, y))
}

// y builds S1 (0,0)-(1,0) draining through (0,0), with S2 and S3 rising
// from the confluence at (1,0).
func y(t *testing.T) (*network, []*core.Feature) {
	n := newNetwork(t)
	s1 := n.reach([]float64{0, 0}, []float64{1, 0})
	s2 := n.reach([]float64{1, 0}, []float64{2, 1})
	s3 := n.reach([]float64{1, 0}, []float64{2, -1})
	n.outlet(s1, 0, 0)
	n.abut(s1, s2, 1, 0)
	n.abut(s1, s3, 1, 0)
	n.abut(s2, s3, 1, 0)

	return n, []*core.Feature{s1, s2, s3}
}

func TestBuild_YConfluence(t *testing.T) {
	n, fs := y(t)
	n.store.BuildIndexes()

	res, err := tree.Build(n.store, n.drainage)
	require.NoError(t, err)
	require.Len(t, res.Roots, 1)
	assert.Equal(t, 3, res.Classified)
	assert.Equal(t, tree.StrahlerStrict, res.Mode)

	s1, s2, s3 := fs[0], fs[1], fs[2]
	assert.Equal(t, 2, s1.Strahler)
	assert.Equal(t, 2, s1.Shreve)
	assert.Equal(t, 1, s2.Strahler)
	assert.Equal(t, 1, s3.Strahler)
	assert.Equal(t, 1, s2.Shreve)

	for _, f := range fs {
		assert.Equal(t, core.FlowReverse, f.Flow, "feature %d", f.ID)
		assert.Equal(t, s1.ID, f.MouthFeatureID)
	}

	root := res.Roots[0]
	assert.Equal(t, s1.ID, root.FeatureID)
	require.Len(t, root.Children, 2)
	assert.Equal(t, s2.ID, root.Children[0].FeatureID)
	assert.Equal(t, s3.ID, root.Children[1].FeatureID)
}

// TestBuild_WideConfluence checks the one-way switch to relaxed Strahler.
func TestBuild_WideConfluence(t *testing.T) {
	n, fs := y(t)
	s4 := n.reach([]float64{1, 0}, []float64{2, 0})
	n.abut(fs[0], s4, 1, 0)
	n.abut(fs[1], s4, 1, 0)
	n.abut(fs[2], s4, 1, 0)
	n.store.BuildIndexes()

	var log core.Log
	res, err := tree.Build(n.store, n.drainage, tree.WithLog(&log))
	require.NoError(t, err)

	assert.Equal(t, tree.StrahlerRelaxed, res.Mode)
	assert.Equal(t, 1, res.WideConfluences)
	assert.Equal(t, 2, fs[0].Strahler)
	assert.Equal(t, 3, fs[0].Shreve)
	assert.Equal(t, 1, s4.Strahler)
	require.Equal(t, 1, log.Len())
	assert.Contains(t, log.Lines()[0], "feature 0: 3 tributaries (1, 2, 3)")
}

// TestBuild_WideConfluenceEveryOne checks that confluences met after the
// switch to relaxed are still logged and counted.
func TestBuild_WideConfluenceEveryOne(t *testing.T) {
	n, fs := y(t)
	s4 := n.reach([]float64{1, 0}, []float64{2, 0})
	n.abut(fs[0], s4, 1, 0)
	n.abut(fs[1], s4, 1, 0)
	n.abut(fs[2], s4, 1, 0)

	// A second three-way confluence at the head of s4.
	heads := []*core.Feature{
		n.reach([]float64{2, 0}, []float64{3, 1}),
		n.reach([]float64{2, 0}, []float64{3, 0}),
		n.reach([]float64{2, 0}, []float64{3, -1}),
	}
	for i, h := range heads {
		n.abut(s4, h, 2, 0)
		for _, o := range heads[i+1:] {
			n.abut(h, o, 2, 0)
		}
	}
	n.store.BuildIndexes()

	var log core.Log
	res, err := tree.Build(n.store, n.drainage, tree.WithLog(&log))
	require.NoError(t, err)

	assert.Equal(t, tree.StrahlerRelaxed, res.Mode)
	assert.Equal(t, 2, res.WideConfluences)
	assert.Equal(t, 7, res.Classified)
	assert.Equal(t, 2, s4.Strahler)
	assert.Equal(t, 3, s4.Shreve)
	assert.Equal(t, 5, fs[0].Shreve)

	require.Equal(t, 2, log.Len())
	lines := log.Lines()
	assert.Contains(t, lines[0], "feature 0: 3 tributaries")
	assert.Contains(t, lines[0], "switched to relaxed")
	assert.Contains(t, lines[1], "feature 3: 3 tributaries (4, 5, 6)")
	assert.Contains(t, lines[1], "already relaxed")
}

func TestBuild_WideConfluenceFatal(t *testing.T) {
	n, fs := y(t)
	s4 := n.reach([]float64{1, 0}, []float64{2, 0})
	n.abut(fs[0], s4, 1, 0)
	n.store.BuildIndexes()

	_, err := tree.Build(n.store, n.drainage, tree.WithFailOnTooManyTributaries())
	assert.ErrorIs(t, err, tree.ErrTooManyTributaries)

	// Relaxed runs never warn.
	n.drainage.Reset()
	res, err := tree.Build(n.store, n.drainage,
		tree.WithStrahler(tree.StrahlerRelaxed), tree.WithFailOnTooManyTributaries())
	require.NoError(t, err)
	assert.Zero(t, res.WideConfluences)
}

// TestBuild_OrdersOff leaves Strahler and Shreve untouched but still orients.
func TestBuild_OrdersOff(t *testing.T) {
	n, fs := y(t)
	n.store.BuildIndexes()

	_, err := tree.Build(n.store, n.drainage, tree.WithStrahler(tree.StrahlerOff), tree.WithShreve(false))
	require.NoError(t, err)
	for _, f := range fs {
		assert.Zero(t, f.Strahler)
		assert.Zero(t, f.Shreve)
		assert.NotEqual(t, core.FlowUnset, f.Flow)
	}
}

// TestBuild_Flow covers Keep for reaches digitised downstream.
func TestBuild_Flow(t *testing.T) {
	n := newNetwork(t)
	main := n.reach([]float64{2, 0}, []float64{1, 0}, []float64{0, 0}) // digitised towards the outlet
	trib := n.reach([]float64{3, 1}, []float64{2, 0})                  // digitised towards main
	n.store.AddRelation(main.Segments[1], mustBoundary(t, n, 0, 0), relation.Abut, core.Point(0, 0))
	n.store.AddRelation(main.Segments[0], trib.Segments[0], relation.Abut, core.Point(2, 0))
	n.store.BuildIndexes()

	_, err := tree.Build(n.store, n.drainage)
	require.NoError(t, err)
	assert.Equal(t, core.FlowKeep, main.Flow)
	assert.Equal(t, core.FlowKeep, trib.Flow)
	assert.Equal(t, 1, main.Strahler)
	assert.Equal(t, 1, main.Shreve)
}

func mustBoundary(t *testing.T, n *network, x, y float64) *core.Segment {
	b, err := n.boundary.Add(core.VerticesFromFloats([][]float64{{x, y}, {x, y + 1}}), tol)
	require.NoError(t, err)
	return b.Segments[0]
}

func TestBuild_NoOutlet(t *testing.T) {
	n := newNetwork(t)
	n.reach([]float64{0, 0}, []float64{1, 0})
	n.store.BuildIndexes()

	var log core.Log
	_, err := tree.Build(n.store, n.drainage, tree.WithLog(&log))
	assert.ErrorIs(t, err, tree.ErrNoOutletFound)
	assert.Equal(t, 1, log.Len())

	_, err = tree.Build(nil, n.drainage)
	assert.ErrorIs(t, err, tree.ErrNilStore)
}

// TestBuild_Loop: A and B leave the confluence and meet again through C.
func TestBuild_Loop(t *testing.T) {
	n := newNetwork(t)
	r := n.reach([]float64{0, 0}, []float64{1, 0})
	a := n.reach([]float64{1, 0}, []float64{2, 1})
	b := n.reach([]float64{1, 0}, []float64{2, -1})
	c := n.reach([]float64{2, 1}, []float64{2, -1})
	n.outlet(r, 0, 0)
	n.abut(r, a, 1, 0)
	n.abut(r, b, 1, 0)
	n.abut(a, b, 1, 0)
	n.abut(a, c, 2, 1)
	n.abut(b, c, 2, -1)
	n.store.BuildIndexes()

	var log core.Log
	_, err := tree.Build(n.store, n.drainage, tree.WithLog(&log))
	assert.ErrorIs(t, err, tree.ErrLoopDetected)
	assert.NotZero(t, log.Len())
}

// TestBuild_CrossBasin: two outlets joined by a middle reach.
func TestBuild_CrossBasin(t *testing.T) {
	n := newNetwork(t)
	r1 := n.reach([]float64{0, 0}, []float64{1, 0})
	r2 := n.reach([]float64{3, 0}, []float64{2, 0})
	m := n.reach([]float64{1, 0}, []float64{2, 0})
	n.outlet(r1, 0, 0)
	n.outlet(r2, 3, 0)
	n.abut(r1, m, 1, 0)
	n.abut(m, r2, 2, 0)
	n.store.BuildIndexes()

	res, err := tree.Build(n.store, n.drainage)
	assert.ErrorIs(t, err, tree.ErrCrossBasinConnection)
	require.NotNil(t, res)
	assert.Len(t, res.Roots, 1)
}

func TestBuild_InvalidOption(t *testing.T) {
	n, _ := y(t)
	n.store.BuildIndexes()

	_, err := tree.Build(n.store, n.drainage, tree.WithStrahler(tree.StrahlerMode(9)))
	assert.ErrorIs(t, err, tree.ErrOptionViolation)
}

func TestCalculateStrahler(t *testing.T) {
	cases := []struct {
		in   []int
		want int
	}{
		{nil, 0},
		{[]int{3}, 3},
		{[]int{1, 1}, 2},
		{[]int{2, 1}, 2},
		{[]int{1, 2, 2}, 3},
		{[]int{3, 2, 2}, 3},
		{[]int{1, 1, 1}, 2},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, tree.CalculateStrahler(c.in), "%v", c.in)
	}
}

func TestParseStrahlerMode(t *testing.T) {
	for in, want := range map[string]tree.StrahlerMode{
		"":        tree.StrahlerOff,
		"OFF":     tree.StrahlerOff,
		"strict":  tree.StrahlerStrict,
		"Relaxed": tree.StrahlerRelaxed,
	} {
		got, err := tree.ParseStrahlerMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := tree.ParseStrahlerMode("sometimes")
	assert.ErrorIs(t, err, tree.ErrOptionViolation)
}
