package schedule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/treeprop/forest"
	"github.com/katalvlaran/treeprop/schedule"
)

type arc = forest.Arc[string]

// buildTree creates:
//
//	  A
//	 / \
//	B   C
//	|
//	D
func buildTree(t *testing.T) *forest.Forest[string] {
	t.Helper()
	f := forest.NewForest[string]()
	require.NoError(t, f.AddEdge("A", "B"))
	require.NoError(t, f.AddEdge("A", "C"))
	require.NoError(t, f.AddEdge("B", "D"))

	return f
}

func TestNew_NilForest(t *testing.T) {
	s, err := schedule.New[string](nil, "A")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, schedule.ErrForestNil)
}

func TestNew_RootNotFound(t *testing.T) {
	s, err := schedule.New(buildTree(t), "X")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, schedule.ErrRootNotFound)
}

func TestNew_PostorderAndArcs(t *testing.T) {
	s, err := schedule.New(buildTree(t), "A")
	require.NoError(t, err)

	assert.Equal(t, "A", s.Root())
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, []string{"D", "B", "C", "A"}, s.Postorder())
	assert.Equal(t, []arc{{From: "D", To: "B"}, {From: "B", To: "A"}, {From: "C", To: "A"}}, s.Forward())
	assert.Equal(t, []arc{{From: "A", To: "C"}, {From: "A", To: "B"}, {From: "B", To: "D"}}, s.Backward())

	succ, ok := s.Successor("D")
	assert.True(t, ok)
	assert.Equal(t, "B", succ)
	_, ok = s.Successor("A")
	assert.False(t, ok, "root has no successor")
}

func TestNew_OtherRoot(t *testing.T) {
	s, err := schedule.New(buildTree(t), "D")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B", "D"}, s.Postorder())
	assert.Equal(t, []arc{{From: "C", To: "A"}, {From: "A", To: "B"}, {From: "B", To: "D"}}, s.Forward())
}

func TestNew_SingleVertex(t *testing.T) {
	f := forest.NewForest[string]()
	require.NoError(t, f.AddVertex("X"))
	s, err := schedule.New(f, "X")
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, s.Postorder())
	assert.Empty(t, s.Forward())
	assert.Empty(t, s.Backward())
}

func TestNew_OnlyRootComponent(t *testing.T) {
	f := buildTree(t)
	require.NoError(t, f.AddEdge("X", "Y"))
	s, err := schedule.New(f, "A")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.False(t, s.Contains("X"))
	assert.True(t, s.Contains("D"))
}

func TestNew_CycleRejected(t *testing.T) {
	f := forest.NewForest[string]()
	require.NoError(t, f.AddEdge("A", "B"))
	require.NoError(t, f.AddEdge("B", "C"))
	require.NoError(t, f.AddEdge("C", "A"))

	_, err := schedule.New(f, "A")
	assert.ErrorIs(t, err, schedule.ErrNotATree)

	// A cycle elsewhere in the forest does not affect another component.
	require.NoError(t, f.AddEdge("P", "Q"))
	_, err = schedule.New(f, "P")
	assert.NoError(t, err)
}

func TestNew_LongChain(t *testing.T) {
	const n = 2000
	f := forest.NewForest[int]()
	for i := 1; i < n; i++ {
		require.NoError(t, f.AddEdge(i-1, i))
	}
	s, err := schedule.New(f, 0)
	require.NoError(t, err)
	fwd := s.Forward()
	require.Len(t, fwd, n-1)
	assert.Equal(t, forest.Arc[int]{From: n - 1, To: n - 2}, fwd[0])
	assert.Equal(t, forest.Arc[int]{From: 1, To: 0}, fwd[n-2])
}

func TestForwardBackward_EveryArcOnce(t *testing.T) {
	f := buildTree(t)
	s, err := schedule.New(f, "B")
	require.NoError(t, err)

	seen := map[arc]int{}
	for _, a := range append(s.Forward(), s.Backward()...) {
		seen[a]++
	}
	assert.Len(t, seen, 2*f.EdgeCount())
	for a, c := range seen {
		assert.Equal(t, 1, c, "arc %v scheduled more than once", a)
	}
}

func TestIncoming(t *testing.T) {
	f := buildTree(t)

	in, err := schedule.Incoming(f, "A")
	require.NoError(t, err)
	assert.Equal(t, []arc{{From: "B", To: "A"}, {From: "C", To: "A"}}, in)

	in, err = schedule.IncomingExcept(f, "A", "B")
	require.NoError(t, err)
	assert.Equal(t, []arc{{From: "C", To: "A"}}, in)

	in, err = schedule.IncomingExcept(f, "D", "B")
	require.NoError(t, err)
	assert.Empty(t, in)

	_, err = schedule.Incoming(f, "nope")
	assert.ErrorIs(t, err, forest.ErrVertexNotFound)
}
