package relation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/btree"

	"github.com/katalvlaran/hydroflow/core"
)

// ErrNotIndexed is returned by lookups issued before BuildIndexes.
var ErrNotIndexed = errors.New("relation: indexes not built")

const treeDegree = 16

// Kind classifies how two segments meet.
type Kind int

const (
	// Abut: the point is a chain extremity of both segments.
	Abut Kind = iota
	// Touch: the point is an extremity of exactly one segment.
	Touch
	// Cross: the point is interior to both segments.
	Cross
)

// String returns the relation name.
func (k Kind) String() string {
	switch k {
	case Abut:
		return "abut"
	case Touch:
		return "touch"
	case Cross:
		return "cross"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Item is one recorded relation. For drainage pairs
// Source.FeatureID ≤ Destination.FeatureID; for mouths Source is the
// drainage segment and Destination the boundary segment.
type Item struct {
	Source      *core.Segment
	Destination *core.Segment
	Kind        Kind
	At          core.Vertex
}

func lessItem(a, b *Item) bool {
	if a.Source.FeatureID != b.Source.FeatureID {
		return a.Source.FeatureID < b.Source.FeatureID
	}
	if a.Destination.FeatureID != b.Destination.FeatureID {
		return a.Destination.FeatureID < b.Destination.FeatureID
	}
	return a.Kind < b.Kind
}

// Link is a child found for a feature: Child belongs to the other feature,
// Parent is the segment of the queried feature it meets, At is the meeting
// point.
type Link struct {
	Child  *core.Segment
	Parent *core.Segment
	At     core.Vertex
}

type indexEntry struct {
	featureID int
	offset    int
}

type primaryEntry struct {
	featureID int
	start     int
}

// Store holds the relations of one run.
type Store struct {
	abut      *btree.BTreeG[*Item]
	anomalies *btree.BTreeG[*Item]

	mouths     []*Item
	mouthByFID map[int]struct{}

	items   []*Item
	index   []indexEntry
	primary []primaryEntry
	indexed bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		abut:       btree.NewG(treeDegree, lessItem),
		anomalies:  btree.NewG(treeDegree, lessItem),
		mouthByFID: make(map[int]struct{}),
	}
}

// AddRelation records that src and dst meet at point at with the given kind.
// It reports whether a new item was stored.
func (s *Store) AddRelation(src, dst *core.Segment, kind Kind, at core.Vertex) bool {
	// 1. Normalise operand order
	if dst.FeatureID < src.FeatureID {
		src, dst = dst, src
	}

	// 2. Drainage meeting the boundary by abutment is an outlet
	if src.Set != dst.Set {
		if kind != Abut {
			return false
		}
		if src.Set == core.SetBoundary {
			src, dst = dst, src
		}
		return s.AddMouth(src, dst, at)
	}

	// 3. Only distinct drainage features are related
	if src.Set != core.SetDrainage || src.FeatureID == dst.FeatureID {
		return false
	}

	item := &Item{Source: src, Destination: dst, Kind: kind, At: at}
	tree := s.abut
	if kind != Abut {
		tree = s.anomalies
	}
	if tree.Has(item) {
		return false
	}
	tree.ReplaceOrInsert(item)
	s.indexed = false

	return true
}

// AddMouth flags drainage as an outlet segment meeting boundary at point at.
// Only the first mouth of each drainage feature is kept.
func (s *Store) AddMouth(drainage, boundary *core.Segment, at core.Vertex) bool {
	drainage.IsMouth = true
	if _, ok := s.mouthByFID[drainage.FeatureID]; ok {
		return false
	}
	s.mouthByFID[drainage.FeatureID] = struct{}{}
	s.mouths = append(s.mouths, &Item{Source: drainage, Destination: boundary, Kind: Abut, At: at})

	return true
}

// Mouths returns the outlet relations in discovery order.
func (s *Store) Mouths() []*Item {
	out := make([]*Item, len(s.mouths))
	copy(out, s.mouths)

	return out
}

// Relations returns the abut relations in key order.
func (s *Store) Relations() []*Item { return collect(s.abut) }

// Anomalies returns the touch and cross relations in key order.
func (s *Store) Anomalies() []*Item { return collect(s.anomalies) }

// HasAnomalies reports whether any touch or cross relation was recorded.
func (s *Store) HasAnomalies() bool { return s.anomalies.Len() > 0 }

func collect(t *btree.BTreeG[*Item]) []*Item {
	out := make([]*Item, 0, t.Len())
	t.Ascend(func(it *Item) bool {
		out = append(out, it)
		return true
	})

	return out
}

// BuildIndexes prepares FindChildSegments. It must run after the sweep and
// again after any later AddRelation.
//
// Implementation:
//   - Stage 1: Flatten the abut tree into items (key order).
//   - Stage 2: List every item under its source and destination feature.
//   - Stage 3: Sort entries by (feature id, offset).
//   - Stage 4: Record the first entry of each feature id.
func (s *Store) BuildIndexes() {
	// 1. Flatten
	s.items = collect(s.abut)

	// 2. Secondary index
	s.index = make([]indexEntry, 0, 2*len(s.items))
	for off, it := range s.items {
		s.index = append(s.index,
			indexEntry{featureID: it.Source.FeatureID, offset: off},
			indexEntry{featureID: it.Destination.FeatureID, offset: off},
		)
	}

	// 3. Sort
	sort.Slice(s.index, func(i, j int) bool {
		if s.index[i].featureID != s.index[j].featureID {
			return s.index[i].featureID < s.index[j].featureID
		}
		return s.index[i].offset < s.index[j].offset
	})

	// 4. Primary index
	s.primary = s.primary[:0]
	for i, e := range s.index {
		if i == 0 || s.index[i-1].featureID != e.featureID {
			s.primary = append(s.primary, primaryEntry{featureID: e.featureID, start: i})
		}
	}
	s.indexed = true
}

// FindChildSegments returns the segments of other features that abut
// featureID, skipping parentFeatureID and any feature already among siblings.
// Pass -1 as parentFeatureID when the parent is a boundary segment.
func (s *Store) FindChildSegments(featureID, parentFeatureID int, siblings []Link) ([]Link, error) {
	if !s.indexed {
		return nil, ErrNotIndexed
	}

	p := sort.Search(len(s.primary), func(i int) bool { return s.primary[i].featureID >= featureID })
	if p == len(s.primary) || s.primary[p].featureID != featureID {
		return nil, nil
	}

	var children []Link
	for i := s.primary[p].start; i < len(s.index) && s.index[i].featureID == featureID; i++ {
		it := s.items[s.index[i].offset]
		own, other := it.Source, it.Destination
		if own.FeatureID != featureID {
			own, other = other, own
		}
		if other.FeatureID == parentFeatureID || containsFeature(siblings, other.FeatureID) {
			continue
		}
		children = append(children, Link{Child: other, Parent: own, At: it.At})
	}

	return children, nil
}

func containsFeature(links []Link, featureID int) bool {
	for _, l := range links {
		if l.Child.FeatureID == featureID {
			return true
		}
	}
	return false
}

// ReportUnexpectedRelations writes one line per touch or cross relation and a
// total to log. It returns the number of anomalies.
func (s *Store) ReportUnexpectedRelations(log *core.Log) int {
	n := 0
	s.anomalies.Ascend(func(it *Item) bool {
		log.Append("%s between feature %d (segment %d) and feature %d (segment %d) at %s",
			it.Kind, it.Source.FeatureID, it.Source.Index,
			it.Destination.FeatureID, it.Destination.Index, it.At)
		n++
		return true
	})
	if n > 0 {
		log.Append("unexpected relations: %d", n)
	}

	return n
}
