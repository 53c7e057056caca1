// Package relation records where segments meet and answers the tree
// builder's child lookups.
//
// What:
//
//   - Store.AddRelation: normalises operand order so that
//     Source.FeatureID ≤ Destination.FeatureID, then routes the pair:
//     drainage–boundary Abut → AddMouth; drainage–drainage of different
//     features → the abut tree or the anomaly tree (Touch / Cross);
//     same-feature pairs and other mixes are dropped. Both trees are
//     google/btree sets keyed by (source feature, destination feature,
//     kind), so a duplicate insert is a no-op.
//   - Store.AddMouth: flags the drainage segment IsMouth and keeps one mouth
//     per drainage feature, in discovery order.
//   - Store.BuildIndexes: lists each abut relation under both feature ids,
//     sorted by (feature id, offset), with a primary index of first offsets.
//   - Store.FindChildSegments: the other-side segments of a feature's
//     relations, skipping the parent feature and already visited siblings.
//   - Store.ReportUnexpectedRelations: one diagnostic line per anomaly.
//
// An empty child list is the leaf signal, not an error.
package relation
