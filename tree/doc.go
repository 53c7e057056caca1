// Package tree walks the abut relations from every outlet upstream and
// classifies each reached feature: flow direction, Strahler order and Shreve
// magnitude.
//
// Every feature carries MouthFeatureID, the id of the outlet feature whose
// basin claimed it. It is written once; a second visit is fatal:
//
//   - reached again inside the same basin → ErrLoopDetected
//   - reached from a different basin      → ErrCrossBasinConnection
//
// When StrahlerStrict was requested, every confluence of more than two
// tributaries logs a warning and is counted in Result.WideConfluences. The
// first one switches the rest of the run to StrahlerRelaxed (or fails with
// ErrTooManyTributaries when WithFailOnTooManyTributaries is set).
//
// Complexity: O(F + R log R) for F features and R abut relations.
package tree
