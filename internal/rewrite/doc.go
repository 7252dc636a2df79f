// Package rewrite applies the composite renaming and a fixed list of
// structural edits to compiled classes.
//
// A Rewriter runs its passes in the order of Passes: Substitute renames
// every symbolic reference of the class, then EntryPoint, Dispatch, Hoist
// and Propagate make the loader-specific edits. Passes are values of the
// closed Pass enum dispatched by a switch, each implemented by one method
// so it can be tested on its own.
//
// A class no pass changed is reported unchanged and its original bytes
// are kept. A class whose decoding, passes or encoding fail is also kept
// as is, with a rewrite_failed diagnostic; output for it is never partial.
package rewrite
