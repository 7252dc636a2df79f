// Package resolve answers renaming questions that need the class
// hierarchy.
//
// Resolver searches a whole mapping set breadth first for a member
// signature when the declaring class is unknown. Remapper combines the
// set, an InheritanceProvider and the Resolver into the lookup used by
// the bytecode and sidecar rewriters: owner first, then the owner's
// supertypes, then the global search.
package resolve
