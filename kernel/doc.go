// Package kernel implements the kind kernel, the Markov-chain step that
// reassigns features among kinds.
//
// A KindKernel takes exclusive ownership of a JointModel/Assignments pair for
// its lifetime. Each Run asks the structure proposer for a new
// feature-to-kind mapping, applies the accepted moves one feature at a time,
// tallies kind births and deaths, and restores the auxiliary empty-kind
// buffer that gives fresh structure room to appear. Close drains the buffer
// so persisted structure carries no placeholder kinds.
//
// Invariant violations panic with a crosscat-prefixed diagnostic: the pair
// has no safe partial state to resume from, so a violated invariant means
// restoring from a checkpoint, not handling an error.
package kernel
