// Package frame defines the augmented-stack-frame layout the LDB
// runtime contract requires: every instrumented call publishes a
// previous-frame link, a canary+tag word, a generation number, and a
// return program counter, in that fixed order.
//
// Go has no portable compiler-assist hook to rewrite function
// prologues the way an LLVM instrumentation pass would, so this
// package stands up a per-goroutine shadow-stack arena (Arena) in
// place of the raw machine stack: the same four words, the same
// publication order, the same canary/sequence-lock discipline, just
// addressed by index into Go-owned memory instead of by %fs-relative
// offset.
package frame

// Canary is the fixed sentinel every live augmented frame carries.
// A mismatch means the frame belongs to non-instrumented code or was
// read mid-write.
const Canary uint32 = 0xDEADBEEF

// MaxCallDepth bounds how many nested augmented frames a single
// goroutine may have live at once.
const MaxCallDepth = 1024
