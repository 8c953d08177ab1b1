// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hostcall implements the refinement/accumulation host-function
// ABI (spec.md §4.5): FETCH, READ, WRITE, LOOKUP, INFO, SOLICIT, FORGET and
// QUERY, dispatched on a pvm.State suspended with Status == pvm.HOST by an
// ECALLI instruction.
//
// The calling convention follows spec.md's "registers r7..r12 carry
// arguments" rule literally, but the spec names each handler's arguments
// without pinning them to specific registers. The assignment used here —
// r7 first, r8 second, and so on in table order, left unused trailing
// registers untouched — is this package's engineering choice, exactly the
// same kind of gap-filling documented for the PVM's opcode encoding in
// pvm/opcodes.go.
package hostcall
