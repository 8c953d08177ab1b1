// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hostcall

import "errors"

// Result codes (spec.md §4.5, §7 "Host errors"). These are delivered
// in-band through register r7, never as Go errors: "Host-level result
// codes are NOT errors" (spec.md §7 propagation policy).
//
// NONE's value is pinned by spec.md ("sentinel NONE = 2^64 − 9"). HUH,
// FULL, WHO and CORE have no numeric value in spec.md — it only names them
// as a fixed set of handler-level outcomes — so they are assigned the
// adjacent descending sentinels below NONE, keeping the whole host-error
// space in one contiguous, easily-recognised high range.
const (
	ResultOK   uint64 = 0
	ResultNone uint64 = ^uint64(0) - 8  // 2^64 - 9
	ResultHuh  uint64 = ^uint64(0) - 9  // 2^64 - 10
	ResultFull uint64 = ^uint64(0) - 10 // 2^64 - 11
	ResultWho  uint64 = ^uint64(0) - 11 // 2^64 - 12
	ResultCore uint64 = ^uint64(0) - 12 // 2^64 - 13
)

// ErrUnknownHandler names the failure of an ECALLI id outside the eight
// defined handlers ("unknown ids trap", spec.md §7). Dispatcher.Call does
// not return it: for such an id Call sets the PVM status to PANIC.
var ErrUnknownHandler = errors.New("hostcall: unknown handler id")
