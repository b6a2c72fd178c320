package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers for deterministic testing
var (
	TestAllocationID  = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	TestAllocationID2 = uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
	TestPropertyIDA   = "prop-a"
	TestPropertyIDB   = "prop-b"
)

// TestTime is a fixed UTC instant truncated to the microsecond precision
// PostgreSQL stores.
var TestTime = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
