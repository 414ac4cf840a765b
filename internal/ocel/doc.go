// Package ocel provides the object-centric event log model for ocelkit.
//
// This package contains the value variant and the log container types.
// All other internal packages import ocel; ocel imports nothing internal.
// This keeps the model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value is a sealed variant: String, Int, Float, Bool, Timestamp, List, Map
//   - Timestamps are timezone-aware instants with millisecond precision
//   - Transforming operations (repair, merge) return new logs; value trees
//     are shared structurally, container maps are copied
package ocel
