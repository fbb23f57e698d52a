// Package ir provides the value model stored in and derived by ActDB.
//
// This package contains the JSON-like value domain only. All other internal
// packages import ir; ir imports nothing internal. This keeps the value model
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - IRValue is sealed: null, string, int, float, bool, array, object
//   - Values are trees; there is no way to build a cycle
//   - Floats must be finite (NaN and Inf have no JSON form)
//   - Host Go values and JSON are converted at the boundary (FromGo,
//     UnmarshalIRValue), never duck-typed deeper in
//   - Canonical JSON (RFC 8785) is the only encoding used for hashing
package ir
