// Package harness runs ActDB scenarios written in YAML.
//
// A scenario is a list of steps run against a fresh DB with the built-in
// actions registered. Each step either stores a value, appends a named
// action, or runs a query whose rows are checked against an expect clause:
//
//	name: gather
//	description: Stored values are gathered by an action
//	steps:
//	  - store: foo
//	  - store: {bar: 100}
//	  - act: gather
//	    args: {foo: id_0, bar: id_1}
//	  - query: {id: id_2}
//	    expect:
//	      value: {foo: foo, bar: {bar: 100}}
//
// Every step adds an event to the result trace. RunWithGolden compares the
// trace, serialized as canonical JSON, against testdata/golden/<name>.golden.
//
// With replay: true the log is also saved to an in-memory SQLite store,
// replayed, and checked for identical action values.
package harness
