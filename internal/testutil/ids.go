package testutil

import "fmt"

// FixedLogID returns a log id generator that always yields id.
//
// Golden output that includes the log id stays byte-identical across runs.
// If id is empty, the generator yields "test-log-00000000-0000-0000-0000-000000000001".
func FixedLogID(id string) func() string {
	if id == "" {
		id = "test-log-00000000-0000-0000-0000-000000000001"
	}
	return func() string { return id }
}

// SequentialLogIDs returns a generator yielding "<prefix>-1", "<prefix>-2", ...
// It is not safe for concurrent use.
func SequentialLogIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
