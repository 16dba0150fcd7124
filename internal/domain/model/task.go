package model

// Task carries one consolidated item of a pass to a scoring worker.
// All tasks of a pass share the same weight snapshot.
type Task struct {
	PassID  string
	Index   int
	Item    ConsolidatedItem
	Weights WeightTable
	Reply   chan<- TaskResult
}

// TaskResult is the worker's answer for a task, addressed by index.
// A non-nil Err means the worker could not score the item.
type TaskResult struct {
	Index  int
	Result ScoredResult
	Err    error
}
