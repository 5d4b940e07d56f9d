package domain

// Capacity ceilings enforced at creation time. A request that would push a
// count past one of these fails with a limit error before anything is
// inserted.
const (
	// MaxTasksPerUser is the maximum number of tasks a single user may own.
	MaxTasksPerUser = 10000

	// MaxTagsPerUser is the maximum number of tags a single user may own.
	MaxTagsPerUser = 100

	// MaxTagsPerTask is the maximum number of distinct tags attachable to
	// one task.
	MaxTagsPerTask = 10

	// MaxSubtasksPerTask is the maximum number of subtasks under one task.
	MaxSubtasksPerTask = 50

	// MaxBatchSize is the maximum number of items accepted by a single bulk
	// create/update/delete request. Larger batches are rejected wholesale.
	MaxBatchSize = 50
)
