package scenario

// Scenario is one declarative workload: executor shape plus the tasks to
// spawn into it.
type Scenario struct {
	Name          string     `yaml:"name" json:"name"`
	Workers       int        `yaml:"workers,omitempty" json:"workers,omitempty"`
	InjectorBatch int        `yaml:"injector_batch,omitempty" json:"injector_batch,omitempty"`
	Submitters    int        `yaml:"submitters,omitempty" json:"submitters,omitempty"`
	Deterministic bool       `yaml:"deterministic,omitempty" json:"deterministic,omitempty"`
	Tasks         []TaskSpec `yaml:"tasks" json:"tasks"`
}

// TaskSpec describes one task to spawn.
type TaskSpec struct {
	ID      string       `yaml:"id,omitempty" json:"id,omitempty"`
	Pattern string       `yaml:"pattern" json:"pattern"`
	Handler string       `yaml:"handler,omitempty" json:"handler,omitempty"`
	Guard   *GuardSpec   `yaml:"guard,omitempty" json:"guard,omitempty"`
	Context *ContextSpec `yaml:"context,omitempty" json:"context,omitempty"`
}

// GuardSpec is the serialized form of a guard tree. Kind selects which of
// the other fields apply; the CUE schema enforces the shape before this
// struct is ever populated.
type GuardSpec struct {
	Kind string `yaml:"kind" json:"kind"`

	// predicate
	Op    string   `yaml:"op,omitempty" json:"op,omitempty"`
	Index int      `yaml:"index,omitempty" json:"index,omitempty"`
	Value float64  `yaml:"value,omitempty" json:"value,omitempty"`
	Upper *float64 `yaml:"upper,omitempty" json:"upper,omitempty"`

	// resource
	Resource  string  `yaml:"resource,omitempty" json:"resource,omitempty"`
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`

	// state
	Flags []string `yaml:"flags,omitempty" json:"flags,omitempty"`

	// and / or
	Guards []GuardSpec `yaml:"guards,omitempty" json:"guards,omitempty"`

	// not
	Guard *GuardSpec `yaml:"guard,omitempty" json:"guard,omitempty"`
}

// ContextSpec describes the execution context given to a task.
type ContextSpec struct {
	Observations []float64 `yaml:"observations,omitempty" json:"observations,omitempty"`
	CPU          float64   `yaml:"cpu,omitempty" json:"cpu,omitempty"`
	Memory       float64   `yaml:"memory,omitempty" json:"memory,omitempty"`
	IO           float64   `yaml:"io,omitempty" json:"io,omitempty"`
	QueueDepth   float64   `yaml:"queue_depth,omitempty" json:"queue_depth,omitempty"`
	Flags        []string  `yaml:"flags,omitempty" json:"flags,omitempty"`
}
