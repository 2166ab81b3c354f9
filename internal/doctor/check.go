// Package doctor implements a pluggable health-check registry for an
// overstory project: a one-file-per-check layout where a BaseCheck
// embeds a name/description/category, an optional Fixable check knows
// how to repair what it finds, and a Doctor runs every registered check
// against a shared CheckContext.
package doctor

import "time"

// Status is the closed set of outcomes a check can report.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Category groups checks for display.
type Category string

const (
	CategoryConfig    Category = "config"
	CategorySession   Category = "session"
	CategoryWorktree  Category = "worktree"
	CategoryHookGuard Category = "hook-guard"
	CategoryStorage   Category = "storage"
)

// CheckContext carries the shared inputs every check needs.
type CheckContext struct {
	ProjectRoot  string
	MetadataDir  string
	WorktreesDir string
	Verbose      bool
}

// CheckResult is what Run returns for one check invocation.
type CheckResult struct {
	Name     string
	Status   Status
	Message  string
	Details  []string
	FixHint  string
	Duration time.Duration
}

// Check is implemented by every registered health check.
type Check interface {
	Name() string
	Description() string
	Category() Category
	Run(ctx *CheckContext) *CheckResult
}

// Fixable is implemented by checks that can repair what they find.
type Fixable interface {
	Check
	Fix(ctx *CheckContext) error
}

// BaseCheck gives a concrete check its identity fields.
type BaseCheck struct {
	CheckName        string
	CheckDescription string
	CheckCategory    Category
}

func (b BaseCheck) Name() string        { return b.CheckName }
func (b BaseCheck) Description() string { return b.CheckDescription }
func (b BaseCheck) Category() Category  { return b.CheckCategory }

// FixableCheck embeds BaseCheck for checks that also implement Fix.
type FixableCheck struct {
	BaseCheck
}

// Doctor runs a registered set of checks against one CheckContext.
type Doctor struct {
	checks []Check
}

// NewDoctor returns an empty Doctor ready for Register calls.
func NewDoctor() *Doctor {
	return &Doctor{}
}

// Register adds one check.
func (d *Doctor) Register(c Check) {
	d.checks = append(d.checks, c)
}

// RegisterAll adds every check in cs, in order.
func (d *Doctor) RegisterAll(cs ...Check) {
	for _, c := range cs {
		d.Register(c)
	}
}

// Run executes every registered check and returns its results in
// registration order, timing each.
func (d *Doctor) Run(ctx *CheckContext) []*CheckResult {
	results := make([]*CheckResult, 0, len(d.checks))
	for _, c := range d.checks {
		start := time.Now()
		res := c.Run(ctx)
		res.Duration = time.Since(start)
		if res.Name == "" {
			res.Name = c.Name()
		}
		results = append(results, res)
	}
	return results
}

// Fix runs Fix on every registered check that failed its last Run and
// implements Fixable, returning the names it attempted and any errors.
func (d *Doctor) Fix(ctx *CheckContext, results []*CheckResult) map[string]error {
	failed := make(map[string]bool)
	for _, r := range results {
		if r.Status != StatusOK {
			failed[r.Name] = true
		}
	}
	outcomes := make(map[string]error)
	for _, c := range d.checks {
		if !failed[c.Name()] {
			continue
		}
		fixable, ok := c.(Fixable)
		if !ok {
			continue
		}
		outcomes[c.Name()] = fixable.Fix(ctx)
	}
	return outcomes
}
