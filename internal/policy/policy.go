package policy

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v4/process"
	"gopkg.in/yaml.v3"

	"ChannelGovernor/internal/domain"
)

// Policy is the declarative sandbox document. An empty allowed-tools list
// permits every tool; a zero memory limit disables the ceiling.
type Policy struct {
	AllowedTools  []string `yaml:"allowed_tools"`
	MemoryLimitMB int      `yaml:"memory_limit_mb"`
}

// Enforcer gates every external call against the loaded policy. It only reads
// immutable config and transient OS counters, so concurrent use needs no
// synchronization.
type Enforcer struct {
	allowed map[string]struct{}
	limitMB int
	logger  *slog.Logger

	// rssBytes is swappable in tests; defaults to the current process RSS.
	rssBytes func() (uint64, error)
}

// Load reads the policy document at path. A missing file yields an empty
// policy (allow everything), matching how operators bootstrap new deployments.
func Load(path string, logger *slog.Logger) (*Enforcer, error) {
	var pol Policy

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if logger != nil {
			logger.Warn("policy file not found, using empty policy", "path", path)
		}
	case err != nil:
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &pol); err != nil {
			return nil, &domain.ConfigurationError{Field: "policy", Reason: err.Error()}
		}
	}

	return New(pol, logger), nil
}

// New builds an enforcer from an already-decoded policy.
func New(pol Policy, logger *slog.Logger) *Enforcer {
	allowed := make(map[string]struct{}, len(pol.AllowedTools))
	for _, tool := range pol.AllowedTools {
		allowed[tool] = struct{}{}
	}

	return &Enforcer{
		allowed:  allowed,
		limitMB:  pol.MemoryLimitMB,
		logger:   logger,
		rssBytes: processRSS,
	}
}

// ToolAllowed reports whether the named tool may be called. An empty
// allow-list permits everything.
func (e *Enforcer) ToolAllowed(name string) bool {
	if len(e.allowed) == 0 {
		return true
	}
	_, ok := e.allowed[name]
	return ok
}

// EnforceTool fails with a PolicyViolationError when the tool is blocked.
// Callers invoke it before any external request and abort only that source's
// query, never sibling queries.
func (e *Enforcer) EnforceTool(name string) error {
	if e.ToolAllowed(name) {
		return nil
	}
	return &domain.PolicyViolationError{Tool: name, Reason: "not in allowed_tools"}
}

// CheckMemory reports whether the process is under the configured ceiling.
// With no limit configured it always allows; when usage cannot be read it
// degrades to allow rather than failing on its own instrumentation.
func (e *Enforcer) CheckMemory() bool {
	if e.limitMB <= 0 {
		return true
	}

	rss, err := e.rssBytes()
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("memory introspection unavailable, allowing", "error", err)
		}
		return true
	}

	usageMB := rss / 1024 / 1024
	return usageMB <= uint64(e.limitMB)
}

// EnforceMemory wraps CheckMemory into the shared violation type.
func (e *Enforcer) EnforceMemory() error {
	if e.CheckMemory() {
		return nil
	}
	return &domain.PolicyViolationError{Reason: fmt.Sprintf("memory limit %d MB exceeded", e.limitMB)}
}

func processRSS() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}
