package engine

import (
	"fmt"

	"github.com/danieljhkim/importsync/internal/workspace"
)

// Mode selects the form cross-package imports are rewritten to.
type Mode string

const (
	// ModeLocal points imports at sibling packages by relative path.
	ModeLocal Mode = "local"

	// ModeRemote restores the registry specifiers preserved by a local run.
	ModeRemote Mode = "remote"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLocal, ModeRemote:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q (expected local or remote)", ErrInvalidMode, s)
	}
}

// ProjectResolver turns a user-supplied target into manifest paths.
type ProjectResolver interface {
	Resolve(target string) ([]string, error)
}

// SyncRequest represents a request to synchronize imports.
type SyncRequest struct {
	// Mode is the requested form (local or remote)
	Mode Mode

	// Target is a package name, manifest path or directory
	Target string

	// Resolver resolves Target; when nil a resolver over the discovered
	// packages and the workspace root is used
	Resolver ProjectResolver

	// DryRun computes the rewrite without writing files
	DryRun bool
}

// SyncResult represents the result of a sync run.
type SyncResult struct {
	// LocalPackages is every package discovered in the workspace
	LocalPackages []*workspace.Package `json:"localPackages"`

	// TargetConfigs is the list of manifests queued for processing
	TargetConfigs []string `json:"targetConfigs"`

	// Targets holds the per-manifest outcome, in TargetConfigs order
	Targets []TargetResult `json:"targets"`
}

// Counts returns how many targets ended in each status.
func (r *SyncResult) Counts() map[TargetStatus]int {
	counts := make(map[TargetStatus]int)
	for _, t := range r.Targets {
		counts[t.Status]++
	}
	return counts
}

// TargetStatus is the outcome of processing one manifest.
type TargetStatus string

const (
	StatusUpdated   TargetStatus = "updated"
	StatusUnchanged TargetStatus = "unchanged"
	StatusSkipped   TargetStatus = "skipped"
	StatusFailed    TargetStatus = "failed"
)

// TargetResult is the outcome for one manifest.
type TargetResult struct {
	ConfigPath string       `json:"configPath"`
	Mode       Mode         `json:"mode"`
	Status     TargetStatus `json:"status"`

	// Reason explains a skip or failure.
	Reason string `json:"reason,omitempty"`

	// Imports is the number of entries in the written imports block.
	Imports int `json:"imports"`

	// Unresolved lists, as package URLs, the registry imports local mode
	// left in registry form because no local package provides them.
	Unresolved []string `json:"unresolved,omitempty"`
}

// ApplyOptions tunes a single-manifest rewrite.
type ApplyOptions struct {
	DryRun bool
}
