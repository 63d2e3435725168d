// Package gitx locates the workspace root.
//
// The workspace root is the nearest ancestor holding an importsync config
// file, or failing that the enclosing git repository. Package discovery
// walks from there.
package gitx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoWorkspace indicates that no workspace root was found above cwd.
var ErrNoWorkspace = errors.New("not in a workspace")

// ErrOutsideWorkspace indicates a path that is not under the workspace root.
var ErrOutsideWorkspace = errors.New("path is outside workspace")

// RootFinder provides an abstraction for locating the workspace root.
type RootFinder interface {
	// Discover finds the workspace root starting from cwd.
	Discover(cwd string) (root string, err error)

	// RelPath computes the relative path from root to the given path.
	RelPath(root, absPath string) (string, error)
}

// RealGitRepo implements RootFinder against the real filesystem.
type RealGitRepo struct {
	// markers are file names that mark a workspace root, checked before .git
	markers []string
}

// NewRealGitRepo creates a new RealGitRepo. A directory holding any of
// markers is taken as the root before a .git entry is.
func NewRealGitRepo(markers ...string) *RealGitRepo {
	return &RealGitRepo{markers: markers}
}

// Discover walks up from cwd. The nearest directory with a marker file wins;
// otherwise the nearest directory with a .git entry (a directory, or a file
// for worktrees and submodules).
func (g *RealGitRepo) Discover(cwd string) (string, error) {
	absPath, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	if len(g.markers) > 0 {
		if root, ok := walkUp(absPath, g.markers...); ok {
			return root, nil
		}
	}
	if root, ok := walkUp(absPath, ".git"); ok {
		return root, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoWorkspace, absPath)
}

func walkUp(start string, names ...string) (string, bool) {
	current := start
	for {
		for _, name := range names {
			if _, err := os.Stat(filepath.Join(current, name)); err == nil {
				return current, true
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// RelPath computes the relative path from root to absPath.
func (g *RealGitRepo) RelPath(root, absPath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute root: %w", err)
	}

	absTarget, err := filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute target: %w", err)
	}

	relPath, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}

	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkspace, absPath)
	}

	return relPath, nil
}
