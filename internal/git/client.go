// Package git provides the repository provider: a disposable on-disk
// checkout of a remote repository at an optional ref.
package git

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// FetchError reports a failed repository fetch: unreachable host, bad ref or
// authentication failure.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch repository %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CloneConfig describes a single repository acquisition.
type CloneConfig struct {
	// URL is the repository connection string (HTTP, HTTPS, SSH or a local
	// path).
	URL string

	// Ref optionally selects a branch, tag or commit to check out instead of
	// the remote's default branch.
	Ref string

	// SSHKeyPath optionally points to a private key used to authenticate
	// the fetch. The key is handed to the transport explicitly; no
	// process-wide state is touched.
	SSHKeyPath string
}

// Checkout is a disposable working tree produced by Clone.
type Checkout struct {
	// Dir is the temporary directory holding the working tree.
	Dir string

	// Hash is the commit the working tree is at.
	Hash string

	// Branch is the short branch name when HEAD is a branch.
	Branch string
}

// Filesystem returns the working tree as a billy filesystem rooted at Dir.
func (c *Checkout) Filesystem() billy.Filesystem {
	return osfs.New(c.Dir)
}

// Client defines the repository provider operations.
type Client interface {
	// Clone materializes a repository working tree in a fresh temporary
	// directory.
	Clone(ctx context.Context, cfg *CloneConfig) (*Checkout, error)

	// Cleanup removes the checkout's directory. It is idempotent and safe
	// to call on a nil checkout.
	Cleanup(checkout *Checkout) error
}

// defaultClient implements Client using go-git.
type defaultClient struct{}

// NewDefaultClient creates a new defaultClient.
func NewDefaultClient() Client {
	return &defaultClient{}
}

// Clone clones the repository into a fresh temporary directory and returns
// the checkout. On failure the directory is removed before returning, since
// the caller never receives a handle to a failed clone.
func (*defaultClient) Clone(ctx context.Context, cfg *CloneConfig) (*Checkout, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("repository URL is required")
	}

	cloneOptions := &git.CloneOptions{URL: cfg.URL}

	if cfg.SSHKeyPath != "" {
		auth, err := gitssh.NewPublicKeysFromFile("git", cfg.SSHKeyPath, "")
		if err != nil {
			return nil, &FetchError{URL: cfg.URL, Err: fmt.Errorf("failed to load SSH key %s: %w", cfg.SSHKeyPath, err)}
		}
		cloneOptions.Auth = auth
		slog.Debug("Using SSH key authentication", "key", cfg.SSHKeyPath)
	}

	// Without a ref a shallow clone of the default branch is enough. A ref
	// needs the full history since it may name any commit.
	if cfg.Ref == "" {
		cloneOptions.Depth = 1
	}

	dir, err := os.MkdirTemp("", "gitventory-")
	if err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}

	start := time.Now()
	repo, err := git.PlainCloneContext(ctx, dir, false, cloneOptions)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, &FetchError{URL: cfg.URL, Err: err}
	}

	if cfg.Ref != "" {
		if err := checkoutRef(repo, cfg.Ref); err != nil {
			_ = os.RemoveAll(dir)
			return nil, &FetchError{URL: cfg.URL, Err: err}
		}
	}

	checkout := &Checkout{Dir: dir}
	if head, err := repo.Head(); err == nil {
		checkout.Hash = head.Hash().String()
		if head.Name().IsBranch() {
			checkout.Branch = head.Name().Short()
		}
	}

	slog.Info("Repository clone completed",
		"repository", cfg.URL,
		"ref", cfg.Ref,
		"duration", time.Since(start).String(),
		"commit_sha", checkout.Hash)

	return checkout, nil
}

// checkoutRef moves the working tree to the given branch, tag or commit.
func checkoutRef(repo *git.Repository, ref string) error {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		// Branches of a fresh clone only exist as remote-tracking refs.
		hash, err = repo.ResolveRevision(plumbing.Revision("origin/" + ref))
	}
	if err != nil {
		return fmt.Errorf("failed to resolve ref %q: %w", ref, err)
	}

	workTree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := workTree.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return fmt.Errorf("failed to checkout %q: %w", ref, err)
	}
	return nil
}

// Cleanup removes the checkout's temporary directory.
func (*defaultClient) Cleanup(checkout *Checkout) error {
	if checkout == nil || checkout.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(checkout.Dir); err != nil {
		return fmt.Errorf("failed to remove working directory %s: %w", checkout.Dir, err)
	}
	checkout.Dir = ""
	return nil
}
