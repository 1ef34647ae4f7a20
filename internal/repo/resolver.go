// Package repo opens or clones the project source and checks out the
// requested revision.
package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/altuslabsxyz/xray-pack/internal/output"
	"github.com/altuslabsxyz/xray-pack/internal/target"
)

// PathOptions selects where the source tree comes from.
type PathOptions struct {
	// FromSource clones the target repository into WorkDir.
	FromSource bool
	// SourcePath is an existing checkout, used when FromSource is false.
	SourcePath string
	// WorkDir receives the fresh clone.
	WorkDir string
}

// Resolution is the outcome of a successful Resolve.
type Resolution struct {
	Dir        string // worktree root
	Identifier string // describe output, or the full commit hash
	Commit     string
	Ref        string // resolved reference name, empty when detached by hash
	Owned      bool   // true when Dir was cloned by this run
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRepoURL clones from url instead of the target's canonical repository.
func WithRepoURL(url string) Option {
	return func(r *Resolver) {
		r.repoURL = url
	}
}

// WithGetenv replaces os.Getenv for proxy discovery.
func WithGetenv(getenv func(string) string) Option {
	return func(r *Resolver) {
		r.getenv = getenv
	}
}

// Resolver implements revision resolution on top of go-git.
type Resolver struct {
	logger  output.LoggerInterface
	repoURL string
	getenv  func(string) string
}

// NewResolver creates a Resolver.
func NewResolver(logger output.LoggerInterface, opts ...Option) *Resolver {
	if logger == nil {
		logger = output.DefaultLogger
	}
	r := &Resolver{logger: logger, getenv: os.Getenv}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve obtains the repository, checks out version and describes it.
//
// In local-path mode the caller's checkout is modified in place.
func (r *Resolver) Resolve(ctx context.Context, t target.BuildTarget, version string, opts PathOptions) (*Resolution, error) {
	info := t.Info()
	if version == "" {
		version = info.DefaultVersion
	}

	repository, dir, owned, err := r.open(ctx, info, opts)
	if err != nil {
		return nil, err
	}
	r.logger.Info("%s repository located at %s", info.DisplayName, dir)

	r.logger.Debug("Checking out %s version %s", info.DisplayName, version)
	commit, ref, err := resolveRevision(repository, version)
	if err != nil {
		return nil, &GitError{Operation: "resolve", Target: version, Err: err}
	}
	if err := checkout(repository, commit, ref); err != nil {
		return nil, &GitError{Operation: "checkout", Target: version, Err: err}
	}
	r.logger.Info("Switched to %s version %s", info.DisplayName, version)

	id, err := Describe(repository, commit)
	if errors.Is(err, ErrNoTag) {
		id = commit.Hash.String()
	} else if err != nil {
		return nil, &GitError{Operation: "describe", Target: commit.Hash.String(), Err: err}
	}
	r.logger.Info("Build identifier: %s", id)

	res := &Resolution{
		Dir:        dir,
		Identifier: id,
		Commit:     commit.Hash.String(),
		Owned:      owned,
	}
	if ref != nil {
		res.Ref = ref.Name().String()
	}
	return res, nil
}

func (r *Resolver) open(ctx context.Context, info target.Info, opts PathOptions) (*git.Repository, string, bool, error) {
	if opts.FromSource {
		url := r.repoURL
		if url == "" {
			url = info.RepoURL
		}
		dest := filepath.Join(opts.WorkDir, info.DisplayName)
		cloneOpts := &git.CloneOptions{
			URL:      url,
			Tags:     git.AllTags,
			Progress: r.logger.Writer(),
		}
		if proxy := ProxyFromEnv(r.getenv); proxy != "" {
			r.logger.Debug("Using proxy %s for clone", proxy)
			cloneOpts.ProxyOptions = transport.ProxyOptions{URL: proxy}
		}
		r.logger.Debug("Cloning %s into %s", url, dest)
		repository, err := git.PlainCloneContext(ctx, dest, false, cloneOpts)
		if err != nil {
			return nil, "", false, &GitError{Operation: "clone", Target: url, Err: err}
		}
		return repository, dest, true, nil
	}

	path := opts.SourcePath
	if path == "" {
		path = "."
	}
	r.logger.Debug("Opening %s repository at %s", info.DisplayName, path)
	repository, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, "", false, &GitError{Operation: "open", Target: path, Err: err}
	}
	wt, err := repository.Worktree()
	if err != nil {
		return nil, "", false, &GitError{Operation: "open", Target: path, Err: err}
	}
	dir := wt.Filesystem.Root()
	r.logger.Warn("Building from %s; its checked-out revision will be changed", dir)
	return repository, dir, false, nil
}

// candidateRefs lists the reference names tried for a short name, following
// git's DWIM order plus the origin remote for fresh clones.
func candidateRefs(version string) []plumbing.ReferenceName {
	if strings.HasPrefix(version, "refs/") {
		return []plumbing.ReferenceName{plumbing.ReferenceName(version)}
	}
	return []plumbing.ReferenceName{
		plumbing.NewTagReferenceName(version),
		plumbing.NewBranchReferenceName(version),
		plumbing.ReferenceName("refs/remotes/" + version),
		plumbing.NewRemoteReferenceName("origin", version),
	}
}

// resolveRevision turns version into a commit and, when version names a
// reference, that reference.
func resolveRevision(repository *git.Repository, version string) (*object.Commit, *plumbing.Reference, error) {
	for _, name := range candidateRefs(version) {
		ref, err := repository.Reference(name, true)
		if err != nil {
			continue
		}
		commit, err := peelToCommit(repository, ref.Hash())
		if err != nil {
			return nil, nil, err
		}
		return commit, ref, nil
	}

	hash, err := repository.ResolveRevision(plumbing.Revision(version))
	if err != nil {
		return nil, nil, fmt.Errorf("unknown revision %q: %w", version, err)
	}
	commit, err := peelToCommit(repository, *hash)
	if err != nil {
		return nil, nil, err
	}
	return commit, nil, nil
}

// peelToCommit follows annotated tags down to the commit they point at.
func peelToCommit(repository *git.Repository, hash plumbing.Hash) (*object.Commit, error) {
	tag, err := repository.TagObject(hash)
	if err == nil {
		return tag.Commit()
	}
	if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, err
	}
	return repository.CommitObject(hash)
}

// checkout updates the worktree. Branches become the symbolic HEAD; tags,
// remote refs and bare revisions detach HEAD at the commit.
func checkout(repository *git.Repository, commit *object.Commit, ref *plumbing.Reference) error {
	wt, err := repository.Worktree()
	if err != nil {
		return err
	}
	if ref != nil && ref.Name().IsBranch() {
		return wt.Checkout(&git.CheckoutOptions{Branch: ref.Name()})
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: commit.Hash})
}
