package repo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoTag is returned by Describe when no tag is reachable from the commit.
var ErrNoTag = errors.New("no reachable tag")

const abbrevLen = 7

type tagName struct {
	name      string
	annotated bool
}

// Describe mirrors `git describe --tags`: the closest reachable tag, followed
// by "-<n>-g<abbrev>" when n commits are reachable from commit but not from
// the tag. Ties go to annotated tags, then to the greatest name.
func Describe(repository *git.Repository, commit *object.Commit) (string, error) {
	tags, err := tagsByCommit(repository)
	if err != nil {
		return "", err
	}
	if names, ok := tags[commit.Hash]; ok {
		return bestTag(names).name, nil
	}

	headSet, err := reachable(repository, commit.Hash)
	if err != nil {
		return "", err
	}

	var (
		best  tagName
		depth = -1
	)
	for hash, names := range tags {
		if !headSet[hash] {
			continue
		}
		n, err := distance(repository, headSet, hash)
		if err != nil {
			return "", err
		}
		tag := bestTag(names)
		if depth < 0 || n < depth || (n == depth && tagBefore(tag, best)) {
			best, depth = tag, n
		}
	}
	if depth < 0 {
		return "", ErrNoTag
	}
	return fmt.Sprintf("%s-%d-g%s", best.name, depth, commit.Hash.String()[:abbrevLen]), nil
}

// tagsByCommit maps each tagged commit to the tags pointing at it.
func tagsByCommit(repository *git.Repository) (map[plumbing.Hash][]tagName, error) {
	iter, err := repository.Tags()
	if err != nil {
		return nil, err
	}
	out := make(map[plumbing.Hash][]tagName)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		tag, err := repository.TagObject(ref.Hash())
		switch {
		case err == nil:
			c, err := tag.Commit()
			if err != nil {
				// tag of a tree or blob
				return nil
			}
			out[c.Hash] = append(out[c.Hash], tagName{name: name, annotated: true})
		case errors.Is(err, plumbing.ErrObjectNotFound):
			out[ref.Hash()] = append(out[ref.Hash()], tagName{name: name})
		default:
			return err
		}
		return nil
	})
	return out, err
}

func tagBefore(a, b tagName) bool {
	if a.annotated != b.annotated {
		return a.annotated
	}
	return a.name > b.name
}

func bestTag(names []tagName) tagName {
	sort.Slice(names, func(i, j int) bool { return tagBefore(names[i], names[j]) })
	return names[0]
}

// distance counts commits in headSet that are not reachable from base.
func distance(repository *git.Repository, headSet map[plumbing.Hash]bool, base plumbing.Hash) (int, error) {
	baseSet, err := reachable(repository, base)
	if err != nil {
		return 0, err
	}
	n := 0
	for h := range headSet {
		if !baseSet[h] {
			n++
		}
	}
	return n, nil
}

func reachable(repository *git.Repository, from plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := repository.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil, err
	}
	set := make(map[plumbing.Hash]bool)
	err = iter.ForEach(func(c *object.Commit) error {
		set[c.Hash] = true
		return nil
	})
	return set, err
}
