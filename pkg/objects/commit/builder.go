package commit

import (
	"errors"
	"fmt"

	"github.com/kinnison/git-sync/pkg/objects"
)

// CommitBuilder provides a fluent interface for building commits
type CommitBuilder struct {
	commit *Commit
	errs   []error
}

// NewCommitBuilder creates a new CommitBuilder
func NewCommitBuilder() *CommitBuilder {
	return &CommitBuilder{commit: &Commit{}}
}

// Tree sets the tree hash for the commit
func (b *CommitBuilder) Tree(hash objects.ObjectHash) *CommitBuilder {
	if err := hash.Validate(); err != nil {
		b.errs = append(b.errs, fmt.Errorf("invalid tree hash: %w", err))
	} else {
		b.commit.Tree = hash
	}
	return b
}

// Parents appends parent hashes
func (b *CommitBuilder) Parents(hashes ...objects.ObjectHash) *CommitBuilder {
	for _, h := range hashes {
		if err := h.Validate(); err != nil {
			b.errs = append(b.errs, fmt.Errorf("invalid parent hash: %w", err))
			continue
		}
		b.commit.Parents = append(b.commit.Parents, h)
	}
	return b
}

// Author sets the author of the commit
func (b *CommitBuilder) Author(author *Person) *CommitBuilder {
	b.commit.Author = author
	return b
}

// Committer sets the committer of the commit
func (b *CommitBuilder) Committer(committer *Person) *CommitBuilder {
	b.commit.Committer = committer
	return b
}

// Message sets the commit message
func (b *CommitBuilder) Message(message string) *CommitBuilder {
	b.commit.Message = message
	return b
}

// Build creates the Commit, returning an error if validation fails
func (b *CommitBuilder) Build() (*Commit, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("commit builder: %w", errors.Join(b.errs...))
	}
	if err := b.commit.Validate(); err != nil {
		return nil, err
	}
	return b.commit, nil
}
