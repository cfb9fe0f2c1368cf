package pages

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func TestReadRevision_NotARepository(t *testing.T) {
	rev, err := ReadRevision(t.TempDir())
	require.NoError(t, err)
	require.Nil(t, rev)
}

func TestReadRevision_NoCommits(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	rev, err := ReadRevision(dir)
	require.NoError(t, err)
	require.Nil(t, rev)
}

func TestCheck_RecordsRevision(t *testing.T) {
	dir, cfg := docsTree(t)
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))
	hash, err := wt.Commit("docs", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	report, err := Check(context.Background(), cfg, dir)
	require.NoError(t, err)
	require.NotNil(t, report.Revision)
	require.Equal(t, hash.String(), report.Revision.Commit)
	require.NotEmpty(t, report.Revision.Branch)

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
	require.Contains(t, buf.String(), "  at "+hash.String()[:12])
}
