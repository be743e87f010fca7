package ramblings

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLister struct {
	posts []BlogPost
	tags  []string
	calls int
	err   error
}

func (l *countingLister) ListPosts(string) ([]BlogPost, error) {
	l.calls++
	return l.posts, l.err
}

func (l *countingLister) ListTags() ([]string, error) {
	return l.tags, l.err
}

func TestPostCacheServesFromMemory(t *testing.T) {
	src := &countingLister{
		posts: []BlogPost{
			{Slug: "a", Tags: []string{"Go"}},
			{Slug: "b", Tags: []string{"web"}},
		},
		tags: []string{"go", "web"},
	}
	c := NewPostCache(src, time.Minute)

	posts, err := c.ListPosts("")
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	tagged, err := c.ListPosts("go")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "a", tagged[0].Slug)

	p, err := c.GetPost("b")
	require.NoError(t, err)
	assert.Equal(t, "b", p.Slug)

	_, err = c.GetPost("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 1, src.calls)

	c.Invalidate()
	_, err = c.ListTags()
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestPostCacheExpires(t *testing.T) {
	src := &countingLister{posts: []BlogPost{{Slug: "a"}}}
	c := NewPostCache(src, 10*time.Millisecond)

	_, err := c.ListPosts("")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = c.ListPosts("")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestPostCacheEmptyIsCached(t *testing.T) {
	src := &countingLister{}
	c := NewPostCache(src, time.Minute)

	posts, err := c.ListPosts("")
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	_, _ = c.ListPosts("")
	assert.Equal(t, 1, src.calls)
}

func TestPostCachePropagatesErrors(t *testing.T) {
	src := &countingLister{err: errors.New("boom")}
	c := NewPostCache(src, time.Minute)

	_, err := c.ListPosts("")
	assert.EqualError(t, err, "boom")
}
