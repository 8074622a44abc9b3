package prefilter

// Test Plan for Prefilter:
// - BaseTypeName strips package qualifiers and the stream keyword
// - Keywords returns {method, keyword} as required and base types as optional
// - A file qualifies only if it contains every required keyword
// - Optional keywords never disqualify a file, only count hits
// - Vendor files are excluded through the enumerator globs
// - Unreadable files are skipped without failing the batch
// - Content is served from the cache on repeat queries
// - Candidates keep enumeration order across batches

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mvp-joe/protolink/internal/cache"
	"github.com/mvp-joe/protolink/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestPrefilter(ws *workspace.MemoryWorkspace, c *cache.ContentCache) *Prefilter {
	return New(ws, ws, c, Options{
		Include:   []string{"**/*.go"},
		Exclude:   []string{"vendor/**", "**/vendor/**"},
		Keyword:   "func",
		BatchSize: 2,
	})
}

func TestBaseTypeName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"HelloReq":              "HelloReq",
		"pb.HelloReq":           "HelloReq",
		"google.protobuf.Empty": "Empty",
		"  stream pb.Chunk ":    "Chunk",
		"stream Chunk":          "Chunk",
		"":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, BaseTypeName(in), in)
	}
}

func TestKeywords(t *testing.T) {
	t.Parallel()

	p := newTestPrefilter(workspace.NewMemoryWorkspace("/ws", nil), cache.NewContentCache())

	required, optional := p.Keywords(Query{Method: "SayHello", InputType: "pb.HelloReq", OutputType: "HelloResp"})
	assert.Equal(t, []string{"SayHello", "func"}, required)
	assert.Equal(t, []string{"HelloReq", "HelloResp"}, optional)

	_, optional = p.Keywords(Query{Method: "SayHello"})
	assert.Empty(t, optional)
}

func TestFindCandidates(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{
		"server/greeter.go":   "package server\nfunc (s *srv) SayHello(r *pb.HelloReq) (*pb.HelloResp, error) {}",
		"server/untyped.go":   "package server\nfunc (s *srv) SayHello() {}",
		"client/caller.go":    "package client\nvar _ = c.SayHello",
		"other/nothing.go":    "package other\nfunc Run() {}",
		"vendor/x/greeter.go": "package x\nfunc (s *srv) SayHello() {}",
		"api/greeter.proto":   "service Greeter { rpc SayHello(HelloReq) returns (HelloResp); }",
	})
	p := newTestPrefilter(ws, cache.NewContentCache())

	candidates, err := p.FindCandidates(context.Background(), Query{Method: "SayHello", InputType: "HelloReq", OutputType: "pb.HelloResp"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "/ws/server/greeter.go", candidates[0].Path)
	assert.Equal(t, 2, candidates[0].OptionalHits)
	assert.Contains(t, candidates[0].Text, "SayHello")

	// No type names at all, still a candidate
	assert.Equal(t, "/ws/server/untyped.go", candidates[1].Path)
	assert.Equal(t, 0, candidates[1].OptionalHits)
}

func TestFindCandidates_ReadFailureSkipsFile(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{
		"a.go": "func (s *S) Ping() {}",
		"b.go": "func (s *S) Ping() {}",
		"c.go": "func (s *S) Ping() {}",
	})
	ws.FailOpen("b.go", errors.New("permission denied"))
	p := newTestPrefilter(ws, cache.NewContentCache())

	candidates, err := p.FindCandidates(context.Background(), Query{Method: "Ping"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "/ws/a.go", candidates[0].Path)
	assert.Equal(t, "/ws/c.go", candidates[1].Path)
}

func TestFindCandidates_UsesCache(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{
		"a.go": "func (s *S) Ping() {}",
	})
	c := cache.NewContentCache()
	p := newTestPrefilter(ws, c)

	for i := 0; i < 3; i++ {
		_, err := p.FindCandidates(context.Background(), Query{Method: "Ping"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, ws.Opens("a.go"))

	// Invalidation forces a fresh read that sees new content
	ws.SetFile("a.go", "func (s *S) Pong() {}")
	c.Invalidate("/ws/a.go")
	candidates, err := p.FindCandidates(context.Background(), Query{Method: "Ping"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, 2, ws.Opens("a.go"))
}

func TestFilter_OrderAcrossBatches(t *testing.T) {
	t.Parallel()

	files := map[string]string{}
	var paths []string
	for i := 0; i < 9; i++ {
		rel := fmt.Sprintf("f%d.go", i)
		files[rel] = "func (s *S) Ping() {}"
		paths = append(paths, "/ws/"+rel)
	}
	ws := workspace.NewMemoryWorkspace("/ws", files)
	p := newTestPrefilter(ws, cache.NewContentCache())

	candidates, err := p.Filter(context.Background(), paths, Query{Method: "Ping"})
	require.NoError(t, err)
	require.Len(t, candidates, 9)
	for i, c := range candidates {
		assert.Equal(t, paths[i], c.Path)
	}
}

func TestFindCandidates_EnumerationError(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", nil)
	p := New(ws, ws, cache.NewContentCache(), Options{Include: []string{"[bad"}, Keyword: "func"})

	_, err := p.FindCandidates(context.Background(), Query{Method: "Ping"})
	assert.Error(t, err)
}
