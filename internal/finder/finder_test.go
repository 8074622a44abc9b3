package finder

// Test Plan for the resolution engine:
// - Dedupe collapses same file+line regardless of column and is idempotent
// - Registry resolves the default key, rejects unknown keys, lists keys sorted
// - Forward resolution finds the single grpc-style implementation (scenario A)
// - Forward resolution returns empty, not an error, when nothing matches (scenario B)
// - Two implementations in two files yield two locations in file order (scenario C)
// - Vendor directories never contribute results
// - Precision policy keeps only the most specific tier across files
// - Reverse resolution returns every method with the exact name and marks
//   service agreement without filtering (scenario D)
// - CandidateServiceNames strips convention suffixes repeatedly and title-cases
// - Unreadable proto files are skipped

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/mvp-joe/protolink/internal/cache"
	"github.com/mvp-joe/protolink/internal/prefilter"
	"github.com/mvp-joe/protolink/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var quiet = slog.New(slog.DiscardHandler)

const greeterProto = `syntax = "proto3";

package greeter;

service GreeterService {
  rpc SayHello(HelloReq) returns (HelloResp);
}
`

const farewellProto = `syntax = "proto3";

service Farewell {
  rpc SayGoodbye(ByeReq) returns (ByeResp);
  rpc SayHello(ByeReq) returns (ByeResp);
}
`

const greeterImpl = `package server

import "context"

type greeterServer struct{}

func (s *greeterServer) SayHello(ctx context.Context, req *pb.HelloReq) (*pb.HelloResp, error) {
	return &pb.HelloResp{}, nil
}
`

func newGoFinder(ws *workspace.MemoryWorkspace, policy MatchPolicy) *GoFinder {
	pf := prefilter.New(ws, ws, cache.NewContentCache(), prefilter.Options{
		Include:   []string{"**/*.go"},
		Exclude:   []string{"vendor/**", "**/vendor/**"},
		Keyword:   "func",
		BatchSize: 2,
		Logger:    quiet,
	})
	return NewGoFinder(pf, GoOptions{Policy: policy, BatchSize: 2, Logger: quiet})
}

func newDefinitionFinder(ws *workspace.MemoryWorkspace) *DefinitionFinder {
	return NewDefinitionFinder(ws, ws, cache.NewContentCache(), DefinitionOptions{
		Include: []string{"**/*.proto"},
		Exclude: []string{"vendor/**"},
		Logger:  quiet,
	})
}

func greeterQuery() ImplementationQuery {
	return ImplementationQuery{
		Service:    "Greeter",
		Method:     "SayHello",
		InputType:  "HelloReq",
		OutputType: "HelloResp",
	}
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	locs := []workspace.Location{
		{Path: "a.go", Range: workspace.Range{Start: workspace.Position{Line: 4, Character: 0}}},
		{Path: "a.go", Range: workspace.Range{Start: workspace.Position{Line: 4, Character: 7}}},
		{Path: "b.go", Range: workspace.Range{Start: workspace.Position{Line: 4}}},
		{Path: "a.go", Range: workspace.Range{Start: workspace.Position{Line: 9}}},
	}

	once := Dedupe(locs)
	require.Len(t, once, 3)
	assert.Equal(t, 0, once[0].Range.Start.Character, "first occurrence wins")
	assert.Equal(t, "b.go", once[1].Path)
	assert.Equal(t, 9, once[2].Range.Start.Line)

	assert.Equal(t, once, Dedupe(once))
	assert.Empty(t, Dedupe(nil))
}

type stubFinder struct{ lang string }

func (s stubFinder) Language() string { return s.lang }

func (s stubFinder) FindImplementations(context.Context, ImplementationQuery) ([]workspace.Location, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry(stubFinder{"go"}, stubFinder{"python"})

	f, err := r.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "go", f.Language())

	f, err = r.Lookup("python")
	require.NoError(t, err)
	assert.Equal(t, "python", f.Language())

	_, err = r.Lookup("rust")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Contains(t, err.Error(), "rust")

	r.Register(stubFinder{"java"})
	assert.Equal(t, []string{"go", "java", "python"}, r.Languages())
}

func TestParseMatchPolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseMatchPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyUnion, p)

	p, err = ParseMatchPolicy("precision")
	require.NoError(t, err)
	assert.Equal(t, PolicyPrecision, p)

	_, err = ParseMatchPolicy("fuzzy")
	assert.Error(t, err)
}

func TestFindImplementations_SingleMatch(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{
		"api/greeter.proto": greeterProto,
		"server/greeter.go": greeterImpl,
		"client/client.go":  "package client\n\nfunc call(c pb.GreeterClient) { c.SayHello(nil, nil) }\n",
		"vendor/pb/fake.go": "package pb\n\nfunc (x *fake) SayHello(r *HelloReq) (*HelloResp, error) {}\n",
		"internal/noise.go": "package internal\n\nfunc unrelated() {}\n",
	})

	locs, err := newGoFinder(ws, PolicyUnion).FindImplementations(context.Background(), greeterQuery())
	require.NoError(t, err)
	require.Len(t, locs, 1)

	assert.Equal(t, "/ws/server/greeter.go", locs[0].Path)
	assert.Equal(t, 6, locs[0].Line())
	assert.Equal(t, 0, locs[0].Range.Start.Character)
	assert.Equal(t, locs[0].Range.Start.Line, locs[0].Range.End.Line)
}

func TestFindImplementations_NotFound(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{
		"api/greeter.proto": greeterProto,
		"server/other.go":   "package server\n\nfunc (s *srv) SayGoodbye() {}\n",
	})

	locs, err := newGoFinder(ws, PolicyUnion).FindImplementations(context.Background(), greeterQuery())
	require.NoError(t, err)
	assert.Empty(t, locs)

	// A mention without a declaration passes the prefilter but not the patterns
	ws.SetFile("server/caller.go", "package server\n\nfunc run(c client) { c.SayHello() }\n")
	locs, err = newGoFinder(ws, PolicyUnion).FindImplementations(context.Background(), greeterQuery())
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestFindImplementations_TwoFiles(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{
		"a/greeter.go": greeterImpl,
		"b/legacy.go":  "package b\n\nfunc (g legacyGreeter) SayHello(ctx context.Context, in *v1.HelloReq) (*v1.HelloResp, error) {\n\treturn nil, nil\n}\n",
	})

	locs, err := newGoFinder(ws, PolicyUnion).FindImplementations(context.Background(), greeterQuery())
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "/ws/a/greeter.go", locs[0].Path)
	assert.Equal(t, 6, locs[0].Line())
	assert.Equal(t, "/ws/b/legacy.go", locs[1].Path)
	assert.Equal(t, 2, locs[1].Line())
}

func TestFindImplementations_Policies(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"a/greeter.go": greeterImpl,
		"b/mock.go":    "package b\n\nfunc (m *mockGreeter) SayHello() {}\n",
	}

	union, err := newGoFinder(workspace.NewMemoryWorkspace("/ws", files), PolicyUnion).
		FindImplementations(context.Background(), greeterQuery())
	require.NoError(t, err)
	assert.Len(t, union, 2)

	precise, err := newGoFinder(workspace.NewMemoryWorkspace("/ws", files), PolicyPrecision).
		FindImplementations(context.Background(), greeterQuery())
	require.NoError(t, err)
	require.Len(t, precise, 1)
	assert.Equal(t, "/ws/a/greeter.go", precise[0].Path)

	// With only name-only hits, precision still returns them
	nameOnly, err := newGoFinder(workspace.NewMemoryWorkspace("/ws", map[string]string{"b/mock.go": files["b/mock.go"]}), PolicyPrecision).
		FindImplementations(context.Background(), greeterQuery())
	require.NoError(t, err)
	assert.Len(t, nameOnly, 1)
}

func TestFindImplementations_QualifiedTypes(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{"a/greeter.go": greeterImpl})
	q := greeterQuery()
	q.InputType = "greeter.v1.HelloReq"
	q.OutputType = "greeter.v1.HelloResp"

	locs, err := newGoFinder(ws, PolicyPrecision).FindImplementations(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, 6, locs[0].Line())
}

func TestFindImplementations_Cancelled(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{"a/greeter.go": greeterImpl})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newGoFinder(ws, PolicyUnion).FindImplementations(ctx, greeterQuery())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCandidateServiceNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		receiver string
		want     []string
	}{
		{"greeterServiceImpl", []string{"Greeter", "greeterServiceImpl"}},
		{"alertPilotSrvImpl", []string{"AlertPilot", "alertPilotSrvImpl"}},
		{"GreeterServer", []string{"Greeter", "GreeterServer"}},
		{"*store", []string{"Store", "store"}},
		{"Server", []string{"Server"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.receiver, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateServiceNames(tt.receiver))
		})
	}
}

func TestMatchDefinitions_AdvisoryServiceName(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{
		"api/farewell.proto": farewellProto,
		"api/greeter.proto":  greeterProto,
		"server/greeter.go":  greeterImpl,
	})

	matches, err := newDefinitionFinder(ws).MatchDefinitions(context.Background(), "SayHello", "greeterServiceImpl")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Enumeration order is kept even though only the second agrees on service
	assert.Equal(t, "/ws/api/farewell.proto", matches[0].Location.Path)
	assert.Equal(t, "Farewell", matches[0].Method.Service)
	assert.False(t, matches[0].ServiceMatch)
	assert.Equal(t, 4, matches[0].Location.Line())

	assert.Equal(t, "/ws/api/greeter.proto", matches[1].Location.Path)
	assert.Equal(t, "GreeterService", matches[1].Method.Service)
	assert.True(t, matches[1].ServiceMatch)
	assert.Equal(t, workspace.Range{
		Start: workspace.Position{Line: 5, Character: 6},
		End:   workspace.Position{Line: 5, Character: 14},
	}, matches[1].Location.Range)
}

func TestFindDefinitions(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{
		"api/farewell.proto": farewellProto,
		"api/greeter.proto":  greeterProto,
	})
	f := newDefinitionFinder(ws)

	locs, err := f.FindDefinitions(context.Background(), "SayGoodbye", "")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "/ws/api/farewell.proto", locs[0].Path)
	assert.Equal(t, 3, locs[0].Line())

	// Method names are case-sensitive
	locs, err = f.FindDefinitions(context.Background(), "sayHello", "")
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestFindDefinitions_ReadFailure(t *testing.T) {
	t.Parallel()

	ws := workspace.NewMemoryWorkspace("/ws", map[string]string{
		"api/farewell.proto": farewellProto,
		"api/greeter.proto":  greeterProto,
	})
	ws.FailOpen("api/farewell.proto", errors.New("disk on fire"))

	locs, err := newDefinitionFinder(ws).FindDefinitions(context.Background(), "SayHello", "")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "/ws/api/greeter.proto", locs[0].Path)
}
