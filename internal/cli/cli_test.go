package cli

// Test Plan for CLI commands:
// - parsePosition accepts file:line and rejects malformed positions
// - impl prints the single implementation as file:line:column
// - impl prompts for a choice among several and prints the chosen one
// - impl --no-prompt prints every candidate
// - impl reports not found through stderr and an exitError
// - impl --json writes the result object
// - def resolves a Go position back to its rpc
// - lens lists annotations and runs the one on a line
// - the terminal navigator treats bad input and EOF as a dismissal
// - version prints build information

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/protolink/internal/jump"
	"github.com/mvp-joe/protolink/internal/workspace"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeterProto = `syntax = "proto3";

service Greeter {
  rpc SayHello(HelloReq) returns (HelloResp);
  rpc SayGoodbye(ByeReq) returns (ByeResp);
}
`

const greeterImpl = `package server

type greeterServer struct{}

func (s *greeterServer) SayHello(ctx context.Context, req *pb.HelloReq) (*pb.HelloResp, error) {
	return nil, nil
}
`

const goodbyeImpl = `package server

func (s *greeterServer) SayGoodbye(ctx context.Context, req *pb.ByeReq) (*pb.ByeResp, error) {
	return nil, nil
}
`

const legacyGoodbyeImpl = `package legacy

func (l *legacyGreeter) SayGoodbye(ctx context.Context, req *pb.ByeReq) (*pb.ByeResp, error) {
	return nil, nil
}
`

// setupWorkspace writes a small workspace and points the global flags at it.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range map[string]string{
		"api/greeter.proto": greeterProto,
		"server/greeter.go": greeterImpl,
		"server/goodbye.go": goodbyeImpl,
		"legacy/goodbye.go": legacyGoodbyeImpl,
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	rootDir, cfgFile = root, ""
	implFlags, defFlags, lensFlags = jumpFlags{}, jumpFlags{}, jumpFlags{}
	implAt, implInput, implOutput, implLang = "", "", "", ""
	defAt, defReceiver = "", ""
	lensRun = 0
	t.Cleanup(func() { rootDir = "" })
	return root
}

func newTestCommand(input string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetContext(context.Background())
	return cmd, &out, &errOut
}

func TestParsePosition(t *testing.T) {
	file, line, err := parsePosition("api/greeter.proto:12")
	require.NoError(t, err)
	assert.Equal(t, "api/greeter.proto", file)
	assert.Equal(t, 12, line)

	file, _, err = parsePosition(`C:\src\greeter.proto:3`)
	require.NoError(t, err)
	assert.Equal(t, `C:\src\greeter.proto`, file)

	for _, bad := range []string{"greeter.proto", ":3", "greeter.proto:0", "greeter.proto:x"} {
		_, _, err := parsePosition(bad)
		assert.Error(t, err, bad)
	}
}

func TestImpl_SingleResult(t *testing.T) {
	root := setupWorkspace(t)
	cmd, out, _ := newTestCommand("")

	require.NoError(t, runImpl(cmd, []string{"Greeter", "SayHello"}))
	assert.Equal(t, filepath.Join(root, "server", "greeter.go")+":5:1\n", out.String())
}

func TestImpl_PromptsForChoice(t *testing.T) {
	root := setupWorkspace(t)
	cmd, out, errOut := newTestCommand("2\n")
	implAt = "api/greeter.proto:5"

	require.NoError(t, runImpl(cmd, nil))
	assert.Contains(t, errOut.String(), "Found 2 implementations, select one")
	assert.Contains(t, errOut.String(), "1) legacy/goodbye.go (line 3)")
	assert.Equal(t, filepath.Join(root, "server", "goodbye.go")+":3:1\n", out.String())
}

func TestImpl_NoPrompt(t *testing.T) {
	setupWorkspace(t)
	cmd, out, errOut := newTestCommand("")
	implFlags.noPrompt = true

	require.NoError(t, runImpl(cmd, []string{"Greeter", "SayGoodbye"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 2)
	assert.NotContains(t, errOut.String(), "select one")
}

func TestImpl_NotFound(t *testing.T) {
	setupWorkspace(t)
	cmd, out, errOut := newTestCommand("")

	err := runImpl(cmd, []string{"Greeter", "Wave"})
	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, jump.OutcomeNotFound, exit.outcome)
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "info: No go implementation found for Greeter.Wave")
}

func TestImpl_JSON(t *testing.T) {
	setupWorkspace(t)
	cmd, out, _ := newTestCommand("")
	implFlags.json = true

	require.NoError(t, runImpl(cmd, []string{"Greeter", "SayHello"}))

	var res jump.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, jump.OutcomeNavigated, res.Outcome)
	require.NotNil(t, res.Selected)
	assert.Equal(t, 4, res.Selected.Line())
}

func TestImpl_MissingArguments(t *testing.T) {
	setupWorkspace(t)
	cmd, _, _ := newTestCommand("")

	assert.Error(t, runImpl(cmd, []string{"Greeter"}))

	implAt = "api/greeter.proto:1"
	assert.Error(t, runImpl(cmd, nil))
}

func TestDef_ByPosition(t *testing.T) {
	root := setupWorkspace(t)
	cmd, out, _ := newTestCommand("")
	defAt = "server/greeter.go:5"

	require.NoError(t, runDef(cmd, nil))
	assert.Equal(t, filepath.Join(root, "api", "greeter.proto")+":4:7\n", out.String())
}

func TestLens(t *testing.T) {
	root := setupWorkspace(t)

	cmd, out, _ := newTestCommand("")
	require.NoError(t, runLens(cmd, []string{"api/greeter.proto"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "4\t→ Jump to implementation"))

	cmd, out, _ = newTestCommand("")
	lensRun = 4
	require.NoError(t, runLens(cmd, []string{"api/greeter.proto"}))
	assert.Equal(t, filepath.Join(root, "server", "greeter.go")+":5:1\n", out.String())

	cmd, _, _ = newTestCommand("")
	lensRun = 2
	assert.Error(t, runLens(cmd, []string{"api/greeter.proto"}))
}

func TestTerminalNavigator_Dismissal(t *testing.T) {
	items := []workspace.PickItem{
		{Label: "a.go", Description: "line 1"},
		{Label: "b.go", Description: "line 2"},
	}

	for _, input := range []string{"", "\n", "7\n", "abc\n"} {
		var out, errOut bytes.Buffer
		nav := newTerminalNavigator(strings.NewReader(input), &out, &errOut, true)
		idx, ok, err := nav.Pick(context.Background(), "pick", items)
		require.NoError(t, err, input)
		assert.False(t, ok, input)
		assert.Equal(t, -1, idx, input)
	}

	var out, errOut bytes.Buffer
	nav := newTerminalNavigator(strings.NewReader("1"), &out, &errOut, true)
	idx, ok, err := nav.Pick(context.Background(), "pick", items)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestVersion(t *testing.T) {
	cmd, out, _ := newTestCommand("")
	versionCmd.Run(cmd, nil)
	assert.Contains(t, out.String(), "Protolink dev")
}

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressReporter(&buf)

	require.NotPanics(t, func() {
		p.Advance(1)
		p.Start(3)
		p.Advance(2)
		p.Advance(1)
		p.Finish()
		p.Finish()
	})
}
