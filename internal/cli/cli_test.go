package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/estimation-maison/sitefix/internal/config"
	"github.com/estimation-maison/sitefix/internal/testutil"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	os.Stdout = w

	outputCh := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		_ = r.Close()
		outputCh <- buf.String()
	}()

	defer func() {
		os.Stdout = orig
	}()
	fn()
	_ = w.Close()
	return <-outputCh
}

// jsonResponse mirrors Response with raw data for per-test decoding.
type jsonResponse struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`
	Meta     *Meta           `json:"meta"`
}

func decodeResponse(t *testing.T, out string) jsonResponse {
	t.Helper()
	var resp jsonResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// cliState is a snapshot of the package-level flag variables.
type cliState struct {
	sitePath, siteName, sitePathFlag, configPath string
	cfg                                          *config.Config
	json                                         bool

	fixDryRun, fixAllowCollisions bool
	fixPasses                     []string
	fixWorkers                    int

	pruneDryRun, initForce bool

	resolveID, resolveFrom string
	resolveProvince        bool
}

func saveState() cliState {
	return cliState{
		sitePath: resolvedSitePath, siteName: siteName, sitePathFlag: sitePathFlag, configPath: configPath,
		cfg: cfg, json: jsonOutput,
		fixDryRun: fixDryRun, fixAllowCollisions: fixAllowCollisions, fixPasses: fixPasses, fixWorkers: fixWorkers,
		pruneDryRun: pruneDryRun, initForce: initForce,
		resolveID: resolveID, resolveFrom: resolveFrom, resolveProvince: resolveProvince,
	}
}

func (s cliState) restore() {
	resolvedSitePath, siteName, sitePathFlag, configPath = s.sitePath, s.siteName, s.sitePathFlag, s.configPath
	cfg, jsonOutput = s.cfg, s.json
	fixDryRun, fixAllowCollisions, fixPasses, fixWorkers = s.fixDryRun, s.fixAllowCollisions, s.fixPasses, s.fixWorkers
	pruneDryRun, initForce = s.pruneDryRun, s.initForce
	resolveID, resolveFrom, resolveProvince = s.resolveID, s.resolveFrom, s.resolveProvince
}

// useSite points the CLI globals at sitePath in JSON mode with every command
// flag at its default, and restores them when the test ends.
func useSite(t *testing.T, sitePath string) {
	t.Helper()
	t.Cleanup(saveState().restore)
	cliState{sitePath: sitePath, cfg: &config.Config{}, json: true}.restore()
}

func buildTestSite(t *testing.T) *testutil.TestSite {
	t.Helper()
	return testutil.NewTestSite(t).
		WithPage("estimation-par-ville", "2805", `<h1>Estimation par ville</h1>`).
		WithPage("prix-m2-a-namur", "2811",
			`<h1>Namur</h1><p>Namur est dans la province de Namur..</p>`+
				`<a href="../prix-m2-par-province/index.html">Provinces</a>`).
		WithPage("prix-m2-a-mons", "2801",
			`<h1>Mons</h1><a href="../index.html%3Fp=2805.html">Estimation immobilière à Namur</a>`+
				`<a href="../index.html%3Fp=9.html">Contact</a>`).
		WithPage("prix-m2-namur", "2757", `<h1>Province de Namur</h1>`).
		WithPage("prix-m2-par-province", "1516", `<h1>Provinces</h1>`).
		WithFile("index.html", testutil.PageHTML("", `<a href="prix-m2-a-namur.html">Namur</a>`)).
		WithFile("index.html%3Fp=2805.html", "old copy").
		Build()
}
