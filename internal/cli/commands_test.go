package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estimation-maison/sitefix/internal/batch"
	"github.com/estimation-maison/sitefix/internal/config"
	"github.com/estimation-maison/sitefix/internal/site"
	"github.com/estimation-maison/sitefix/internal/testutil"
)

type fixJSON struct {
	DryRun   bool `json:"dry_run"`
	Scanned  int  `json:"scanned"`
	Changed  int  `json:"changed"`
	Modified []struct {
		Path   string   `json:"path"`
		Passes []string `json:"passes"`
	} `json:"modified"`
}

func runFix(t *testing.T) (jsonResponse, fixJSON) {
	t.Helper()
	out := captureStdout(t, func() {
		require.NoError(t, fixCmd.RunE(fixCmd, nil))
	})
	resp := decodeResponse(t, out)
	var data fixJSON
	if resp.OK {
		require.NoError(t, json.Unmarshal(resp.Data, &data))
	}
	return resp, data
}

func TestFixCommandRewritesSite(t *testing.T) {
	site := buildTestSite(t)
	useSite(t, site.Path)

	resp, data := runFix(t)
	require.True(t, resp.OK)
	assert.Equal(t, 7, data.Scanned)
	assert.Equal(t, 3, data.Changed)
	require.Len(t, data.Modified, 3)
	assert.Equal(t, "index.html", data.Modified[0].Path)
	assert.Equal(t, []string{"flat-pages"}, data.Modified[0].Passes)

	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, "LEGACY_LINKS", resp.Warnings[0].Code)
	assert.Equal(t, "prix-m2-a-mons/index.html", resp.Warnings[0].File)

	site.AssertFileContains("index.html", `<a href="prix-m2-a-namur/index.html">Namur</a>`)
	site.AssertFileContains("prix-m2-a-mons/index.html",
		`<a href="../estimation-par-ville/index.html">Estimation immobilière à Namur</a>`)
	site.AssertFileContains("prix-m2-a-mons/index.html", `<a href="../estimation-par-ville/index.html">Contact</a>`)
	site.AssertFileContains("prix-m2-a-namur/index.html", `province de Namur.</p>`)
	site.AssertFileContains("prix-m2-a-namur/index.html", `<a href="../prix-m2-namur/index.html">Provinces</a>`)

	resp, data = runFix(t)
	require.True(t, resp.OK)
	assert.Zero(t, data.Changed)
	assert.Empty(t, resp.Warnings)
}

func TestFixCommandReportsSkippedFolders(t *testing.T) {
	site := buildTestSite(t)
	site.WriteFile("brouillon/notes.txt", "draft")
	useSite(t, site.Path)

	resp, data := runFix(t)
	require.True(t, resp.OK)
	assert.Equal(t, 3, data.Changed)
	require.Len(t, resp.Warnings, 2)
	assert.Equal(t, WarnSkippedFolder, resp.Warnings[0].Code)
	assert.Equal(t, "brouillon", resp.Warnings[0].File)
	assert.Equal(t, "LEGACY_LINKS", resp.Warnings[1].Code)

	jsonOutput = false
	out := captureStdout(t, func() {
		require.NoError(t, fixCmd.RunE(fixCmd, nil))
	})
	assert.Contains(t, out, "1 folder skipped")
	assert.Contains(t, out, "brouillon")
}

func TestFixCommandDryRunText(t *testing.T) {
	site := buildTestSite(t)
	useSite(t, site.Path)
	jsonOutput = false
	fixDryRun = true
	before := site.ReadFile("prix-m2-a-mons/index.html")

	out := captureStdout(t, func() {
		require.NoError(t, fixCmd.RunE(fixCmd, nil))
	})

	assert.Contains(t, out, "would update")
	assert.Contains(t, out, "prix-m2-a-mons/index.html")
	assert.Contains(t, out, "Dry run: 3 of 7 files would change")
	assert.Equal(t, before, site.ReadFile("prix-m2-a-mons/index.html"))
}

func TestFixCommandRefusesCollisions(t *testing.T) {
	site := buildTestSite(t)
	site.WriteFile("prix-m2-a-mons-bis/index.html",
		testutil.PageHTML("<link rel='shortlink' href='https://estimation-maison.be/?p=2801' />", "<h1>Mons bis</h1>"))
	useSite(t, site.Path)
	before := site.ReadFile("prix-m2-a-mons/index.html")

	resp, _ := runFix(t)
	require.False(t, resp.OK)
	assert.Equal(t, ErrInventoryCollisions, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "2801")
	assert.Equal(t, before, site.ReadFile("prix-m2-a-mons/index.html"))

	fixAllowCollisions = true
	resp, data := runFix(t)
	require.True(t, resp.OK)
	assert.Equal(t, 3, data.Changed)
}

func TestFixCommandUnknownPass(t *testing.T) {
	site := buildTestSite(t)
	useSite(t, site.Path)
	fixPasses = []string{"legacy-links", "nope"}

	resp, _ := runFix(t)
	require.False(t, resp.OK)
	assert.Equal(t, ErrUnknownPass, resp.Error.Code)
}

func TestFixCommandSinglePass(t *testing.T) {
	site := buildTestSite(t)
	useSite(t, site.Path)
	fixPasses = []string{"double-dots"}

	resp, data := runFix(t)
	require.True(t, resp.OK)
	assert.Equal(t, 1, data.Changed)
	site.AssertFileContains("prix-m2-a-namur/index.html", `province de Namur.</p>`)
	site.AssertFileContains("prix-m2-a-namur/index.html", `href="../prix-m2-par-province/index.html"`)
}

func TestInventoryCommandJSON(t *testing.T) {
	site := buildTestSite(t)
	useSite(t, site.Path)

	out := captureStdout(t, func() {
		require.NoError(t, inventoryCmd.RunE(inventoryCmd, nil))
	})
	resp := decodeResponse(t, out)
	require.True(t, resp.OK)
	assert.Equal(t, 5, resp.Meta.Count)

	var data struct {
		Pages []struct {
			Folder   string `json:"Folder"`
			Slug     string `json:"Slug"`
			LegacyID string `json:"LegacyID"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Pages, 5)
	assert.Equal(t, "estimation-par-ville", data.Pages[0].Folder)
	assert.Equal(t, "mons", data.Pages[1].Slug)
	assert.Equal(t, "2801", data.Pages[1].LegacyID)
}

func TestResolveCommand(t *testing.T) {
	site := buildTestSite(t)

	type resolveJSON struct {
		Result struct {
			Path   string `json:"path"`
			Method string `json:"method"`
		} `json:"result"`
		Href string `json:"href"`
	}
	run := func(t *testing.T, arg string) resolveJSON {
		t.Helper()
		out := captureStdout(t, func() {
			require.NoError(t, resolveCmd.RunE(resolveCmd, []string{arg}))
		})
		resp := decodeResponse(t, out)
		require.True(t, resp.OK, out)
		var data resolveJSON
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		return data
	}

	t.Run("legacy id", func(t *testing.T) {
		useSite(t, site.Path)
		resolveFrom = "prix-m2-a-mons/index.html"
		data := run(t, "2805")
		assert.Equal(t, "legacy_id", data.Result.Method)
		assert.Equal(t, "../estimation-par-ville/index.html", data.Href)
	})

	t.Run("anchor text", func(t *testing.T) {
		useSite(t, site.Path)
		data := run(t, "Estimation immobilière à Namur")
		assert.Equal(t, "exact", data.Result.Method)
		assert.Equal(t, "prix-m2-a-namur/index.html", data.Href)
	})

	t.Run("unresolved falls back to hub", func(t *testing.T) {
		useSite(t, site.Path)
		data := run(t, "Contact")
		assert.Equal(t, "unresolved", data.Result.Method)
		assert.Equal(t, "estimation-par-ville/index.html", data.Href)
	})

	t.Run("province", func(t *testing.T) {
		useSite(t, site.Path)
		resolveProvince = true
		out := captureStdout(t, func() {
			require.NoError(t, resolveCmd.RunE(resolveCmd, []string{"Flandre-Occidentale"}))
		})
		assert.Contains(t, out, `"href": "prix-m2-flandre-occidentale/index.html"`)
	})
}

func TestCheckCommandJSON(t *testing.T) {
	site := buildTestSite(t)
	useSite(t, site.Path)
	before := site.ReadFile("prix-m2-a-mons/index.html")

	out := captureStdout(t, func() {
		require.NoError(t, checkCmd.RunE(checkCmd, nil))
	})
	resp := decodeResponse(t, out)
	require.True(t, resp.OK)

	var data struct {
		Problems    int      `json:"problems"`
		Leftovers   []string `json:"leftovers"`
		BrokenLinks []struct {
			File   string `json:"file"`
			Target string `json:"target"`
		} `json:"broken_links"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))

	// 3 pending rewrites + 2 broken links
	assert.Equal(t, 5, data.Problems)
	assert.Equal(t, []string{"index.html%3Fp=2805.html"}, data.Leftovers)
	require.Len(t, data.BrokenLinks, 2)
	assert.Equal(t, "prix-m2-a-namur.html", data.BrokenLinks[0].Target)
	assert.Equal(t, "index.html%3Fp=9.html", data.BrokenLinks[1].Target)
	assert.Equal(t, before, site.ReadFile("prix-m2-a-mons/index.html"))
}

func TestCheckCommandTextFailsOnProblems(t *testing.T) {
	site := buildTestSite(t)
	useSite(t, site.Path)
	jsonOutput = false

	var err error
	out := captureStdout(t, func() {
		err = checkCmd.RunE(checkCmd, nil)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5 problems")
	assert.NotEmpty(t, strings.TrimSpace(out))
}

func TestCheckMarkdownReport(t *testing.T) {
	ts := buildTestSite(t)
	sc, _, err := loadSite(ts.Path)
	require.NoError(t, err)

	result := &checkResult{
		Root:  ts.Path,
		Pages: len(sc.Inventory.Pages),
		Files: 7,
		site:  sc,
		report: &batch.Report{
			Changed: 1,
			Files:   []batch.FileResult{{Path: "index.html", Status: batch.StatusModified, Passes: []string{"flat-pages"}}},
		},
		Broken:    []site.BrokenLink{{File: "index.html", Href: "prix-m2-a-namur.html", Target: "prix-m2-a-namur.html"}},
		Leftovers: []string{"index.html%3Fp=2805.html"},
	}

	md := result.markdown()
	assert.Contains(t, md, "# Site check")
	assert.Contains(t, md, "5 pages, 7 HTML files")
	assert.Contains(t, md, "## Pending rewrites (1)\n\n- `index.html`: flat-pages")
	assert.Contains(t, md, "## Broken links (1)\n\n- `index.html` links to missing `prix-m2-a-namur.html`")
	assert.Contains(t, md, "- `index.html%3Fp=2805.html`")
	assert.NotContains(t, md, "Collisions")
	assert.Equal(t, 2, result.problems())
}

func TestPruneCommand(t *testing.T) {
	site := buildTestSite(t)
	useSite(t, site.Path)

	pruneDryRun = true
	out := captureStdout(t, func() {
		require.NoError(t, pruneCmd.RunE(pruneCmd, nil))
	})
	resp := decodeResponse(t, out)
	require.True(t, resp.OK)
	assert.Equal(t, 1, resp.Meta.Count)
	site.AssertFileExists("index.html%3Fp=2805.html")

	pruneDryRun = false
	captureStdout(t, func() {
		require.NoError(t, pruneCmd.RunE(pruneCmd, nil))
	})
	site.AssertFileNotExists("index.html%3Fp=2805.html")
	site.AssertFileExists("index.html")
}

func TestPruneCommandWritesAudit(t *testing.T) {
	site := buildTestSite(t)
	useSite(t, site.Path)
	cfg = &config.Config{Audit: true}

	captureStdout(t, func() {
		require.NoError(t, pruneCmd.RunE(pruneCmd, nil))
	})
	site.AssertFileContains(".sitefix/audit.log", `"op":"prune"`)
	site.AssertFileContains(".sitefix/audit.log", `index.html%3Fp=2805.html`)
}

func TestPassesCommandJSON(t *testing.T) {
	useSite(t, t.TempDir())

	out := captureStdout(t, func() {
		require.NoError(t, passesCmd.RunE(passesCmd, nil))
	})
	resp := decodeResponse(t, out)
	require.True(t, resp.OK)

	var infos []passInfo
	require.NoError(t, json.Unmarshal(resp.Data, &infos))
	require.Len(t, infos, 7)
	assert.Equal(t, "wp-cleanup", infos[0].Name)
	assert.Equal(t, "double-dots", infos[6].Name)
	for _, p := range infos {
		assert.NotEmpty(t, p.Description, p.Name)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	useSite(t, dir)

	out := captureStdout(t, func() {
		require.NoError(t, initCmd.RunE(initCmd, []string{dir}))
	})
	require.True(t, decodeResponse(t, out).OK)

	data, err := os.ReadFile(filepath.Join(dir, config.SiteConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "folder_prefix: prix-m2-a-")

	loaded, err := config.LoadSiteConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSiteConfig(), loaded)

	out = captureStdout(t, func() {
		require.NoError(t, initCmd.RunE(initCmd, []string{dir}))
	})
	resp := decodeResponse(t, out)
	require.False(t, resp.OK)
	assert.Equal(t, ErrFileExists, resp.Error.Code)

	initForce = true
	out = captureStdout(t, func() {
		require.NoError(t, initCmd.RunE(initCmd, []string{dir}))
	})
	assert.True(t, decodeResponse(t, out).OK)
}

func TestResolveSitePathPrecedence(t *testing.T) {
	useSite(t, "")
	cfg = &config.Config{
		DefaultSite: "main",
		Sites:       map[string]string{"main": "/srv/main", "staging": "/srv/staging"},
	}

	path, err := resolveSitePath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/main", path)

	siteName = "staging"
	path, err = resolveSitePath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/staging", path)

	sitePathFlag = "/explicit"
	path, err = resolveSitePath()
	require.NoError(t, err)
	assert.Equal(t, "/explicit", path)

	sitePathFlag, siteName = "", "missing"
	_, err = resolveSitePath()
	assert.Error(t, err)

	siteName = ""
	cfg = &config.Config{}
	path, err = resolveSitePath()
	require.NoError(t, err)
	wd, _ := os.Getwd()
	assert.Equal(t, wd, path)
}

func TestEveryFlagIsDocumented(t *testing.T) {
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if strings.TrimSpace(f.Usage) == "" {
				t.Errorf("%s: flag --%s has no usage text", cmd.CommandPath(), f.Name)
			}
		})
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)

	for _, name := range []string{"fix", "inventory", "resolve", "check", "prune", "passes", "init", "version"} {
		found, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
}
