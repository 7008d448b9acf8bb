package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/prefetch"
	"github.com/hupe1980/prefetch/signature"
	"github.com/hupe1980/prefetch/sink"
	"github.com/hupe1980/prefetch/sketch"
	"github.com/hupe1980/prefetch/testutil"
)

type fixture struct {
	dir   string
	query string
	db    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	rng := testutil.NewRNG(47)

	k31 := rng.ScaledSketch(31, 1000, 500)
	q := signature.New("NC_009665.1 Shewanella baltica OS185, complete genome", k31, rng.ScaledSketch(21, 1000, 200))
	q.Filename = "47.fa"

	related := signature.New("NC_011663.1 Shewanella baltica OS223", rng.Overlapping(k31, 300, 100))
	related.Filename = "63.fa"
	unrelated := signature.New("CP001071.1 Akkermansia muciniphila", rng.Overlapping(k31, 0, 400))
	unrelated.Filename = "2.fa"

	f := fixture{
		dir:   dir,
		query: filepath.Join(dir, "47.fa.sig"),
		db:    filepath.Join(dir, "db"),
	}
	require.NoError(t, os.Mkdir(f.db, 0o755))
	require.NoError(t, os.WriteFile(f.query, testutil.SignatureJSON(t, q), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.db, "63.fa.sig"), testutil.SignatureJSON(t, related), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.db, "2.fa.sig"), testutil.SignatureJSON(t, unrelated), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.db, "README.txt"), []byte("not a signature"), 0o644))
	return f
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func TestRun_CSVToStdout(t *testing.T) {
	f := newFixture(t)

	stdout, stderr, err := execute(t, f.query, f.query, f.db, "-k", "31", "-o", "-")
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewBufferString(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, sink.Columns, rows[0])

	assert.Contains(t, stderr, "selecting specified query k=31")
	assert.Contains(t, stderr, "loaded query: NC_009665.1 Shewanella baltica... (k=31, DNA)")
	assert.Contains(t, stderr, "total of 2 matching signatures.")
	assert.Contains(t, stderr, "of 500 distinct query hashes, 500 were found in matches above threshold.")
	assert.NotContains(t, stderr, "no output(s) specified")
}

func TestRun_SaveOutputs(t *testing.T) {
	f := newFixture(t)
	matches := filepath.Join(f.dir, "matches.sig.gz")
	matched := filepath.Join(f.dir, "matched.sig")
	unmatched := filepath.Join(f.dir, "unmatched.sig.zst")
	list := filepath.Join(f.dir, "dbs.txt")
	require.NoError(t, os.WriteFile(list, []byte(f.db+"\n"), 0o644))

	_, _, err := execute(t, f.query,
		"--db-from-file", list,
		"--ksize", "31",
		"--save-matches", matches,
		"--save-matching-hashes", matched,
		"--save-unmatched-hashes", unmatched,
	)
	require.NoError(t, err)

	load := func(path string) []*signature.Signature {
		file, err := os.Open(path)
		require.NoError(t, err)
		defer file.Close()
		sigs, err := signature.Load(file, nil)
		require.NoError(t, err)
		return sigs
	}

	saved := load(matches)
	require.Len(t, saved, 1)
	assert.Equal(t, "63.fa", saved[0].Filename)

	m := load(matched)
	u := load(unmatched)
	require.Len(t, m, 1)
	require.Len(t, u, 1)
	assert.Equal(t, 300, m[0].Sketches[0].Size())
	assert.Equal(t, 200, u[0].Sketches[0].Size())
}

func TestRun_Errors(t *testing.T) {
	f := newFixture(t)

	t.Run("NoDatabases", func(t *testing.T) {
		_, stderr, err := execute(t, f.query, "-k", "31")
		require.Error(t, err)
		assert.Contains(t, stderr, "ERROR: no databases or signatures to search!?")
	})

	t.Run("Ambiguous", func(t *testing.T) {
		_, stderr, err := execute(t, f.query, f.db)
		require.Error(t, err)
		assert.Contains(t, stderr, "available k sizes: 21, 31")
	})

	t.Run("NumOnlyDatabase", func(t *testing.T) {
		numDB := filepath.Join(f.dir, "num")
		require.NoError(t, os.Mkdir(numDB, 0o755))
		num := sketch.NewNum(31, sketch.DNA, 500)
		num.AddMany(testutil.NewRNG(63).Hashes(500, sketch.MaxHash))
		sig := signature.New("NC_011663.1 Shewanella baltica OS223", num)
		require.NoError(t, os.WriteFile(filepath.Join(numDB, "63.fa.sig"), testutil.SignatureJSON(t, sig), 0o644))

		outs := []string{
			filepath.Join(f.dir, "out.csv"),
			filepath.Join(f.dir, "matches.sig"),
			filepath.Join(f.dir, "matched.sig"),
			filepath.Join(f.dir, "unmatched.sig.gz"),
		}
		_, stderr, err := execute(t, f.query, numDB, "-k", "31",
			"-o", outs[0],
			"--save-matches", outs[1],
			"--save-matching-hashes", outs[2],
			"--save-unmatched-hashes", outs[3],
		)
		require.ErrorIs(t, err, prefetch.ErrNoSearchableSignatures)
		assert.Contains(t, stderr, "ERROR in prefetch_databases: no signatures to search")

		for _, out := range outs {
			assert.NoFileExists(t, out)
		}
		entries, err := os.ReadDir(f.dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp-", "temporary output left behind")
		}
	})

	t.Run("BadScaled", func(t *testing.T) {
		_, _, err := execute(t, f.query, f.db, "-k", "31", "--scaled", "ten")
		require.Error(t, err)
	})

	t.Run("MissingArgs", func(t *testing.T) {
		_, _, err := execute(t)
		require.Error(t, err)
	})
}

func TestConfig_Scaled(t *testing.T) {
	for in, want := range map[string]uint64{"": 0, "10000": 10000, "1e5": 100000} {
		got, err := (&Config{Scaled: in}).scaled()
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := (&Config{Scaled: "1.5"}).scaled()
	assert.Error(t, err)
}

func TestConfig_Env(t *testing.T) {
	t.Setenv("PREFETCH_THRESHOLD_BP", "1234")
	t.Setenv("PREFETCH_LOG_FORMAT", "json")

	cmd := newRootCmd()
	cfg, err := loadConfig(cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), cfg.ThresholdBP)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 4, cfg.Prefetch)
}
