package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = "../../panel/testdata/tolerance.csv"

// run executes the lda command tree with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestReshapeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	longPath := filepath.Join(dir, "long.csv")

	_, _, err := run(t, "reshape", tolerance, "--to", "long", "-o", longPath)
	require.NoError(t, err)

	data, err := os.ReadFile(longPath)
	require.NoError(t, err)
	got := lines(string(data))
	require.Len(t, got, 81)
	assert.Equal(t, "id,time,male,exposure,tolerance", got[0])
	assert.Equal(t, "9,0,0,1.54,2.23", got[1])
	assert.Equal(t, "9,4,0,1.54,2.66", got[5])

	stdout, _, err := run(t, "reshape", longPath, "--to", "wide")
	require.NoError(t, err)
	wide := lines(stdout)
	require.Len(t, wide, 17)
	assert.Equal(t, "id,male,exposure,tol11,tol12,tol13,tol14,tol15", wide[0])
	assert.Equal(t, "9,0,1.54,2.23,1.79,1.9,2.12,2.66", wide[1])
}

func TestReshapeFlagsOverrideEnv(t *testing.T) {
	t.Setenv("GOLDA_SCHEMA_TIME_COLUMN", "wave")

	stdout, _, err := run(t, "reshape", tolerance, "--time-base", "0", "--time-column", "age", "--fixed", "male")
	require.NoError(t, err)
	got := lines(stdout)
	assert.Equal(t, "id,age,male,tolerance", got[0])
	assert.Equal(t, "9,11,0,2.23", got[1])
}

func TestReshapeErrors(t *testing.T) {
	_, _, err := run(t, "reshape", tolerance, "--to", "diagonal")
	require.ErrorContains(t, err, "unknown layout")

	_, _, err = run(t, "reshape", "--to", "long")
	require.ErrorContains(t, err, "no data source")

	_, _, err = run(t, "reshape", filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorContains(t, err, "load")
}

func TestReshapeSourceFromEnv(t *testing.T) {
	t.Setenv("GOLDA_SOURCE", tolerance)

	stdout, _, err := run(t, "reshape")
	require.NoError(t, err)
	assert.Len(t, lines(stdout), 81)
}

func TestDescribe(t *testing.T) {
	stdout, _, err := run(t, "describe", tolerance, "--columns", "tol11,tol15")
	require.NoError(t, err)

	got := lines(stdout)
	require.GreaterOrEqual(t, len(got), 6)
	assert.True(t, strings.HasPrefix(got[0], "column"))
	assert.True(t, strings.HasPrefix(got[1], "tol11"))
	assert.True(t, strings.HasPrefix(got[2], "tol15"))
	assert.Contains(t, stdout, "1.00")
}

func TestDescribeLong(t *testing.T) {
	stdout, _, err := run(t, "describe", tolerance, "--long", "--columns", "tolerance", "--no-correlations")
	require.NoError(t, err)

	got := lines(stdout)
	require.Len(t, got, 2)
	fields := strings.Fields(got[1])
	assert.Equal(t, "tolerance", fields[0])
	assert.Equal(t, "80", fields[1])
}

func TestFitPerEntityOLS(t *testing.T) {
	stdout, stderr, err := run(t, "fit", tolerance, "--workers", "4", "--stat", "sigma2,r2,aic")
	require.NoError(t, err)

	got := lines(stdout)
	require.Len(t, got, 17)
	assert.Equal(t, "id,n,intercept_est,intercept_sd,time_est,time_sd,sigma2,r2,aic", got[0])
	assert.True(t, strings.HasPrefix(got[1], "9,5,"))
	assert.True(t, strings.HasPrefix(got[16], "1653,5,"))
	assert.Contains(t, stderr, "per-entity fits complete")
}

func TestFitBayesWithPooled(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bayes.csv")
	stdout, stderr, err := run(t, "fit", tolerance,
		"--method", "bayes", "--draws", "500", "--seed", "7",
		"--pooled", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, lines(string(data)), 17)

	assert.Contains(t, stdout, "Bayesian linear regression")
	assert.Contains(t, stdout, "posterior draws: 500")
	assert.NotContains(t, stderr, "Bayesian linear regression")
}

func TestFitPooledInteraction(t *testing.T) {
	stdout, _, err := run(t, "fit", tolerance,
		"--per-entity=false", "--pooled",
		"--center", "exposure",
		"--predictor", "time,exposure_c",
		"--interaction", "time:exposure_c")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Ordinary least squares")
	assert.Contains(t, stdout, "time:exposure_c")
	assert.Contains(t, stdout, "observations: 80")
}

func TestFitErrors(t *testing.T) {
	_, _, err := run(t, "fit", tolerance, "--per-entity=false")
	require.ErrorContains(t, err, "nothing to fit")

	_, _, err = run(t, "fit", tolerance, "--method", "mcmc")
	require.ErrorContains(t, err, "unknown method")

	_, _, err = run(t, "fit", tolerance, "--interaction", "time")
	require.ErrorContains(t, err, "want a:b")

	_, _, err = run(t, "fit", tolerance, "--method", "bayes", "--draws", "0")
	require.ErrorContains(t, err, "draws must be positive")

	_, _, err = run(t, "fit", tolerance, "--stat", "kurtosis")
	require.Error(t, err)

	_, _, err = run(t, "fit", tolerance, "--center", "height")
	require.ErrorContains(t, err, "center")
}

func TestFitLongInputOrderedByTime(t *testing.T) {
	dir := t.TempDir()
	ordered := filepath.Join(dir, "ordered.csv")
	_, _, err := run(t, "reshape", tolerance, "--to", "long", "-o", ordered)
	require.NoError(t, err)

	data, err := os.ReadFile(ordered)
	require.NoError(t, err)
	rows := lines(string(data))
	shuffled := []string{rows[0]}
	for i := len(rows) - 1; i > 0; i-- {
		shuffled = append(shuffled, rows[i])
	}
	reversed := filepath.Join(dir, "reversed.csv")
	require.NoError(t, os.WriteFile(reversed, []byte(strings.Join(shuffled, "\n")+"\n"), 0o644))

	want, _, err := run(t, "fit", ordered, "--long", "--stat", "dw,acf1")
	require.NoError(t, err)
	got, _, err := run(t, "fit", reversed, "--long", "--stat", "dw,acf1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
