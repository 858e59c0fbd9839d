//go:build integration

package itest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"testing"
	"time"
)

const cliTimeout = 60 * time.Second

// baseEnv neutralizes any pipeline configuration leaking in from the
// host so each case starts from a clean slate.
var baseEnv = map[string]string{
	"CHANNEL_ID":           "",
	"TIMESTAMP_COMMENTERS": "",
	"KEYWORDS":             "",
	"EXCLUDE_KEYWORDS":     "",
	"UPLOAD_PRIVACY":       "",
	"UPLOAD_TIMES":         "",
	"UPLOAD_PLAYLIST_ID":   "",
	"YOUTUBE_API_KEY":      "",
	"CLIENT_SECRETS_FILE":  "",
	"OAUTH_TOKEN_FILE":     "",
	"NO_COLOR":             "1",
	"TERM":                 "dumb",
}

type robustCase struct {
	name         string
	args         []string
	env          map[string]string
	wantExitZero bool
	wantContains []string
}

type cliRunResult struct {
	exitCode int
	output   string
}

func TestCLI_ArgsValidation(t *testing.T) {
	cases := []robustCase{
		{
			name:         "unknown subcommand",
			args:         []string{"frobnicate"},
			wantContains: []string{`unknown command "frobnicate"`},
		},
		{
			name:         "unknown flag",
			args:         []string{"run", "--wat"},
			wantContains: []string{"unknown flag: --wat"},
		},
		{
			name:         "run takes no positional args",
			args:         []string{"run", "extra"},
			wantContains: []string{`unknown command "extra"`},
		},
		{
			name:         "max non int",
			args:         []string{"run", "--max", "nope"},
			wantContains: []string{`invalid argument "nope" for "--max"`},
		},
	}
	runRobustCases(t, cases)
}

func TestCLI_ConfigValidation(t *testing.T) {
	configured := map[string]string{
		"CHANNEL_ID":           "chan1",
		"TIMESTAMP_COMMENTERS": "daidai",
		"YOUTUBE_API_KEY":      "key",
	}

	cases := []robustCase{
		{
			name:         "missing channel id",
			args:         []string{"run"},
			wantContains: []string{"config: channel id is required"},
		},
		{
			name:         "missing commenters",
			args:         []string{"run"},
			env:          map[string]string{"CHANNEL_ID": "chan1"},
			wantContains: []string{"config: at least one timestamp commenter"},
		},
		{
			name: "missing api key",
			args: []string{"run"},
			env: map[string]string{
				"CHANNEL_ID":           "chan1",
				"TIMESTAMP_COMMENTERS": "daidai",
			},
			wantContains: []string{"config: youtube api key is required"},
		},
		{
			name:         "max zero",
			args:         []string{"run", "--max", "0"},
			env:          configured,
			wantContains: []string{"config: max videos must be > 0"},
		},
		{
			name: "bad privacy",
			args: []string{"run"},
			env: mergeMaps(configured, map[string]string{
				"UPLOAD_PRIVACY": "secret",
			}),
			wantContains: []string{`invalid privacy status "secret"`},
		},
	}
	runRobustCases(t, cases)
}

func TestCLI_LedgerOnFreshDataDir(t *testing.T) {
	tmp := t.TempDir()
	res := runCLI(t, []string{"ledger", "--data-dir", tmp}, nil)
	if res.exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\noutput:\n%s", res.exitCode, res.output)
	}
	if !strings.Contains(res.output, "no ledger yet") {
		t.Fatalf("expected empty-ledger notice, got:\n%s", res.output)
	}
}

func runRobustCases(t *testing.T, cases []robustCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, tc.args, tc.env)
			if tc.wantExitZero != (res.exitCode == 0) {
				t.Fatalf("exit code %d\noutput:\n%s", res.exitCode, res.output)
			}
			for _, want := range tc.wantContains {
				if !strings.Contains(res.output, want) {
					t.Fatalf("expected output to contain %q\noutput:\n%s", want, res.output)
				}
			}
		})
	}
}

func runCLI(t *testing.T, args []string, env map[string]string) cliRunResult {
	t.Helper()

	repoRoot, err := findRepoRoot()
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	cmdArgs := append([]string{"run", "."}, args...)
	cmd := exec.CommandContext(ctx, "go", cmdArgs...)
	cmd.Dir = repoRoot
	cmd.Env = mergeEnv(os.Environ(), baseEnv, env)

	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("command timed out after %s: go %s", cliTimeout, strings.Join(cmdArgs, " "))
	}

	res := cliRunResult{output: string(out)}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		return res
	}

	t.Fatalf("run command: %v\noutput:\n%s", err, string(out))
	return cliRunResult{}
}

func mergeEnv(base []string, overrides ...map[string]string) []string {
	env := make(map[string]string, len(base))
	for _, kv := range base {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		env[kv[:i]] = kv[i+1:]
	}

	for _, set := range overrides {
		for k, v := range set {
			env[k] = v
		}
	}

	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}

func mergeMaps(maps ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
