package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

func TestGenerateCompletionGolden(t *testing.T) {
	t.Parallel()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		var buf bytes.Buffer
		if err := GenerateCompletion(&buf, shell, []string{"gosper", "rational"}); err != nil {
			t.Fatalf("GenerateCompletion(%s): %v", shell, err)
		}
		g.Assert(t, "completion_"+shell, buf.Bytes())
	}
}

func TestGenerateCompletionAliasesAndErrors(t *testing.T) {
	t.Parallel()
	var ps, powershell bytes.Buffer
	if err := GenerateCompletion(&ps, "ps", []string{"gosper"}); err != nil {
		t.Fatal(err)
	}
	if err := GenerateCompletion(&powershell, "powershell", []string{"gosper"}); err != nil {
		t.Fatal(err)
	}
	if ps.String() != powershell.String() {
		t.Error("ps should be an alias for powershell")
	}
	if !strings.Contains(ps.String(), "@('gosper', 'all')") {
		t.Errorf("algorithm list missing from PowerShell script")
	}

	err := GenerateCompletion(&bytes.Buffer{}, "tcsh", nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported shell: tcsh") {
		t.Errorf("error = %v", err)
	}
}

func TestCompletionScriptsListFlags(t *testing.T) {
	t.Parallel()
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		var buf bytes.Buffer
		_ = GenerateCompletion(&buf, shell, nil)
		for _, flag := range []string{"expr", "precision", "theme", "max-bits"} {
			if !strings.Contains(buf.String(), flag) {
				t.Errorf("%s script does not mention %s", shell, flag)
			}
		}
	}
}
