package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/agbru/cfcalc/internal/ui"
)

// setCustomUsage installs a colored usage function on fs.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		// NO_COLOR applies before the theme is initialized.
		t := ui.GetCurrentTheme()
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			t = ui.NoColorTheme
		}

		out := fs.Output()

		fmt.Fprintf(out, "\n%sContinued Fraction Calculator%s\n", t.Bold, t.Reset)
		fmt.Fprintf(out, "Exact rational arithmetic on continued fractions (Gosper's algorithm).\n\n")
		fmt.Fprintf(out, "%sUsage:%s\n  %s [flags] [expression]\n\n", t.Warning, t.Reset, fs.Name())
		fmt.Fprintf(out, "%sExamples:%s\n  %s -expr \"1/2 + 1/3\"\n  %s -x \"[3; 7, 16]\" -op div -y 2 -precision 8\n\n", t.Warning, t.Reset, fs.Name(), fs.Name())
		fmt.Fprintf(out, "%sFlags:%s\n", t.Warning, t.Reset)

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			flagSig := fmt.Sprintf("-%s", f.Name)
			if len(name) > 0 {
				flagSig += " " + name
			}

			fmt.Fprintf(out, "  %s%-25s%s %s", t.Primary, flagSig, t.Reset, usage)

			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " %s(default %s)%s", t.Secondary, f.DefValue, t.Reset)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintln(out)
	}
}
