package main

import (
	"os"
	"strings"

	"memo-cli/internal/cli"
)

func isMemoID(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "memo-") {
		return false
	}
	// Permissive: users paste ids from other tools.
	return len(s) > len("memo-")
}

// rewriteDirectMemoLookupArgs makes `memo <memo-id>` behave like
// `memo show <memo-id>`. Cobra treats the first positional token as a
// subcommand, so argv is rewritten before parsing.
//
// Persistent flags may come first (`memo --dir ... <memo-id>`), so this looks
// for the first positional token rather than argv[1].
func rewriteDirectMemoLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":        true,
		"--backend":    true,
		"--dsn":        true,
		"--key":        true,
		"--export-dir": true,
		"--log-level":  true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	insertShow := func(at int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:at]...)
		out = append(out, "show")
		out = append(out, argv[at:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isMemoID(argv[i+1]) {
				return insertShow(i + 1)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			switch {
			case strings.Contains(a, "="), boolFlags[a]:
			case valueFlags[a]:
				i++
			}
			continue
		}

		if isMemoID(a) {
			return insertShow(i)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectMemoLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
