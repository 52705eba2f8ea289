// Command validate checks the integrity of a region table before it is
// shipped with the tool server. It verifies that every code classifies into a
// known level, that codes are unique, that every non-province code has its
// parent row, and that segments have the expected width.
//
// Usage:
//
//	go run ./cmd/validate -table data/base.csv
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/bmkg-mcp-server/internal/gazetteer"
)

// maxReported bounds the errors printed per phase.
const maxReported = 20

// segmentWidths are the digit counts of each code segment, province first.
var segmentWidths = []int{2, 2, 2, 4}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	path := flag.String("table", "data/base.csv", "path to the region table CSV")
	flag.Parse()

	if code := run(*path, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(path string, w io.Writer) int {
	fmt.Fprintln(w, "=== Region Table Integrity Validation ===")
	fmt.Fprintln(w)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(w, "FATAL: open region table: %v\n", err)
		return 1
	}
	defer f.Close()

	table, err := gazetteer.Parse(f)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}
	rows := table.Rows()

	phases := []*phase{
		validateNames(rows),
		validateLevels(rows),
		validateUniqueness(rows),
		validateSegments(rows),
		validateParents(table),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	counts := levelCounts(rows)
	fmt.Fprintf(w, "Rows: %d (%d provinsi, %d kabupaten/kota, %d kecamatan, %d kelurahan/desa, %d unknown)\n",
		len(rows), counts[gazetteer.LevelProvince], counts[gazetteer.LevelRegency],
		counts[gazetteer.LevelDistrict], counts[gazetteer.LevelVillage], counts[gazetteer.LevelUnknown])

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Fprintf(w, "  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func validateNames(rows []gazetteer.Region) *phase {
	p := &phase{name: "Non-empty names"}
	for _, r := range rows {
		if r.Name == "" {
			p.errorf("%s: empty name", r.Code)
		}
	}
	return p
}

func validateLevels(rows []gazetteer.Region) *phase {
	p := &phase{name: "Code levels"}
	for _, r := range rows {
		if gazetteer.Classify(r.Code) == gazetteer.LevelUnknown {
			p.errorf("%q (%s): unknown level", r.Code, r.Name)
		}
	}
	return p
}

func validateUniqueness(rows []gazetteer.Region) *phase {
	p := &phase{name: "Unique codes"}
	seen := make(map[string]string, len(rows))
	for _, r := range rows {
		if prev, ok := seen[r.Code]; ok {
			p.errorf("%s: duplicate (%q and %q)", r.Code, prev, r.Name)
			continue
		}
		seen[r.Code] = r.Name
	}
	return p
}

func validateSegments(rows []gazetteer.Region) *phase {
	p := &phase{name: "Segment format"}
	for _, r := range rows {
		if gazetteer.Classify(r.Code) == gazetteer.LevelUnknown {
			continue
		}
		for i, seg := range strings.Split(r.Code, ".") {
			if len(seg) != segmentWidths[i] || strings.Trim(seg, "0123456789") != "" {
				p.errorf("%s: segment %d is %q, want %d digits", r.Code, i+1, seg, segmentWidths[i])
				break
			}
		}
	}
	return p
}

func validateParents(table *gazetteer.Table) *phase {
	p := &phase{name: "Parent rows"}
	for _, r := range table.Rows() {
		level := gazetteer.Classify(r.Code)
		if level == gazetteer.LevelUnknown || level == gazetteer.LevelProvince {
			continue
		}
		parent := r.Code[:strings.LastIndex(r.Code, ".")]
		if _, ok := table.Name(parent); !ok {
			p.errorf("%s (%s): parent %s missing, hierarchy reads %q",
				r.Code, r.Name, parent, table.HierarchyString(r.Code))
		}
	}
	return p
}

func levelCounts(rows []gazetteer.Region) map[gazetteer.Level]int {
	counts := make(map[gazetteer.Level]int)
	for _, r := range rows {
		counts[gazetteer.Classify(r.Code)]++
	}
	return counts
}
