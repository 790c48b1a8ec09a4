// schemalint validates tool manifest files and reports every contract
// violation it finds. Exit code 1 when any manifest is invalid.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/datapivot/schemabridge/internal/manifest"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <manifest.yaml|dir> [...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, arg := range flag.Args() {
		for _, issue := range lint(arg) {
			fmt.Fprintln(os.Stderr, issue)
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
	fmt.Println("all manifests valid")
}

// lint validates one file or every manifest in a directory, returning
// printable issues.
func lint(path string) []string {
	info, err := os.Stat(path)
	if err != nil {
		return []string{fmt.Sprintf("%s: %v", path, err)}
	}

	var manifests []*manifest.Manifest
	if info.IsDir() {
		manifests, err = manifest.LoadDir(path)
	} else {
		var m *manifest.Manifest
		m, err = manifest.Load(path)
		if m != nil {
			manifests = []*manifest.Manifest{m}
		}
	}
	if err != nil {
		return []string{fmt.Sprintf("%s: %v", path, err)}
	}

	var issues []string
	for _, m := range manifests {
		for _, issue := range manifest.Validate(m) {
			issues = append(issues, fmt.Sprintf("%s: %s: %s", path, m.Identity.Name, issue))
		}
	}
	return issues
}
