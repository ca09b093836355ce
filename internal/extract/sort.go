package extract

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ListInputFiles returns the label PDFs in dir, skipping files whose name
// (without extension) ends in outputSuffix: those are our own annotated
// output and must never be processed again.
func ListInputFiles(dir, outputSuffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsInputFile(entry.Name(), outputSuffix) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return sortPDFsByNumber(paths), nil
}

// IsInputFile reports whether name is a PDF that has not been annotated yet.
func IsInputFile(name, outputSuffix string) bool {
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, ".pdf") {
		return false
	}
	stem := strings.TrimSuffix(name, ext)
	return outputSuffix == "" || !strings.HasSuffix(stem, outputSuffix)
}

var numericSuffix = regexp.MustCompile(`-(\d+)\.pdf$`)

// sortPDFsByNumber sorts PDF paths by their numeric suffix.
// e.g., ["labels-2.pdf", "labels-1.pdf", "labels-10.pdf"] -> ["labels-1.pdf", "labels-2.pdf", "labels-10.pdf"]
func sortPDFsByNumber(paths []string) []string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)

	sort.SliceStable(sorted, func(i, j int) bool {
		mi := numericSuffix.FindStringSubmatch(strings.ToLower(sorted[i]))
		mj := numericSuffix.FindStringSubmatch(strings.ToLower(sorted[j]))

		// If both have numbers, sort numerically
		if len(mi) > 1 && len(mj) > 1 {
			ni, _ := strconv.Atoi(mi[1])
			nj, _ := strconv.Atoi(mj[1])
			if ni != nj {
				return ni < nj
			}
		}

		return sorted[i] < sorted[j]
	})

	return sorted
}
