package api

import (
	"os"
	"regexp"
	"sort"
	"strings"
)

var fileYearPattern = regexp.MustCompile(`\d{4}`)

// listCSVFiles returns the .csv file names in dir sorted by the year
// embedded in the name, newest first.
func listCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		files = append(files, entry.Name())
	}

	sort.Slice(files, func(i, j int) bool {
		yearI := fileYearPattern.FindString(files[i])
		yearJ := fileYearPattern.FindString(files[j])
		if yearI != yearJ {
			return yearI > yearJ
		}
		return files[i] < files[j]
	})

	return files, nil
}
