package testutils

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/juju/errors"
)

// GetTestCaseDirs scans the dir recursively and returns relative paths
// to all the dirs which contain the file testDescrFname, sorted. For example:
//
// []string{"info_only", "filters/services", "filters/database"}
func GetTestCaseDirs(testCasesDir string, testDescrFname string) ([]string, error) {
	var result []string

	err := filepath.Walk(testCasesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Annotate(err, "failed to walk path: "+path)
		}

		if !info.IsDir() {
			return nil
		}

		if _, err := os.Stat(filepath.Join(path, testDescrFname)); err != nil {
			return nil
		}

		relPath, err := filepath.Rel(testCasesDir, path)
		if err != nil {
			return errors.Annotate(err, "failed to get relative path for: "+path)
		}

		result = append(result, relPath)
		return nil
	})
	if err != nil {
		return nil, errors.Annotate(err, "failed to scan directories")
	}

	if len(result) == 0 {
		return nil, errors.Errorf("no %s found under %s", testDescrFname, testCasesDir)
	}

	sort.Strings(result)

	return result, nil
}
