package util

import (
	"bytes"
	"encoding/gob"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mirlib/noteseq/constants"
	"golang.org/x/exp/constraints"
)

// Every component compares event times through these helpers so boundary
// behavior stays consistent across the whole engine.

// FloatEqual reports whether a and b are approximately equal under the given
// tolerances, or the package defaults when none are passed.
func FloatEqual(a, b float64, tol ...float64) bool {
	relTol, absTol := tolerances(tol)
	return math.Abs(a-b) <= math.Max(relTol*math.Max(math.Abs(a), math.Abs(b)), absTol)
}

// FloatLess reports whether a < b outside tolerance.
func FloatLess(a, b float64, tol ...float64) bool {
	return !FloatEqual(a, b, tol...) && a < b
}

// FloatGreater reports whether a > b outside tolerance.
func FloatGreater(a, b float64, tol ...float64) bool {
	return !FloatEqual(a, b, tol...) && a > b
}

// FloatLessOrEqual reports whether a <= b within tolerance.
func FloatLessOrEqual(a, b float64, tol ...float64) bool {
	return FloatEqual(a, b, tol...) || a < b
}

// FloatGreaterOrEqual reports whether a >= b within tolerance.
func FloatGreaterOrEqual(a, b float64, tol ...float64) bool {
	return FloatEqual(a, b, tol...) || a > b
}

func tolerances(tol []float64) (relTol, absTol float64) {
	relTol = constants.FloatRelativeTolerance
	absTol = constants.FloatAbsoluteTolerance
	if len(tol) > 0 {
		relTol = tol[0]
	}
	if len(tol) > 1 {
		absTol = tol[1]
	}
	return relTol, absTol
}

// GetKeys returns the keys of m in unspecified order.
func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// GetSortedKeys returns the keys of m in ascending order.
func GetSortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

// GatherAllMidiPaths walks path collecting .mid/.midi files, up to maxNum
// when maxNum > 0.
func GatherAllMidiPaths(path string, maxNum int) []string {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if strings.HasSuffix(s, ".mid") || strings.HasSuffix(s, ".midi") {
				if maxNum == 0 || len(res) < maxNum {
					res = append(res, s)
				}
			}
		}
		return nil
	}
	filepath.WalkDir(path, walk)
	return res
}

// CreateBinary gob-encodes data into filename.
func CreateBinary(filename string, data any) error {
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(data); err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0o666)
}

// ReadBinary gob-decodes a value of type A from path.
func ReadBinary[A any](path string) (A, error) {
	var data A
	f, err := os.Open(path)
	if err != nil {
		return data, err
	}
	defer f.Close()

	err = gob.NewDecoder(f).Decode(&data)
	return data, err
}
