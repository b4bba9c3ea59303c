package builder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"omibyte.io/preservenone/compiler"
)

type Env map[string]string

func Environment() Env {
	// Get the user cache directory
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Attempt to use the tmp dir
		cacheDir = os.TempDir()
	}

	// Return the environment
	return map[string]string{
		"PNONE_WRITE_LIST": getenv("PNONE_WRITE_LIST", compiler.Inactive),
		"PNONE_LOAD_LIST":  getenv("PNONE_LOAD_LIST", compiler.Inactive),
		"PNONE_INFECT":     getenv("PNONE_INFECT", "false"),
		"PNONE_CONFIG":     getenv("PNONE_CONFIG", ""),
		"PNONE_TARGET":     getenv("PNONE_TARGET", getenv("GOARCH", runtime.GOARCH)),
		"PNONECACHE":       getenv("PNONECACHE", filepath.Join(cacheDir, "preservenone")),

		"GOROOT": getenv("GOROOT", runtime.GOROOT()),
	}
}

// Print writes the environment in sorted order.
func (e Env) Print(w io.Writer) {
	for _, k := range e.Keys() {
		fmt.Fprintf(w, "set %s=%s\n", k, e[k])
	}
}

func (e Env) Value(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return ""
}

// Bool interprets the value of key as a boolean. Unset and malformed values
// are false.
func (e Env) Bool(key string) bool {
	v, err := strconv.ParseBool(e.Value(key))
	return err == nil && v
}

func (e Env) Keys() []string {
	keys := maps.Keys(e)
	slices.Sort(keys)
	return keys
}

func (e Env) List() []string {
	var result []string
	for _, key := range e.Keys() {
		result = append(result, fmt.Sprintf("%s=%s", key, e[key]))
	}
	return result
}

func getenv(key, _default string) (value string) {
	value = os.Getenv(key)
	if len(value) == 0 {
		value = _default
	}
	return value
}
