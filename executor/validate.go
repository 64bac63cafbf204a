package executor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/veldtlabs/cadence/errors"
)

// shellMetaChars are rejected in script paths. Paths are never handed to a
// shell, but refusing them up front keeps log lines and rendered commands
// unambiguous.
const shellMetaChars = "|&;$><`\\"

// ValidateScriptPath checks that a script path is safe to execute:
// the file exists, is a regular file, has a .py extension and contains
// no shell metacharacters. Runs failing validation are never recorded.
func ValidateScriptPath(path string) error {
	if path == "" {
		return errors.Wrap(errors.ErrInvalidScriptPath, "empty path")
	}

	if strings.ContainsAny(path, shellMetaChars) {
		return errors.Wrapf(errors.ErrInvalidScriptPath, "%q contains shell metacharacters", path)
	}

	if filepath.Ext(path) != ".py" {
		return errors.Wrapf(errors.ErrInvalidScriptPath, "%q is not a .py script", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(errors.ErrInvalidScriptPath, "%q does not exist", path)
		}
		return errors.Wrapf(errors.ErrInvalidScriptPath, "%q: %v", path, err)
	}

	if !info.Mode().IsRegular() {
		return errors.Wrapf(errors.ErrInvalidScriptPath, "%q is not a regular file", path)
	}

	return nil
}
