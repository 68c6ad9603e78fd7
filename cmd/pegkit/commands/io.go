package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/pegkit/pkg/textutil"
)

// stdinPath names standard input on the command line.
const stdinPath = "-"

var (
	// ErrDirectoryPath indicates a file operation was attempted on a directory.
	ErrDirectoryPath = errors.New("path points to a directory")
	// ErrEmptyPath indicates a path argument was empty.
	ErrEmptyPath = errors.New("path is empty")
	// ErrPathContainsNUL indicates the path contains a NUL byte.
	ErrPathContainsNUL = errors.New("path contains NUL byte")
	// ErrBinaryInput indicates a file that does not hold text.
	ErrBinaryInput = errors.New("input is not text")
	// ErrUnknownFormat indicates an unsupported --format value.
	ErrUnknownFormat = errors.New("unknown output format")
)

// readSource reads path, or standard input for "-", and returns the text and
// the label to report it under.
func readSource(cmd *cobra.Command, path string) (text, label string, err error) {
	if path == stdinPath {
		data, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return "", "", fmt.Errorf("read stdin: %w", readErr)
		}

		return checkText(data, "<stdin>")
	}

	resolved, err := resolveUserFilePath(path)
	if err != nil {
		return "", "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	//nolint:gosec // resolved is normalized and existence/type checked in resolveUserFilePath.
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", path, err)
	}

	return checkText(data, path)
}

func checkText(data []byte, label string) (text, name string, err error) {
	if textutil.IsBinary(data) {
		return "", "", fmt.Errorf("%w: %s", ErrBinaryInput, label)
	}

	return string(data), label, nil
}

func resolveUserFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDirectoryPath, absPath)
	}

	return absPath, nil
}

// encode writes value to w as indented JSON or as YAML.
func encode(w io.Writer, format string, value any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q (want json or yaml)", ErrUnknownFormat, format)
	}
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory, keeping the original permissions.
func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()

		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}

	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()

		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}

func wrapLabel(label string, err error) error {
	return fmt.Errorf("%s: %w", label, err)
}
