package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/hotpath/internal/scenario"
)

// ValidationResult holds per-file validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// FileValidation is one scenario file's verdict.
type FileValidation struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Tasks int    `json:"tasks,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml | dir>",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario files against the schema and compile every task:
pattern names, guard trees, contexts, and handlers are all checked.
Faster than run for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			return runValidate(formatter, args[0])
		},
	}
	return cmd
}

func runValidate(formatter *OutputFormatter, path string) error {
	files, err := collectScenarioFiles(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "scan scenarios", err)
	}
	if len(files) == 0 {
		return WrapExitError(ExitCommandError, fmt.Sprintf("no scenario files found in %s", path), nil)
	}

	result := ValidationResult{Valid: true}
	for _, file := range files {
		fv := FileValidation{Path: file, Valid: true}
		s, err := scenario.Load(file)
		if err != nil {
			fv.Valid = false
			fv.Error = err.Error()
		} else {
			fv.Tasks = len(s.Tasks)
			for _, spec := range s.Tasks {
				if _, err := scenario.CompileTask(spec); err != nil {
					fv.Valid = false
					fv.Error = err.Error()
					break
				}
			}
		}
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if err := formatter.Success(result, func(w io.Writer) {
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(w, "ok    %s (%d tasks)\n", fv.Path, fv.Tasks)
			} else {
				fmt.Fprintf(w, "FAIL  %s: %s\n", fv.Path, fv.Error)
			}
		}
	}); err != nil {
		return err
	}

	if !result.Valid {
		return WrapExitError(ExitFailure, "validation failed", nil)
	}
	return nil
}

// collectScenarioFiles expands a path into scenario files. A file path is
// taken as-is; a directory is scanned for .yaml and .yml entries.
func collectScenarioFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
