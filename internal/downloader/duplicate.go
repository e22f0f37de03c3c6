package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DuplicatePolicy decides what happens when the output file already exists.
type DuplicatePolicy string

const (
	DuplicatePolicyPrompt    DuplicatePolicy = "prompt"
	DuplicatePolicyOverwrite DuplicatePolicy = "overwrite"
	DuplicatePolicyRename    DuplicatePolicy = "rename"
)

// RenamePrefix is inserted before the file name to avoid a collision.
const RenamePrefix = "2_"

func ParseDuplicatePolicy(raw string) (DuplicatePolicy, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "", string(DuplicatePolicyPrompt):
		return DuplicatePolicyPrompt, nil
	case string(DuplicatePolicyOverwrite):
		return DuplicatePolicyOverwrite, nil
	case string(DuplicatePolicyRename):
		return DuplicatePolicyRename, nil
	default:
		return "", fmt.Errorf("invalid on-duplicate policy: %q", raw)
	}
}

type collision struct {
	path     string
	fileName string
	renamed  bool
}

// resolveCollision negotiates the output path. The path changes at most
// once: either the old file is removed, or the new one gets RenamePrefix.
func resolveCollision(ctx context.Context, path, fileName string, policy DuplicatePolicy, prompter Prompter, printer *Printer) (collision, error) {
	result := collision{path: path, fileName: fileName}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return collision{}, WrapCategory(CategoryFilesystem, err)
	}
	if info.IsDir() {
		return collision{}, WrapCategory(CategoryFilesystem, fmt.Errorf("output path is a directory: %s", path))
	}
	if !info.Mode().IsRegular() {
		return result, nil
	}

	overwrite := policy == DuplicatePolicyOverwrite
	if policy == DuplicatePolicyPrompt || policy == "" {
		if prompter == nil {
			return collision{}, WrapCategory(CategoryFilesystem, fmt.Errorf("%s exists and no prompt is available", path))
		}
		overwrite, err = prompter.Confirm(ctx, fmt.Sprintf("File '%s' already exists, overwrite?", path))
		if err != nil {
			return collision{}, err
		}
	}

	if overwrite {
		if err := os.Remove(path); err != nil {
			return collision{}, WrapCategory(CategoryFilesystem, fmt.Errorf("removing existing file: %w", err))
		}
		printer.Notice(fmt.Sprintf("File '%s' deleted!", path))
		return result, nil
	}

	result.path = filepath.Join(filepath.Dir(path), RenamePrefix+filepath.Base(path))
	result.fileName = RenamePrefix + fileName
	result.renamed = true
	printer.Notice(fmt.Sprintf("File '%s' renamed to '%s'", fileName, result.fileName))
	return result, nil
}
