package static_pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/meysamhadeli/assetgraph/utils"
)

// discover collects every declared file and walked directory entry, sorted by alias.
func (p *StaticPipeline) discover() ([]models.WorkingFile, error) {
	found := make(map[string]models.WorkingFile)

	add := func(working models.WorkingFile) error {
		if existing, ok := found[working.Alias]; ok {
			return fmt.Errorf("%w %q: %s and %s", ErrDuplicateAlias, working.Alias, existing.AbsolutePath, working.AbsolutePath)
		}
		found[working.Alias] = working
		return nil
	}

	for _, declared := range p.options.Files {
		working, ok, err := p.discoverFile(declared)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := add(working); err != nil {
			return nil, err
		}
	}

	for _, declared := range p.options.Directories {
		if err := p.discoverDirectory(declared, add); err != nil {
			return nil, err
		}
	}

	aliases := make([]string, 0, len(found))
	for alias := range found {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	files := make([]models.WorkingFile, 0, len(aliases))
	for _, alias := range aliases {
		files = append(files, found[alias])
	}
	return files, nil
}

func (p *StaticPipeline) discoverFile(declared models.StaticFile) (models.WorkingFile, bool, error) {
	absolute, err := filepath.Abs(declared.Path)
	if err != nil {
		return models.WorkingFile{}, false, fmt.Errorf("failed to resolve file %q: %w", declared.Alias, err)
	}
	info, err := os.Stat(absolute)
	if os.IsNotExist(err) {
		return models.WorkingFile{}, false, fmt.Errorf("file %q: %w: %s", declared.Alias, ErrMissingPath, absolute)
	} else if err != nil {
		return models.WorkingFile{}, false, fmt.Errorf("failed to stat file %q: %w", declared.Alias, err)
	}
	if !info.Mode().IsRegular() {
		return models.WorkingFile{}, false, fmt.Errorf("file %q: %w: %s is not a regular file", declared.Alias, ErrNotRegular, absolute)
	}

	name := filepath.Base(absolute)
	return p.identify(models.WorkingFile{
		Name:           name,
		DirectoryAlias: declared.Alias,
		RelativePath:   name,
		AbsolutePath:   absolute,
		Alias:          declared.Alias,
	})
}

func (p *StaticPipeline) discoverDirectory(declared models.StaticDirectory, add func(models.WorkingFile) error) error {
	root, err := filepath.Abs(declared.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve directory %q: %w", declared.Alias, err)
	}
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory %q: %w: %s", declared.Alias, ErrMissingPath, root)
	} else if err != nil {
		return fmt.Errorf("failed to stat directory %q: %w", declared.Alias, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("directory %q: %w: %s is not a directory", declared.Alias, ErrNotRegular, root)
	}

	patterns, err := utils.GetIgnorePatterns(root)
	if err != nil {
		return fmt.Errorf("directory %q: %w", declared.Alias, err)
	}

	return filepath.WalkDir(root, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk directory %q: %w", declared.Alias, err)
		}
		relative, err := filepath.Rel(root, current)
		if err != nil {
			return err
		}
		if relative == "." {
			return nil
		}
		relative = filepath.ToSlash(relative)

		if utils.IsDefaultIgnored(relative) || utils.IsIgnored(relative, entry.IsDir(), patterns) {
			p.logger.Debug("Ignoring path", p.logger.Args("directory", declared.Alias, "path", relative))
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		info, err := os.Stat(current)
		if err != nil || !info.Mode().IsRegular() {
			p.logger.Warn("Skipping non-regular file", p.logger.Args("directory", declared.Alias, "path", relative))
			return nil
		}

		working, ok, err := p.identify(models.WorkingFile{
			Name:           entry.Name(),
			DirectoryAlias: declared.Alias,
			RelativePath:   relative,
			AbsolutePath:   current,
			Alias:          path.Join(declared.Alias, relative),
		})
		if err != nil || !ok {
			return err
		}
		return add(working)
	})
}

// identify fills in extension, lang and content type. Files with an extension
// missing from the table are reported as not ok and skipped.
func (p *StaticPipeline) identify(working models.WorkingFile) (models.WorkingFile, bool, error) {
	_, lang, extension := SplitFileName(working.Name)
	contentType, ok := p.extensions.Lookup(extension)
	if !ok {
		p.logger.Warn("Skipping file with unknown extension", p.logger.Args("alias", working.Alias, "extension", extension))
		return working, false, nil
	}
	working.Extension = extension
	working.Lang = lang
	working.ContentType = contentType
	if strings.TrimSpace(working.Alias) == "" {
		return working, false, fmt.Errorf("file %s has an empty alias", working.AbsolutePath)
	}
	return working, true, nil
}
