package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"ldtools/archive"
	"ldtools/config"
	"ldtools/content"
	"ldtools/dom"
	"ldtools/state"
)

// defaultExt is used for pages whose names carry no LDraw extension.
const defaultExt = ".ldr"

// buildOutputPath returns constructed output file path/name based on various
// input parameters. When page is nil the whole document is written,
// otherwise single page (index is its position in the document). It uses
// either default naming scheme or user-defined template and takes into
// account whether to preserve source directory structure on the output. If
// cleans up path and if requested transliterates it.
func buildOutputPath(c *content.Content, page *dom.Page, index int, dst string, env *state.LocalEnv) string {
	outDir := determineOutputDir(c.SrcName, dst, env)
	ext := outputExt(c.SrcName, page)

	var expandedName string
	if env.Cfg.Document.OutputNameTemplate != "" {
		// empty when template expansion failed, default name is used then
		expandedName = expandOutputNameTemplate(c, page, index, env)
	}
	if expandedName != "" {
		return makeFullPath(outDir, expandedName, ext, env)
	}

	if page == nil {
		return filepath.Join(outDir, makeDefaultFileName(c.SrcName, ext, env))
	}
	return makeFullPath(outDir, defaultPageName(c.SrcName, page, index), ext, env)
}

func determineOutputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func makeDefaultFileName(src, ext string, env *state.LocalEnv) string {
	baseName := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if env.Cfg.Document.FileNameTransliterate {
		baseName = slug.Make(baseName)
	}
	return config.CleanFileName(baseName) + ext
}

// outputExt keeps extension of the source, pages use their own extension.
func outputExt(src string, page *dom.Page) string {
	if page == nil {
		return filepath.Ext(src)
	}
	if name := page.Name(); archive.HasLDrawExt(name) {
		return filepath.Ext(name)
	}
	return defaultExt
}

// defaultPageName is page name without extension, library style backslash
// separated names become subdirectories. Unnamed pages are numbered after
// the source.
func defaultPageName(src string, page *dom.Page, index int) string {
	name := page.Name()
	if archive.HasLDrawExt(name) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.Trim(name, "/ ") == "" {
		return fmt.Sprintf("%s-%d", strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)), index+1)
	}
	return filepath.FromSlash(name)
}

func expandOutputNameTemplate(c *content.Content, page *dom.Page, index int, env *state.LocalEnv) string {
	expandedName, err := expandTemplate(c, page, index, config.OutputNameTemplateFieldName, env.Cfg.Document.OutputNameTemplate, env.Format)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return ""
	}
	return filepath.FromSlash(expandedName)
}

// makeFullPath takes an expanded name (which may contain path separators
// for subdirectories) and assembles it into a full output path, cleaning and
// transliterating segments as needed.
func makeFullPath(outDir, expandedName, ext string, env *state.LocalEnv) string {
	pathSegments := splitPathSegments(expandedName)

	if len(pathSegments) == 0 {
		return outDir
	}

	fileName := cleanPathSegment(pathSegments[len(pathSegments)-1], env) + ext
	dirParts := make([]string, 0, len(pathSegments)+1)
	dirParts = append(dirParts, outDir)

	for _, segment := range pathSegments[:len(pathSegments)-1] {
		dirParts = append(dirParts, cleanPathSegment(segment, env))
	}

	dirParts = append(dirParts, fileName)
	return filepath.Join(dirParts...)
}

func splitPathSegments(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}

	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Document.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
