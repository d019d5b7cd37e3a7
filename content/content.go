// Package content turns LDraw sources into prepared documents ready for
// conversion or checking.
package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"ldtools/common"
	"ldtools/dom"
	"ldtools/library"
	"ldtools/misc"
	"ldtools/state"
)

// Content keeps parsed document together with information about its source.
type Content struct {
	SrcName string
	Doc     *dom.Document
	WorkDir string
}

// Prepare reads, decodes and parses LDraw source. The document resolves its
// references through program library, pages which do not declare culling
// get the configured default.
func Prepare(ctx context.Context, r io.Reader, srcName string, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	dr, err := library.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode source: %w", err)
	}

	baseSrcName := filepath.Base(srcName)

	doc, err := dom.ParseDocument(dr, baseSrcName, log)
	if err != nil {
		return nil, fmt.Errorf("unable to parse LDraw source: %w", err)
	}
	if env.Library != nil {
		doc.SetResolver(env.Library)
	}

	if !env.Cfg.Document.KeepLineEndings && doc.CRLF() {
		if err := doc.SetCRLF(false); err != nil {
			return nil, err
		}
	}
	if mode := env.Cfg.Document.DefaultCulling; mode != common.CullingModeNotset {
		if err := applyDefaultCulling(doc, mode, log); err != nil {
			return nil, err
		}
	}

	c := &Content{
		SrcName: srcName,
		Doc:     doc,
	}

	// Save parsed document for debugging
	if env.Rpt != nil {
		tmpDir, err := os.MkdirTemp("", misc.GetAppName()+"-")
		if err != nil {
			return nil, fmt.Errorf("unable to create temporary directory: %w", err)
		}
		env.Rpt.Store(fmt.Sprintf("%s-%s", misc.GetAppName(), doc.ID()), tmpDir)
		c.WorkDir = tmpDir

		if err := os.WriteFile(filepath.Join(tmpDir, baseSrcName+"_parsed"), []byte(c.String()), 0644); err != nil {
			return nil, fmt.Errorf("unable to write parsed doc for debugging: %w", err)
		}
		if err := doc.ToXML().WriteToFile(filepath.Join(tmpDir, baseSrcName+".xml")); err != nil {
			return nil, fmt.Errorf("unable to write XML doc for debugging: %w", err)
		}
	}

	log.Debug("Content prepared", zap.String("source", srcName), zap.Stringer("id", doc.ID()), zap.Int("pages", doc.PageCount()))
	return c, nil
}

func applyDefaultCulling(doc *dom.Document, mode common.CullingMode, log *zap.Logger) error {
	for _, p := range doc.Pages() {
		if p.BFC() != common.CullingModeNotset {
			continue
		}
		if err := p.SetBFC(mode); err != nil {
			return fmt.Errorf("unable to set culling of page %q: %w", p.Name(), err)
		}
		log.Debug("Default culling applied", zap.String("page", p.Name()), zap.Stringer("mode", mode))
	}
	return nil
}
