package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"ldtools/archive"
	"ldtools/common"
	"ldtools/config"
	"ldtools/content"
	"ldtools/dom"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	// Name is the document name and Page is the name of the page being
	// written, both without extensions. When the whole document is written
	// Page is its main page.
	Name       string
	Page       string
	PageIndex  int
	PageCount  int
	Title      string
	Author     string
	Type       string
	Category   string
	Keywords   []string
	Format     string
	SourceFile string
	DocumentID string
}

// trimExt removes LDraw extensions only, page names may contain dots.
func trimExt(name string) string {
	if !archive.HasLDrawExt(name) {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func buildType(info dom.PageInfo) string {
	if info.Type == dom.PageTypeNone {
		return ""
	}
	if info.Unofficial {
		return "Unofficial_" + string(info.Type)
	}
	return string(info.Type)
}

func expandTemplate(c *content.Content, page *dom.Page, index int, name config.TemplateFieldName, field string, format common.CodeFormat) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	if page == nil {
		page, index = c.Doc.MainPage(), 0
	}

	values := Values{
		Context:    string(name),
		Name:       trimExt(c.Doc.Name()),
		PageIndex:  index + 1,
		PageCount:  c.Doc.PageCount(),
		Format:     format.String(),
		SourceFile: trimExt(filepath.Base(c.SrcName)),
		DocumentID: c.Doc.ID().String(),
	}
	if page != nil {
		info := page.Info()
		values.Page = trimExt(strings.ReplaceAll(page.Name(), `\`, "/"))
		values.Title = info.Title
		values.Author = info.Author
		values.Type = buildType(info)
		values.Category = info.Category
		values.Keywords = info.Keywords
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
