// Package pdfcpu extracts plain text from mirrored PDF documents.
package pdfcpu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fwojciec/schedbot"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var _ schedbot.TextExtractor = (*Extractor)(nil)

var disableConfigDir sync.Once

// Extractor reads the text-showing operators of every page's content stream.
type Extractor struct {
	// Logger reports pages that could not be read. Nil discards.
	Logger *slog.Logger
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	// pdfcpu otherwise creates a configuration directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)
	return &Extractor{}
}

// ExtractText returns the text of the PDF at path. Page texts are joined with
// a newline in page order; pages without text contribute nothing. A page that
// cannot be read is skipped so the rest of the document stays searchable.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	pdf, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return "", schedbot.Errorf(schedbot.EINVALID, "parse %s: %v", path, err)
	}

	return e.joinPages(ctx, path, pdf.PageCount, func(pageNr int) (string, error) {
		return pageText(pdf, pageNr)
	})
}

// joinPages reads pages 1..n in order. Read errors and panics are logged and
// the page is left out.
func (e *Extractor) joinPages(ctx context.Context, path string, n int, read func(pageNr int) (string, error)) (string, error) {
	var pages []string
	for pageNr := 1; pageNr <= n; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := readPage(read, pageNr)
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("page unreadable", "path", path, "page", pageNr, "error", err)
			}
			continue
		}
		if text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n"), nil
}

func readPage(read func(int) (string, error), pageNr int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", pageNr, r)
		}
	}()
	return read(pageNr)
}

// pageText returns the text of one page. A page without a content stream
// yields no text.
func pageText(pdf *model.Context, pageNr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(pdf, pageNr)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return textFromContent(data, pageFonts(pdf, pageNr)), nil
}

// pageFonts returns the ToUnicode maps of the fonts in a page's resources,
// keyed by resource name. Fonts without a usable map are left out.
func pageFonts(pdf *model.Context, pageNr int) map[string]*cmap {
	d, _, inh, err := pdf.PageDict(pageNr, true)
	if err != nil || d == nil {
		return nil
	}
	var res types.Dict
	if obj, ok := d["Resources"]; ok {
		res, _ = pdf.DereferenceDict(obj)
	}
	if res == nil && inh != nil {
		res = inh.Resources
	}
	if res == nil {
		return nil
	}
	fontsDict, err := pdf.DereferenceDict(res["Font"])
	if err != nil || fontsDict == nil {
		return nil
	}

	fonts := make(map[string]*cmap)
	for name, obj := range fontsDict {
		fd, err := pdf.DereferenceDict(obj)
		if err != nil || fd == nil {
			continue
		}
		tu, ok := fd["ToUnicode"]
		if !ok {
			continue
		}
		o, err := pdf.Dereference(tu)
		if err != nil {
			continue
		}
		sd, ok := o.(types.StreamDict)
		if !ok {
			continue
		}
		if err := sd.Decode(); err != nil {
			continue
		}
		if m := parseCMap(sd.Content); m != nil {
			fonts[name] = m
		}
	}
	return fonts
}
