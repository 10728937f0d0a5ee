package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// HTMLSource reads the message documents of one chat export folder
// ("messages.html", "messages2.html", ...).
type HTMLSource struct {
	dir string
}

func NewHTMLSource(dir string) *HTMLSource {
	return &HTMLSource{dir: dir}
}

// Documents loads every message document in the export folder. Order
// is whatever the filesystem returns; the walker sorts by split
// ordinal before replaying.
func (s *HTMLSource) Documents() ([]ExportDocument, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "messages*.html"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, s.dir)
	}
	docs := make([]ExportDocument, 0, len(paths))
	for _, path := range paths {
		doc, err := readDocument(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func readDocument(path string) (ExportDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return ExportDocument{}, err
	}
	defer f.Close()

	root, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return ExportDocument{}, err
	}

	doc := ExportDocument{Name: filepath.Base(path)}
	root.Find("div.message").Each(func(_ int, sel *goquery.Selection) {
		msg := RawMessage{Service: sel.HasClass("service")}
		msg.TitleTimestamp, _ = sel.Find("div.date").First().Attr("title")
		msg.Sender = sel.Find("div.from_name").First().Text()
		if text := sel.Find("div.text").First(); text.Length() > 0 {
			// Inner markup, kept verbatim: fill parsing needs the
			// HTML-escaped arrow form.
			if html, err := text.Html(); err == nil {
				msg.HTML = html
			}
		}
		doc.Messages = append(doc.Messages, msg)
	})
	return doc, nil
}

// FindExportFolder resolves the dated export folder the desktop client
// writes, e.g. "ChatExport_2026-02-27". A missing folder is fatal to
// the run.
func FindExportFolder(root string, day time.Time) (string, error) {
	dir := filepath.Join(root, "ChatExport_"+day.Format("2006-01-02"))
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("export folder not found: %s", dir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("export path is not a folder: %s", dir)
	}
	return dir, nil
}
