package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

// Item is one raw corpus document.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Options controls loading.
type Options struct {
	// StripHTML extracts the text nodes of HTML bodies.
	StripHTML bool
	Logger    *log.Logger
}

// LoadJSONL loads items from a JSONL file, one JSON object per line.
// Malformed lines are skipped with a warning.
func LoadJSONL(path string, opts Options) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var items []Item
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			if opts.Logger != nil {
				opts.Logger.Warn("skipping malformed JSON", "path", path, "line", lineNo, "err", err)
			}
			continue
		}
		if opts.StripHTML {
			item.Text = StripHTML(item.Text)
		}
		if item.ID == "" {
			item.ID = fmt.Sprintf("line-%d", lineNo)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found in %s", path)
	}
	return items, nil
}

// Texts returns the text of every item, in order.
func Texts(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

// StripHTML returns the concatenated text nodes of an HTML fragment. Script
// and style contents are dropped. Unparseable input is returned unchanged.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.Join(strings.Fields(buf.String()), " ")
}
