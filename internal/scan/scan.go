// Package scan extracts image references from authored content: markdown and
// MDX bodies, YAML frontmatter, JSON documents and HTML.
package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/davidbz/imgresolve/internal/observability"
)

var (
	contentExts = map[string]bool{".md": true, ".mdx": true, ".json": true, ".html": true, ".htm": true}
	imageExts   = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".avif": true}
	fenceLine   = []byte("---")
)

// Reference is one image reference and the content file it was found in.
type Reference struct {
	Value string `json:"value"`
	File  string `json:"file"`
}

// Scanner finds image references under a content directory.
type Scanner struct {
	prefix  string
	literal *regexp.Regexp
}

// NewScanner creates a scanner for local references rooted at prefix, e.g. "/images".
func NewScanner(prefix string) *Scanner {
	prefix = "/" + strings.Trim(prefix, "/")
	return &Scanner{
		prefix:  prefix,
		literal: regexp.MustCompile(regexp.QuoteMeta(prefix) + `/[\w/-]+\.(?:jpg|jpeg|png|webp)`),
	}
}

// Files lists content files under dir in lexical order.
func (s *Scanner) Files(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && contentExts[strings.ToLower(filepath.Ext(p))] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Dir scans every content file under dir. Files that fail to parse are
// logged and skipped.
func (s *Scanner) Dir(ctx context.Context, dir string) ([]Reference, error) {
	files, err := s.Files(dir)
	if err != nil {
		return nil, err
	}

	logger := observability.FromContext(ctx)
	var out []Reference
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("content file unreadable", observability.String("file", file), observability.Error(err))
			continue
		}
		values, err := s.Extract(file, data)
		if err != nil {
			logger.Warn("content file skipped", observability.String("file", file), observability.Error(err))
			continue
		}
		for _, v := range values {
			out = append(out, Reference{Value: v, File: file})
		}
	}
	return out, nil
}

// Extract returns the distinct image references in one document, in order of
// first appearance. The file name only selects the format.
func (s *Scanner) Extract(file string, data []byte) ([]string, error) {
	c := &collector{seen: map[string]bool{}, accept: s.isImageRef}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		c.walk(doc)
	case ".html", ".htm":
		s.html(c, data)
	default:
		front, body, err := splitFrontmatter(data)
		if err != nil {
			return nil, err
		}
		c.walk(front)
		s.markdown(c, body)
		for _, m := range s.literal.FindAll(body, -1) {
			c.add(string(m))
		}
	}
	return c.values, nil
}

func (s *Scanner) markdown(c *collector, body []byte) {
	doc := goldmark.New().Parser().Parse(text.NewReader(body))

	var raw bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			c.add(string(node.Destination))
		case *ast.HTMLBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				raw.Write(seg.Value(body))
			}
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				raw.Write(seg.Value(body))
			}
		}
		return ast.WalkContinue, nil
	})

	if raw.Len() > 0 {
		s.html(c, raw.Bytes())
	}
}

func (s *Scanner) html(c *collector, data []byte) {
	z := html.NewTokenizer(bytes.NewReader(data))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "img" && string(name) != "source" {
				continue
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				switch string(key) {
				case "src":
					c.add(string(val))
				case "srcset":
					for _, part := range strings.Split(string(val), ",") {
						if fields := strings.Fields(part); len(fields) > 0 {
							c.add(fields[0])
						}
					}
				}
			}
		}
	}
}

// isImageRef accepts local paths under the prefix and remote URLs with an image extension.
func (s *Scanner) isImageRef(v string) bool {
	if strings.HasPrefix(v, s.prefix+"/") {
		return true
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return imageExts[strings.ToLower(path.Ext(u.Path))]
}

// splitFrontmatter separates a leading "---" YAML block from the body.
func splitFrontmatter(data []byte) (any, []byte, error) {
	trimmed := bytes.TrimPrefix(data, []byte("\ufeff"))
	if !bytes.HasPrefix(trimmed, fenceLine) {
		return nil, data, nil
	}

	rest := trimmed[len(fenceLine):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return nil, data, nil
	}
	rest = rest[nl+1:]

	var header []byte
	for {
		nl = bytes.IndexByte(rest, '\n')
		line := rest
		if nl >= 0 {
			line = rest[:nl]
		}
		if bytes.Equal(bytes.TrimRight(line, "\r \t"), fenceLine) {
			if nl < 0 {
				rest = nil
			} else {
				rest = rest[nl+1:]
			}
			break
		}
		if nl < 0 {
			return nil, nil, errors.New("unterminated frontmatter")
		}
		header = append(header, rest[:nl+1]...)
		rest = rest[nl+1:]
	}

	var front any
	if err := yaml.Unmarshal(header, &front); err != nil {
		return nil, nil, fmt.Errorf("invalid frontmatter: %w", err)
	}
	return front, rest, nil
}

type collector struct {
	seen   map[string]bool
	values []string
	accept func(string) bool
}

func (c *collector) add(v string) {
	v = strings.TrimSpace(v)
	if v == "" || c.seen[v] || !c.accept(v) {
		return
	}
	c.seen[v] = true
	c.values = append(c.values, v)
}

// walk visits every string in a decoded JSON or YAML value. Map keys are
// visited in sorted order so results do not depend on map iteration.
func (c *collector) walk(v any) {
	switch t := v.(type) {
	case string:
		c.add(t)
	case []any:
		for _, item := range t {
			c.walk(item)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c.walk(t[k])
		}
	}
}
