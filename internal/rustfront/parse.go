// Package rustfront reads Rust contract sources into syntax trees.
//
// Sources are parsed with tree-sitter's Rust grammar. Only the item level
// is interpreted: modules, structs, enums, impl blocks, traits, function
// signatures, attributes and doc comments. Function bodies are never
// inspected.
package rustfront

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/inkir/internal/syntax"
)

// ParseError is a source error found while reading a file.
type ParseError struct {
	Pos     syntax.Pos
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Parser wraps a tree-sitter parser. It is not safe for concurrent use.
type Parser struct {
	ts *sitter.Parser
}

// NewParser creates a parser for Rust sources.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(rust.GetLanguage())
	return &Parser{ts: p}
}

// Close releases the underlying parser.
func (p *Parser) Close() {
	p.ts.Close()
}

// Parse reads src as the file at path. A syntax error anywhere in the file
// fails the parse; malformed ink! attributes and type expressions are
// reported together.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*syntax.File, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		n := firstError(root)
		msg := "syntax error"
		if n.IsMissing() {
			msg = fmt.Sprintf("missing %s", n.Type())
		} else if text := strings.TrimSpace(n.Content(src)); text != "" {
			msg = fmt.Sprintf("syntax error near %q", clip(text, 32))
		}
		return nil, &ParseError{Pos: position(path, n), Message: msg}
	}

	r := &reader{path: path, src: src}
	file := &syntax.File{Path: path, Items: r.items(root)}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	return file, nil
}

// ParseFile reads and parses one file from disk.
func ParseFile(ctx context.Context, path string) (*syntax.File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	p := NewParser()
	defer p.Close()
	return p.Parse(ctx, path, src)
}

// ParseFiles parses paths concurrently, one parser per file. Results keep
// the order of paths.
func ParseFiles(ctx context.Context, paths []string) ([]*syntax.File, error) {
	files := make([]*syntax.File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			f, err := ParseFile(ctx, path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// FindSources walks dir and returns all .rs files in lexical order. Cargo
// target directories and hidden directories are skipped.
func FindSources(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if path != dir && (name == "target" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".rs" {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.HasError() || c.IsMissing() {
			return firstError(c)
		}
	}
	return n
}

func position(path string, n *sitter.Node) syntax.Pos {
	p := n.StartPoint()
	return syntax.Pos{File: path, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func clip(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
