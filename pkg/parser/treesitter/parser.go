// Package treesitter provides the C front end: it parses translation units
// with tree-sitter and maps them into pkg/cast trees.
package treesitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/yaklabco/volblock/pkg/cast"
)

// DefaultMaxFileSize is the largest source file parsed when Options leaves
// MaxFileSize unset.
const DefaultMaxFileSize = 10 << 20

// maxSyntaxErrors bounds the syntax errors reported per file.
const maxSyntaxErrors = 10

// ErrFileTooLarge is returned when a main file exceeds the size limit.
var ErrFileTooLarge = errors.New("file too large")

// Options configures a Parser.
type Options struct {
	// MaxFileSize is the size limit in bytes for every file read.
	MaxFileSize int64

	// Logger receives debug messages about skipped headers. Nil discards them.
	Logger *log.Logger
}

// Parser builds cast.Units from C sources. It is safe for concurrent use;
// every call creates its own tree-sitter parser.
type Parser struct {
	maxFileSize int64
	logger      *log.Logger
}

// New creates a Parser.
func New(opts Options) *Parser {
	p := &Parser{maxFileSize: opts.MaxFileSize, logger: opts.Logger}
	if p.maxFileSize <= 0 {
		p.maxFileSize = DefaultMaxFileSize
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	return p
}

// ParseUnit reads path and parses it as a translation unit, following
// includes through search and evaluating #ifdef against defines.
func (p *Parser) ParseUnit(ctx context.Context, path string, search SearchPath, defines map[string]string) (*cast.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), p.maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return p.ParseSource(ctx, path, content, search, defines)
}

// ParseSource parses content as the translation unit named path.
func (p *Parser) ParseSource(
	ctx context.Context,
	path string,
	content []byte,
	search SearchPath,
	defines map[string]string,
) (*cast.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, len(content), p.maxFileSize)
	}

	main := cast.NewSourceFile(path, Canonical(path), content)
	root := cast.NewNode(cast.NodeTranslationUnit)
	root.File = main
	root.Range = cast.SourceRange{StartOffset: 0, EndOffset: len(content)}

	unit := &cast.Unit{
		Main:  main,
		Files: []*cast.SourceFile{main},
		Root:  root,
	}

	tsParser := sitter.NewParser()
	tsParser.SetLanguage(c.GetLanguage())

	b := &builder{
		ctx:         ctx,
		parser:      tsParser,
		logger:      p.logger,
		maxFileSize: p.maxFileSize,
		search:      search,
		macros:      newMacroTable(defines),
		unit:        unit,
		mapped:      map[string]bool{main.Canonical: true},
	}
	b.scope = newScope(nil)

	if err := b.mapFile(main); err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}
	return unit, nil
}
