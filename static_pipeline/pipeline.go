package static_pipeline

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/meysamhadeli/assetgraph/parsers/css"
	"github.com/meysamhadeli/assetgraph/parsers/html"
	"github.com/meysamhadeli/assetgraph/parsers/javascript"
	"github.com/meysamhadeli/assetgraph/preprocessors/typescript"
	"github.com/meysamhadeli/assetgraph/static_pipeline/contracts"
	"github.com/meysamhadeli/assetgraph/static_pipeline/models"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

const DefaultPrefix = "/static"

// Options configures a StaticPipeline.
type Options struct {
	Files       []models.StaticFile
	Directories []models.StaticDirectory
	// Extensions overrides the built-in extension table; an empty content type removes an entry.
	Extensions map[string]string
	// Parsers and Preprocessors default to the built-in set when nil.
	Parsers       []contracts.IReferenceParser
	Preprocessors []contracts.IReferencePreprocessor
	Prefix        string
	Concurrency   int
	Closure       models.ClosureMode
	Cache         *ArtifactCache
	Minify        bool
	Logger        *pterm.Logger
}

func DefaultParsers() []contracts.IReferenceParser {
	return []contracts.IReferenceParser{
		css.NewCSSParser(nil),
		html.NewHTMLParser(),
		javascript.NewJavaScriptParser(),
	}
}

func DefaultPreprocessors() []contracts.IReferencePreprocessor {
	return []contracts.IReferencePreprocessor{
		typescript.NewTypeScriptPreprocessor(),
	}
}

const (
	stateIdle int32 = iota
	stateLoading
	stateLoaded
)

// tables is everything setup produces. It is published once and never mutated.
type tables struct {
	files    []*models.FileInfo
	index    *models.FileIndex
	graph    *models.DependencyGraph
	registry contracts.IActionRegistry
}

// StaticPipeline discovers, hashes and parses a static file tree, then serves
// every file under its content-addressed URL.
type StaticPipeline struct {
	options       Options
	prefix        string
	extensions    models.ExtensionTable
	parsers       map[string]contracts.IReferenceParser
	preprocessors map[string]contracts.IReferencePreprocessor
	logger        *pterm.Logger

	state  atomic.Int32
	loaded atomic.Pointer[tables]
}

// New validates options and builds the parser and preprocessor registries.
func New(options Options) (*StaticPipeline, error) {
	closure, err := models.ParseClosureMode(string(options.Closure))
	if err != nil {
		return nil, err
	}
	options.Closure = closure

	if options.Concurrency <= 0 {
		options.Concurrency = runtime.NumCPU()
	}

	prefix := strings.TrimSpace(options.Prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if strings.ContainsAny(prefix, "?#") {
		return nil, fmt.Errorf("invalid prefix %q", options.Prefix)
	}

	logger := options.Logger
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	}

	if options.Parsers == nil {
		options.Parsers = DefaultParsers()
	}
	if options.Preprocessors == nil {
		options.Preprocessors = DefaultPreprocessors()
	}

	// Later registrations win for the same content type or extension.
	parsers := make(map[string]contracts.IReferenceParser)
	for i, parser := range options.Parsers {
		if parser == nil {
			return nil, fmt.Errorf("parser %d is nil", i)
		}
		for _, contentType := range parser.Supports() {
			parsers[strings.ToLower(contentType)] = parser
		}
	}
	preprocessors := make(map[string]contracts.IReferencePreprocessor)
	for i, preprocessor := range options.Preprocessors {
		if preprocessor == nil {
			return nil, fmt.Errorf("preprocessor %d is nil", i)
		}
		for _, extension := range preprocessor.Extensions() {
			preprocessors[strings.ToLower(strings.TrimPrefix(extension, "."))] = preprocessor
		}
	}

	for _, declared := range options.Files {
		if strings.TrimSpace(declared.Alias) == "" || strings.TrimSpace(declared.Path) == "" {
			return nil, fmt.Errorf("file entries need both alias and path: %+v", declared)
		}
	}
	for _, declared := range options.Directories {
		if strings.TrimSpace(declared.Path) == "" {
			return nil, fmt.Errorf("directory %q has no path", declared.Alias)
		}
	}

	return &StaticPipeline{
		options:       options,
		prefix:        prefix,
		extensions:    models.NewExtensionTable(options.Extensions),
		parsers:       parsers,
		preprocessors: preprocessors,
		logger:        logger,
	}, nil
}

// Load runs setup in the background and streams progress. The stream ends with
// either an event carrying Err or one with Done set, and is then closed.
// registry may be nil when nothing needs to be served; a typed nil pointer
// counts as nil.
func (p *StaticPipeline) Load(ctx context.Context, registry contracts.IActionRegistry) <-chan models.SetupEvent {
	registry = normalizeRegistry(registry)
	events := make(chan models.SetupEvent, 8)
	if !p.state.CompareAndSwap(stateIdle, stateLoading) {
		events <- models.SetupEvent{Err: ErrAlreadyLoaded}
		close(events)
		return events
	}

	go func() {
		defer close(events)
		loaded, err := p.setup(ctx, registry, events)
		if err != nil {
			p.state.Store(stateIdle)
			events <- models.SetupEvent{Err: err}
			return
		}
		p.loaded.Store(loaded)
		p.state.Store(stateLoaded)
		events <- models.SetupEvent{Message: fmt.Sprintf("Static pipeline ready with %d files", len(loaded.files)), Done: true}
	}()
	return events
}

func normalizeRegistry(registry contracts.IActionRegistry) contracts.IActionRegistry {
	if registry == nil {
		return nil
	}
	value := reflect.ValueOf(registry)
	switch value.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface:
		if value.IsNil() {
			return nil
		}
	}
	return registry
}

// Await drains a setup stream and reports its outcome.
func Await(events <-chan models.SetupEvent) error {
	for event := range events {
		if event.Err != nil {
			return event.Err
		}
		if event.Done {
			return nil
		}
	}
	return fmt.Errorf("%w: setup stream closed before completion", ErrNotLoaded)
}

func (p *StaticPipeline) setup(ctx context.Context, registry contracts.IActionRegistry, events chan<- models.SetupEvent) (*tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	working, err := p.discover()
	if err != nil {
		return nil, err
	}
	events <- models.SetupEvent{Message: fmt.Sprintf("Discovered %d files", len(working))}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := p.hashFiles(ctx, working)
	if err != nil {
		return nil, err
	}
	byAlias := make(map[string]*models.FileInfo, len(files))
	byURL := make(map[string]*models.FileInfo, len(files))
	for _, file := range files {
		byAlias[file.Alias()] = file
		byURL[file.AliasURL()] = file
	}
	index := models.NewFileIndex(byAlias, byURL)
	events <- models.SetupEvent{Message: fmt.Sprintf("Hashed %d files", len(files))}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	graph, err := p.buildGraph(ctx, files, index)
	if err != nil {
		return nil, err
	}
	events <- models.SetupEvent{Message: fmt.Sprintf("Built dependency graph for %d files", graph.Len())}

	loaded := &tables{files: files, index: index, graph: graph, registry: registry}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if registry != nil {
		for _, file := range files {
			action := models.Action{
				Path:        file.URL(),
				ContentType: p.outputContentType(file),
				Public:      true,
				Immutable:   true,
				Handler:     p.handler(loaded, file),
			}
			if err := registry.Register(action); err != nil {
				return nil, fmt.Errorf("failed to register %s: %w", file.Alias(), err)
			}
		}
		events <- models.SetupEvent{Message: fmt.Sprintf("Registered %d actions", len(files))}
	}

	return loaded, nil
}

func (p *StaticPipeline) hashFiles(ctx context.Context, working []models.WorkingFile) ([]*models.FileInfo, error) {
	files := make([]*models.FileInfo, len(working))
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(p.options.Concurrency)

	for i := range working {
		i := i
		group.Go(func() error {
			content, err := os.ReadFile(working[i].AbsolutePath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", working[i].Alias, err)
			}
			hash := HashContent(content)
			extension := working[i].Extension
			if preprocessor, ok := p.preprocessors[strings.ToLower(extension)]; ok {
				extension = preprocessor.OutputExtension()
			}
			files[i] = working[i].Finalize(
				hash,
				models.MintURL(p.prefix, working[i].FriendlyName(), hash, extension),
				models.MintAliasURL(p.prefix, working[i].Alias),
			)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (p *StaticPipeline) buildGraph(ctx context.Context, files []*models.FileInfo, index *models.FileIndex) (*models.DependencyGraph, error) {
	references := make([][]models.ReferenceDetails, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.options.Concurrency)

	for i := range files {
		i := i
		group.Go(func() error {
			refs, err := p.parse(groupCtx, files[i], index)
			if err != nil {
				return err
			}
			references[i] = refs
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	builders := make(map[string]*models.DependencyMapBuilder, len(files))
	for i, file := range files {
		builders[file.Alias()] = models.NewDependencyMapBuilder(file, references[i])
	}
	return BuildDependencyGraph(builders, p.options.Closure, p.logger), nil
}

// parse dispatches to the preprocessor for the file's extension, then to the
// parser for its content type. Files neither knows have no references.
func (p *StaticPipeline) parse(ctx context.Context, file *models.FileInfo, index *models.FileIndex) ([]models.ReferenceDetails, error) {
	preprocessor, hasPreprocessor := p.preprocessors[strings.ToLower(file.Extension())]
	parser, hasParser := p.parsers[strings.ToLower(file.ContentType())]
	if !hasPreprocessor && !hasParser {
		return nil, nil
	}

	content, err := os.ReadFile(file.AbsolutePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Alias(), err)
	}
	if hasPreprocessor {
		return preprocessor.Parse(ctx, content, file, index)
	}
	return parser.Parse(ctx, content, file, index)
}

func (p *StaticPipeline) outputContentType(file *models.FileInfo) string {
	if preprocessor, ok := p.preprocessors[strings.ToLower(file.Extension())]; ok {
		return preprocessor.OutputContentType()
	}
	return file.ContentType()
}

func (p *StaticPipeline) current() (*tables, error) {
	loaded := p.loaded.Load()
	if loaded == nil {
		return nil, ErrNotLoaded
	}
	return loaded, nil
}

// File looks up a loaded file by alias.
func (p *StaticPipeline) File(alias string) (*models.FileInfo, error) {
	loaded, err := p.current()
	if err != nil {
		return nil, err
	}
	file, ok := loaded.index.ByAlias(alias)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlias, alias)
	}
	return file, nil
}

// Files lists every loaded file in alias order.
func (p *StaticPipeline) Files() []*models.FileInfo {
	loaded, err := p.current()
	if err != nil {
		return nil
	}
	return append([]*models.FileInfo(nil), loaded.files...)
}

func (p *StaticPipeline) Graph() *models.DependencyGraph {
	loaded, err := p.current()
	if err != nil {
		return nil
	}
	return loaded.graph
}

func (p *StaticPipeline) Prefix() string {
	return p.prefix
}
