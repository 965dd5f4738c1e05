package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	cms "github.com/goliatone/go-cms-community"
	markdowncmd "github.com/goliatone/go-cms-community/internal/commands/markdown"
	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/internal/markdown"
	"github.com/goliatone/go-cms-community/community"
)

// moduleBuilder is swapped in tests.
var moduleBuilder = func(ctx context.Context, cfg cms.Config) (*cms.Module, error) {
	return cms.New(ctx, cfg)
}

func main() {
	if err := runImport(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("markdown import: %v", err)
	}
}

func runImport(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("markdown-import", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML runtime config; use sqlite or postgres storage to keep the imported documents")
	contentDir := fs.String("content-dir", "content", "Path to the markdown content root")
	directory := fs.String("directory", ".", "Directory to import, relative to the content root")
	pattern := fs.String("pattern", "*.md", "Glob pattern applied when discovering markdown files")
	recursive := fs.Bool("recursive", true, "Descend into sub directories")
	collection := fs.String("collection", community.PostsSlug, "Target collection")
	bodyField := fs.String("body-field", "text", "Field receiving the rendered HTML")
	matchField := fs.String("match-field", "", "Front matter key used to update existing documents")
	draft := fs.Bool("draft", false, "Save every imported document as a draft")
	dryRun := fs.Bool("dry-run", false, "Preview changes without persisting content")
	safe := fs.Bool("safe", false, "Drop raw HTML found in markdown bodies")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := community.Config(community.DevUser)
	cfg.OnInit = nil
	cfg.GraphQL.Disable = true
	if *configPath != "" {
		runtime, err := cms.LoadRuntimeConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		runtime.GraphQL.Disable = true
		cfg.Config = runtime
	}
	cfg.Output = stdout

	module, err := moduleBuilder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()
	if err := module.Init(ctx); err != nil {
		return err
	}

	container := module.Container()
	importer := container.MarkdownImporter(markdown.ParseOptions{SafeMode: *safe})
	handler := markdowncmd.NewImportDirectoryHandler(importer, os.DirFS(*contentDir), logging.CommandsLogger(container.LoggerProvider()))
	cmd := markdowncmd.ImportDirectoryCommand{
		Directory:  *directory,
		Pattern:    *pattern,
		Recursive:  *recursive,
		Collection: *collection,
		BodyField:  *bodyField,
		MatchField: *matchField,
		Draft:      *draft,
		DryRun:     *dryRun,
	}
	if err := handler.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("execute import command: %w", err)
	}
	fmt.Fprintln(stdout, "markdown import command executed successfully")
	return nil
}
