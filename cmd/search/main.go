// Command search indexes a directory of documents and starts the
// interactive query prompt.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/docsearch-labs/docsearch/internal/analyzer"
	"github.com/docsearch-labs/docsearch/internal/console"
	"github.com/docsearch-labs/docsearch/internal/engine"
	"github.com/docsearch-labs/docsearch/internal/ingest"
	"github.com/docsearch-labs/docsearch/internal/persist"
	"github.com/docsearch-labs/docsearch/pkg/config"
	"github.com/docsearch-labs/docsearch/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	dir := flag.String("dir", "", "directory of documents to index before starting")
	exts := flag.String("ext", "", "comma-separated file extensions to ingest (overrides config)")
	stopwordsPath := flag.String("stopwords", "", "stopword file, one word per line (overrides config)")
	indexFile := flag.String("index", "", "index snapshot file to load on start (overrides config)")
	save := flag.Bool("save", false, "save the index snapshot on exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("config error: %v", err)
	}
	if *stopwordsPath != "" {
		cfg.Engine.StopwordsFile = *stopwordsPath
	}
	if *indexFile != "" {
		cfg.Engine.IndexFile = *indexFile
	}
	if *exts != "" {
		cfg.Ingest.Extensions = strings.Split(*exts, ",")
	}

	// Interactive output goes to stdout; keep log noise on stderr-level warn.
	logger.Setup("warn", "text")

	var an *analyzer.Analyzer
	if cfg.Engine.StopwordsFile != "" {
		stopwords, err := analyzer.LoadStopwords(cfg.Engine.StopwordsFile)
		if err != nil {
			fatal("loading stopwords: %v", err)
		}
		an = analyzer.New(stopwords)
	} else {
		an = analyzer.New(nil)
	}
	eng := engine.New(an)

	if cfg.Engine.IndexFile != "" && persist.Exists(cfg.Engine.IndexFile) {
		if err := eng.Load(cfg.Engine.IndexFile); err != nil {
			fatal("loading index snapshot: %v", err)
		}
		stats := eng.Stats()
		fmt.Printf("Loaded index snapshot: %d documents, %d terms.\n", stats.TotalDocuments, stats.TotalTerms)
	}

	if *dir != "" {
		loader := ingest.NewLoader(eng, cfg.Ingest.Extensions)
		report, err := loader.LoadDirectory(*dir)
		if err != nil {
			fatal("indexing %s: %v", *dir, err)
		}
		fmt.Printf("Indexed %d file(s) from %s", report.Indexed, *dir)
		if report.Failed > 0 {
			fmt.Printf(" (%d failed)", report.Failed)
		}
		fmt.Println(".")
	}

	if eng.Stats().TotalDocuments == 0 {
		fmt.Println("Warning: the index is empty. Use -dir to load documents.")
	}

	c := console.New(eng, os.Stdin, os.Stdout, cfg.Engine.SnippetWindow)
	if err := c.Run(); err != nil {
		fatal("console error: %v", err)
	}

	if *save {
		if cfg.Engine.IndexFile == "" {
			fatal("-save requires an index file (set -index or engine.indexFile)")
		}
		if err := eng.Save(cfg.Engine.IndexFile); err != nil {
			fatal("saving index snapshot: %v", err)
		}
		fmt.Printf("Index snapshot saved to %s.\n", cfg.Engine.IndexFile)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
