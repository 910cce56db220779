// Package console implements the interactive search prompt. It reads
// queries from an input stream, prompts for mode and result count, and
// prints ranked results with metadata and snippets.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docsearch-labs/docsearch/internal/engine"
	"github.com/docsearch-labs/docsearch/internal/searcher"
)

const defaultTopK = 5

// Console drives an interactive query loop over an engine.
type Console struct {
	engine *engine.Engine
	in     *bufio.Scanner
	out    io.Writer
	window int
	topK   int
}

// New creates a Console reading from in and writing to out.
func New(e *engine.Engine, in io.Reader, out io.Writer, snippetWindow int) *Console {
	topK := defaultTopK
	return &Console{
		engine: e,
		in:     bufio.NewScanner(in),
		out:    out,
		window: snippetWindow,
		topK:   topK,
	}
}

// Run executes the prompt loop until EOF or a quit command.
func (c *Console) Run() error {
	fmt.Fprintln(c.out, "Interactive document search. Type 'help' for commands.")
	for {
		fmt.Fprint(c.out, "\nquery> ")
		line, ok := c.readLine()
		if !ok {
			fmt.Fprintln(c.out)
			return nil
		}
		query := strings.TrimSpace(line)
		switch strings.ToLower(query) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(c.out, "Goodbye.")
			return nil
		case "help":
			c.printHelp()
			continue
		case "stats":
			c.printStats()
			continue
		}
		c.runQuery(query)
	}
}

func (c *Console) runQuery(query string) {
	mode := c.promptMode()
	topK := c.promptTopK()

	results := c.engine.Search(query, mode, topK)
	if len(results) == 0 {
		fmt.Fprintln(c.out, "No results found.")
		return
	}

	fmt.Fprintf(c.out, "Found %d result(s):\n", len(results))
	for i, res := range results {
		fmt.Fprintf(c.out, "\n%d. %s (score: %.4f)\n", i+1, res.DocID, res.Score)
		for key, value := range res.Metadata {
			fmt.Fprintf(c.out, "   %s: %v\n", key, value)
		}
		if snip := c.engine.Snippet(res.DocID, query, c.window); snip != "" {
			fmt.Fprintf(c.out, "   %s\n", snip)
		}
	}
}

// promptMode asks for the query mode. Anything other than A or P falls back
// to OR.
func (c *Console) promptMode() searcher.Mode {
	fmt.Fprint(c.out, "mode [O]r / [A]nd / [P]hrase (default O): ")
	line, ok := c.readLine()
	if !ok {
		return searcher.ModeOR
	}
	switch strings.ToUpper(strings.TrimSpace(line)) {
	case "A", "AND":
		return searcher.ModeAND
	case "P", "PHRASE":
		return searcher.ModePhrase
	default:
		return searcher.ModeOR
	}
}

// promptTopK asks how many results to show. Malformed or empty input falls
// back to the default.
func (c *Console) promptTopK() int {
	fmt.Fprintf(c.out, "number of results (default %d): ", c.topK)
	line, ok := c.readLine()
	if !ok {
		return c.topK
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return c.topK
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		fmt.Fprintf(c.out, "Not a number, using default %d.\n", c.topK)
		return c.topK
	}
	return n
}

func (c *Console) printStats() {
	stats := c.engine.Stats()
	fmt.Fprintln(c.out, "Index statistics:")
	fmt.Fprintf(c.out, "  documents: %d\n", stats.TotalDocuments)
	fmt.Fprintf(c.out, "  terms:     %d\n", stats.TotalTerms)
	fmt.Fprintf(c.out, "  avg. document length: %.2f tokens\n", stats.AverageDocumentLength)
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "  <query>      run a search (you will be asked for mode and count)")
	fmt.Fprintln(c.out, "  stats        show index statistics")
	fmt.Fprintln(c.out, "  help         show this message")
	fmt.Fprintln(c.out, "  quit         exit")
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}
