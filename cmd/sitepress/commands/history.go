package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/sitepress/internal/eventstore"
	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Path string `arg:"" optional:"" help:"Show a single document"`
	JSON bool   `help:"Print JSON instead of a table"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	s, err := root.openSite()
	if err != nil {
		return err
	}
	defer closeSite(s)

	if s.Store == nil {
		return errors.ConfigError("history requires events.store to be configured").
			WithContext("config", root.Config).
			Build()
	}

	proj := eventstore.NewDocumentHistory(s.Store)
	if err := proj.Rebuild(context.Background()); err != nil {
		return err
	}

	docs := proj.List()
	if h.Path != "" {
		doc, ok := proj.Get(h.Path)
		if !ok {
			return errors.NotFoundError(fmt.Sprintf("no history for %q", h.Path)).Build()
		}
		docs = []eventstore.DocumentSummary{doc}
	}

	if h.JSON {
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}
	return printHistory(g, docs)
}

func printHistory(g *Global, docs []eventstore.DocumentSummary) error {
	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PATH\tLAYOUT\tCREATED\tPUBLISHED\tWRITES")
	for _, d := range docs {
		published := "-"
		if d.PublishedAt != nil {
			published = d.PublishedAt.Format("2006-01-02 15:04:05")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			d.Path, d.Layout, d.CreatedAt.Format("2006-01-02 15:04:05"), published, d.Writes)
	}
	return tw.Flush()
}
