package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/eventstore"
	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/webhooklog"
)

// WebhooksCmd inspects what the server recorded.
type WebhooksCmd struct {
	Tail WebhooksTailCmd `cmd:"" default:"1" help:"Show the last entries of the webhook log"`
	List WebhooksListCmd `cmd:"" help:"Query webhook events in the SQLite event store"`
}

type WebhooksTailCmd struct {
	Log string `type:"path" help:"Webhook log file (defaults to the configured one)"`
	N   int    `short:"n" default:"20" help:"Number of entries"`
}

func (c *WebhooksTailCmd) Run(g *Global, root *CLI) error {
	path := c.Log
	if path == "" {
		cfg, err := g.LoadConfig(root)
		if err != nil {
			return err
		}
		path = cfg.WebhookLogPath()
	}
	entries, err := webhooklog.Tail(path, c.N)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(g.Out, "No webhooks received.")
		return nil
	}
	tw := table(g.Out)
	fmt.Fprintln(tw, "TIME\tSOURCE\tBODY")
	for _, e := range entries {
		body, _ := json.Marshal(e.Body)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Timestamp.UTC().Format(time.RFC3339), e.SourceName, oneLine(string(body), 100))
	}
	return tw.Flush()
}

type WebhooksListCmd struct {
	DB     string        `name:"db" type:"path" help:"Event store database (defaults to webhooks.sqlite_path)"`
	Source string        `help:"Only events from this source"`
	Since  time.Duration `help:"Only events newer than this"`
	N      int           `short:"n" default:"50" help:"Maximum number of events"`
}

func (c *WebhooksListCmd) Run(g *Global, root *CLI) error {
	path := c.DB
	if path == "" {
		cfg, err := g.LoadConfig(root)
		if err != nil {
			return err
		}
		path = cfg.Webhooks.SQLitePath
	}
	if path == "" {
		return ferrors.ConfigError("no event store configured").
			WithHint("set webhooks.sqlite_path or pass --db").
			Build()
	}
	es, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer func() { _ = es.Close() }()

	filter := eventstore.Filter{Source: c.Source, Limit: c.N}
	if c.Since > 0 {
		filter.Since = time.Now().Add(-c.Since)
	}
	events, err := es.Query(context.Background(), filter)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(g.Out, "No events.")
		return nil
	}
	tw := table(g.Out)
	fmt.Fprintln(tw, "ID\tTIME\tSOURCE\tPAYLOAD")
	for _, e := range events {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, e.Timestamp.Format(time.RFC3339), e.Source, oneLine(string(e.Payload), 100))
	}
	return tw.Flush()
}
