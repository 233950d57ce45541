package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/store"
	"git.home.luguber.info/inful/kaizen/internal/syncclient"
)

// RemoteCmd manages the persisted sync settings.
type RemoteCmd struct {
	Show   RemoteShowCmd   `cmd:"" default:"1" help:"Show the remote settings"`
	SetURL RemoteSetURLCmd `cmd:"" name:"set-url" help:"Set the server URL"`
	SetKey RemoteSetKeyCmd `cmd:"" name:"set-key" help:"Set the API key"`
}

type RemoteShowCmd struct{}

func (c *RemoteShowCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	rc, err := remoteConfig(ctx, g, root)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Server URL: %s\n", orDash(rc.URL))
	fmt.Fprintf(g.Out, "API key:    %s\n", orDash(maskKey(rc.APIKey)))
	return nil
}

type RemoteSetURLCmd struct {
	URL string `arg:"" help:"Server base URL"`
}

func (c *RemoteSetURLCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.SetRemoteURL(ctx, c.URL); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Server URL saved")
	return nil
}

type RemoteSetKeyCmd struct {
	Key string `arg:"" help:"API key"`
}

func (c *RemoteSetKeyCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	if err := s.SetAPIKey(ctx, c.Key); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "API key saved")
	return nil
}

// remoteConfig prefers the values persisted in the local store and falls back
// to the client section of the config file.
func remoteConfig(ctx context.Context, g *Global, root *CLI) (store.RemoteConfig, error) {
	s, err := g.Store(ctx, root)
	if err != nil {
		return store.RemoteConfig{}, err
	}
	rc, err := s.RemoteConfig(ctx)
	if err != nil {
		return rc, err
	}
	cfg, err := g.LoadConfig(root)
	if err != nil {
		return rc, err
	}
	if rc.URL == "" {
		rc.URL = cfg.Client.ServerURL
	}
	if rc.APIKey == "" {
		rc.APIKey = cfg.Client.APIKey
	}
	return rc, nil
}

func syncClient(ctx context.Context, g *Global, root *CLI) (*syncclient.Client, error) {
	rc, err := remoteConfig(ctx, g, root)
	if err != nil {
		return nil, err
	}
	if !rc.Configured() {
		return nil, ferrors.ValidationError("Provide server URL and API key").
			WithHint("kaizen remote set-url <url> && kaizen remote set-key <key>").
			UserAction().Build()
	}
	return syncclient.New(rc.URL, rc.APIKey, syncclient.WithLogger(g.Logger))
}

func maskKey(k string) string {
	if k == "" {
		return ""
	}
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// SyncCmd transfers the document to and from the server.
type SyncCmd struct {
	Push SyncPushCmd `cmd:"" help:"Overwrite the server copy with the local document"`
	Pull SyncPullCmd `cmd:"" help:"Replace the local document with the server copy"`
}

type SyncPushCmd struct{}

func (c *SyncPushCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	client, err := syncClient(ctx, g, root)
	if err != nil {
		return err
	}
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	data, err := s.Export()
	if err != nil {
		return err
	}
	ack, err := client.Push(ctx, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Out, "Saved to server (%s)\n", formatTime(ack.SavedAt))
	return nil
}

type SyncPullCmd struct{}

func (c *SyncPullCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	client, err := syncClient(ctx, g, root)
	if err != nil {
		return err
	}
	s, err := g.Store(ctx, root)
	if err != nil {
		return err
	}
	data, err := client.Pull(ctx)
	if errors.Is(err, syncclient.ErrRemoteEmpty) {
		return ferrors.NotFoundError("server has no saved state").
			WithCause(err).
			WithHint("run 'kaizen sync push' first").Build()
	}
	if err != nil {
		return err
	}
	if _, err := s.Import(ctx, data); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Loaded from server")
	return nil
}

// WebhookCmd sends sample webhook payloads.
type WebhookCmd struct {
	Test WebhookTestCmd `cmd:"" help:"Post a sample payload to the server"`
}

type WebhookTestCmd struct {
	Kind string `arg:"" help:"Sample kind (twilio, wa, vapi, webhook, ghl)"`
}

func (c *WebhookTestCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	client, err := syncClient(ctx, g, root)
	if err != nil {
		return err
	}
	if err := client.SendWebhookTest(ctx, c.Kind); err != nil {
		return err
	}
	fmt.Fprintln(g.Out, "Webhook test sent")
	return nil
}
