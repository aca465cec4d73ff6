package webhook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/voicegw/internal/log"
	"github.com/mattjoyce/voicegw/internal/remote"
)

// Registrar ensures the operation.complete subscription exists on the
// remote side. It runs once at startup and is safe to run on every start:
// uniqueness is keyed on (owner, event type, URL).
type Registrar struct {
	client remote.Client
	secret string
	logger *slog.Logger
}

// NewRegistrar creates a Registrar bound to the shared webhook secret.
func NewRegistrar(client remote.Client, secret string) *Registrar {
	return &Registrar{
		client: client,
		secret: secret,
		logger: log.WithComponent("registrar"),
	}
}

// EnsureWebhook lists enabled subscriptions for operation.complete and
// returns the one matching url if present. Otherwise it creates a new
// subscription bound to the shared secret. List-then-create keeps repeated
// startups from piling up duplicate registrations.
func (r *Registrar) EnsureWebhook(ctx context.Context, url string) (remote.Subscription, error) {
	subs, err := r.client.ListWebhooks(ctx, remote.EventOperationComplete)
	if err != nil {
		return remote.Subscription{}, fmt.Errorf("list webhooks: %w", err)
	}

	for _, sub := range subs {
		if sub.URL == url {
			r.logger.Info("webhook already registered",
				"url", url, "subscription_id", sub.ID)
			return sub, nil
		}
	}

	created, err := r.client.CreateWebhook(ctx, remote.Subscription{
		URL:     url,
		Event:   remote.EventOperationComplete,
		Enabled: true,
		Secret:  r.secret,
	})
	if err != nil {
		return remote.Subscription{}, fmt.Errorf("create webhook: %w", err)
	}

	r.logger.Info("webhook registered", "url", url, "subscription_id", created.ID)
	return created, nil
}
