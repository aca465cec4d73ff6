package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/voicegw/internal/remote"
	"github.com/mattjoyce/voicegw/internal/remote/mocks"
)

const callbackURL = "https://gw.example.com/hooks/operation"

func TestEnsureWebhook_CreatesWhenAbsent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		ListWebhooks(gomock.Any(), remote.EventOperationComplete).
		Return(nil, nil)
	client.EXPECT().
		CreateWebhook(gomock.Any(), remote.Subscription{
			URL:     callbackURL,
			Event:   remote.EventOperationComplete,
			Enabled: true,
			Secret:  "shh",
		}).
		Return(remote.Subscription{ID: "sub-1", URL: callbackURL}, nil)

	r := NewRegistrar(client, "shh")
	sub, err := r.EnsureWebhook(context.Background(), callbackURL)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", sub.ID)
}

func TestEnsureWebhook_IdempotentAcrossRestarts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := remote.Subscription{ID: "sub-1", URL: callbackURL, Enabled: true}

	client := mocks.NewMockClient(ctrl)
	// First startup: nothing registered yet, one create.
	client.EXPECT().
		ListWebhooks(gomock.Any(), remote.EventOperationComplete).
		Return(nil, nil)
	client.EXPECT().
		CreateWebhook(gomock.Any(), gomock.Any()).
		Return(existing, nil)
	// Second startup: subscription found, no create.
	client.EXPECT().
		ListWebhooks(gomock.Any(), remote.EventOperationComplete).
		Return([]remote.Subscription{existing}, nil)

	r := NewRegistrar(client, "shh")

	first, err := r.EnsureWebhook(context.Background(), callbackURL)
	require.NoError(t, err)

	second, err := r.EnsureWebhook(context.Background(), callbackURL)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureWebhook_DifferentURLStillCreates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		ListWebhooks(gomock.Any(), remote.EventOperationComplete).
		Return([]remote.Subscription{{ID: "sub-0", URL: "https://old.example.com/hooks"}}, nil)
	client.EXPECT().
		CreateWebhook(gomock.Any(), gomock.Any()).
		Return(remote.Subscription{ID: "sub-2", URL: callbackURL}, nil)

	r := NewRegistrar(client, "shh")
	sub, err := r.EnsureWebhook(context.Background(), callbackURL)
	require.NoError(t, err)
	assert.Equal(t, "sub-2", sub.ID)
}

func TestEnsureWebhook_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockClient(ctrl)
	client.EXPECT().
		ListWebhooks(gomock.Any(), remote.EventOperationComplete).
		Return(nil, errors.New("unreachable"))

	r := NewRegistrar(client, "shh")
	_, err := r.EnsureWebhook(context.Background(), callbackURL)
	assert.Error(t, err)
}
