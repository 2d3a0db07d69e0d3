package notify

import (
	"context"
	"encoding/json"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/gewnthar/cragbook/config"
	"github.com/gewnthar/cragbook/models"
)

func pstestOptions(srv *pstest.Server) []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

func TestPubSubNotifierPublishesEvents(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project", pstestOptions(srv)...)
	require.NoError(t, err)
	defer client.Close()

	topic, err := client.CreateTopic(ctx, "route-sync")
	require.NoError(t, err)
	defer topic.Stop()

	n, err := NewPubSubNotifier(topic)
	require.NoError(t, err)

	require.NoError(t, n.SyncSummary(ctx, testSummary))
	require.NoError(t, n.SyncSkipped(ctx, SyncSkipped{RunID: "run-2", Trigger: models.TriggerScheduled, WouldArchive: 14, Limit: 10}))

	messages := srv.Messages()
	require.Len(t, messages, 2)

	byEvent := map[string]*pstest.Message{}
	for _, m := range messages {
		byEvent[m.Attributes["event"]] = m
	}

	summary := byEvent[EventSyncSummary]
	require.NotNil(t, summary)
	assert.Equal(t, "run-1", summary.Attributes["runId"])
	var gotSummary SyncSummary
	require.NoError(t, json.Unmarshal(summary.Data, &gotSummary))
	assert.Len(t, gotSummary.AddedRoutes, 2)
	assert.Equal(t, 3, gotSummary.Archived)

	skipped := byEvent[EventSyncSkipped]
	require.NotNil(t, skipped)
	var gotSkipped SyncSkipped
	require.NoError(t, json.Unmarshal(skipped.Data, &gotSkipped))
	assert.Equal(t, 14, gotSkipped.WouldArchive)
}

func TestNewPubSubNotifierRequiresTopic(t *testing.T) {
	_, err := NewPubSubNotifier(nil)
	assert.Error(t, err)
}

func TestFromConfigWithPubSub(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	admin, err := pubsub.NewClient(ctx, "test-project", pstestOptions(srv)...)
	require.NoError(t, err)
	defer admin.Close()
	_, err = admin.CreateTopic(ctx, "route-sync")
	require.NoError(t, err)

	n, closeFn, err := FromConfig(ctx, config.NotifyConfig{
		PubSubProject: "test-project",
		PubSubTopic:   "route-sync",
	}, pstestOptions(srv)...)
	require.NoError(t, err)

	require.NoError(t, n.SyncSkipped(ctx, SyncSkipped{RunID: "run-3", WouldArchive: 11, Limit: 10}))
	require.NoError(t, closeFn())

	messages := srv.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, EventSyncSkipped, messages[0].Attributes["event"])
}
