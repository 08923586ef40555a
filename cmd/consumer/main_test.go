package main

import (
	"testing"

	"github.com/samber/do"
	"github.com/serroba/url-mapper/internal/audit"
	"github.com/serroba/url-mapper/internal/container"
	"github.com/serroba/url-mapper/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPackages_BuildsAuditConsumers(t *testing.T) {
	injector := do.New()
	registerPackages(injector, &container.Options{RedisAddr: "localhost:0", LogFormat: container.LogFormatJSON})
	t.Cleanup(func() { _ = injector.Shutdown() })

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		audit.TopicMappingCreated,
		audit.TopicMappingUpdated,
		audit.TopicMappingDeleted,
		audit.TopicMappingsPurged,
	}, group.Topics())
}
