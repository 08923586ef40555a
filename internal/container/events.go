package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/samber/do"
	"github.com/serroba/url-mapper/internal/audit"
	auditstore "github.com/serroba/url-mapper/internal/audit/store"
	"github.com/serroba/url-mapper/internal/messaging"
	"go.uber.org/zap"
)

const auditConsumerGroup = "audit"

// PublisherGroupPackage provides the Redis stream publisher and the typed
// audit publish functions. With events disabled nothing touches Redis.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     client.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLoggerAdapter(logger))
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (audit.Publishers, error) {
		opts := do.MustInvoke[*Options](i)
		if !opts.Events {
			return audit.DiscardPublishers(), nil
		}

		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return audit.Publishers{}, err
		}

		return audit.NewPublishers(group.Publisher()), nil
	})
}

// ConsumerGroupPackage provides the audit consumer group reading every
// mapping change topic into the logging audit store.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		client := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: auditConsumerGroup,
		}, messaging.NewZapLoggerAdapter(logger))
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		audit.RegisterConsumers(group, auditstore.NewLog(logger.Named("audit")), logger)

		return group, nil
	})
}
