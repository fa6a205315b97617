//go:build integration

package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"

	"spacetraveling/internal/domain"
	"spacetraveling/internal/testutil"
)

type RabbitMQIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
	logger    *slog.Logger
}

func (s *RabbitMQIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *RabbitMQIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestRabbitMQIntegrationSuite(t *testing.T) {
	suite.Run(t, new(RabbitMQIntegrationSuite))
}

func (s *RabbitMQIntegrationSuite) TestPublisher_Connection() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-pages",
		RoutingKey: "test-pages-key",
		QueueName:  "test-pages-queue",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.NoError(err)
	s.NotNil(pub)

	err = pub.Close()
	s.NoError(err)
}

func samplePost() *domain.PostDetail {
	return &domain.PostDetail{
		FirstPublicationDate: testutil.Ptr("2021-03-25T19:25:28+0000"),
		Data: domain.PostDetailData{
			Title:  "Como utilizar Hooks",
			Banner: domain.Banner{URL: "https://images.prismic.io/banner.png"},
			Author: "Joseph Oliveira",
			Content: []domain.ContentSection{
				{
					Heading: "Proin et varius",
					Body: []domain.RichTextBlock{
						{
							Type:  "paragraph",
							Text:  "Nullam dolor sapien",
							Spans: []domain.Span{{Start: 0, End: 6, Type: "strong"}},
						},
					},
				},
			},
		},
	}
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishBuild() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-build",
		RoutingKey: "test-routing-key-build",
		QueueName:  "test-queue-build",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	err = pub.Publish(s.ctx, "como-utilizar-hooks", samplePost(), true)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	var received PageMessage
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)
	s.Equal(ActionBuild, received.Action)
	s.Equal("como-utilizar-hooks", received.Slug)
	s.Equal("Como utilizar Hooks", received.Post.Data.Title)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_PublishRevalidate() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-revalidate",
		RoutingKey: "test-routing-key-revalidate",
		QueueName:  "test-queue-revalidate",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	err = pub.Publish(s.ctx, "hello", samplePost(), false)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	var received PageMessage
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)
	s.Equal(ActionRevalidate, received.Action)
	s.Equal("hello", received.Slug)
}

func (s *RabbitMQIntegrationSuite) TestPublisher_MessageFormat() {
	cfg := Config{
		URL:        s.amqpURL,
		Exchange:   "test-exchange-format",
		RoutingKey: "test-routing-key-format",
		QueueName:  "test-queue-format",
	}

	pub, err := NewRabbitMQ(cfg, s.logger)
	s.Require().NoError(err)
	defer pub.Close()

	err = pub.Publish(s.ctx, "como-utilizar-hooks", samplePost(), true)
	s.NoError(err)

	msg := s.consumeMessage(cfg)
	s.Require().NotNil(msg)

	s.Equal("application/json", msg.ContentType)
	s.Equal(uint8(amqp.Persistent), msg.DeliveryMode)

	var received PageMessage
	err = json.Unmarshal(msg.Body, &received)
	s.NoError(err)

	post := received.Post
	s.Require().NotNil(post.FirstPublicationDate)
	s.Equal("2021-03-25T19:25:28+0000", *post.FirstPublicationDate)
	s.Equal("https://images.prismic.io/banner.png", post.Data.Banner.URL)
	s.Equal("Joseph Oliveira", post.Data.Author)
	s.Require().Len(post.Data.Content, 1)
	s.Equal("Proin et varius", post.Data.Content[0].Heading)
	s.Require().Len(post.Data.Content[0].Body, 1)
	s.Equal([]domain.Span{{Start: 0, End: 6, Type: "strong"}}, post.Data.Content[0].Body[0].Spans)
	s.False(received.Timestamp.IsZero())
}

func (s *RabbitMQIntegrationSuite) consumeMessage(cfg Config) *amqp.Delivery {
	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	msgs, err := ch.Consume(cfg.QueueName, "", true, false, false, false, nil)
	s.Require().NoError(err)

	select {
	case msg := <-msgs:
		return &msg
	case <-time.After(5 * time.Second):
		s.Fail("Timeout waiting for message")
		return nil
	}
}