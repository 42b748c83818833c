package events

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/store_manager/internal/config"
)

func TestEmit_RecordsEvent(t *testing.T) {
	rec := &Recorder{}
	Emit(context.Background(), rec, TopicProducts, "7", ProductChanged{Type: TypeProductCreated, ProductID: 7, Name: "table"})

	got := rec.ByTopic(TopicProducts)
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].Key)
	ev, ok := got[0].Event.(ProductChanged)
	require.True(t, ok)
	assert.Equal(t, TypeProductCreated, ev.Type)
}

func TestEmit_SwallowsPublishError(t *testing.T) {
	rec := &Recorder{Err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), rec, TopicSales, "1", SaleCreated{Type: TypeSaleCreated})
	})
	assert.Empty(t, rec.Events())
}

func TestEmit_IgnoresCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pub := &ctxCheckingPublisher{}
	Emit(ctx, pub, TopicSales, "1", SaleCreated{Type: TypeSaleCreated})
	assert.NoError(t, pub.seen)
}

func TestEmit_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() { Emit(context.Background(), nil, TopicSales, "1", nil) })
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), TopicSales, "1", struct{}{}))
}

type ctxCheckingPublisher struct{ seen error }

func (p *ctxCheckingPublisher) Publish(ctx context.Context, _, _ string, _ any) error {
	p.seen = ctx.Err()
	return nil
}

// Requires a reachable broker, e.g. KAFKA_TEST_BROKERS=kafka:9092.
func TestKafkaProducer_RoundTrip(t *testing.T) {
	brokers := config.CSV(os.Getenv("KAFKA_TEST_BROKERS"))
	if len(brokers) == 0 {
		t.Skip("KAFKA_TEST_BROKERS is required for this test")
	}

	topic := "sale_events_test"
	ensureTopic(t, brokers[0], topic)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	conn, err := kafka.DialLeader(ctx, "tcp", brokers[0], topic, 0)
	require.NoError(t, err)
	end, err := conn.ReadLastOffset()
	require.NoError(t, err)
	_ = conn.Close()

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   time.Second,
	})
	defer r.Close()
	require.NoError(t, r.SetOffset(end))

	p := NewKafkaProducer(brokers)
	defer p.Close()
	require.NoError(t, p.Publish(ctx, topic, "12", SaleCreated{Type: TypeSaleCreated, SaleID: 12, Items: 3, Total: 300}))

	m, err := r.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12", string(m.Key))

	var event map[string]any
	require.NoError(t, json.Unmarshal(m.Value, &event))
	assert.Equal(t, TypeSaleCreated, event["type"])
	assert.EqualValues(t, 12, event["saleID"])
	assert.EqualValues(t, 300, event["total"])
}

func ensureTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafka.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	admin, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer admin.Close()

	err = admin.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		require.NoError(t, err)
	}
}
