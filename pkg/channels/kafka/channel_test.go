package kafka

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
)

func TestBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, Brokers(nil))
	assert.Equal(t, []string{"local:9092"}, Brokers([]string{" local:9092 "}))
}

func TestCreateChannel_NoBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")

	pub, sub, err := CreateChannel(watermill.NopLogger{}, "genflow", nil)
	assert.ErrorIs(t, err, ErrNoBrokers)
	assert.Nil(t, pub)
	assert.Nil(t, sub)
}
