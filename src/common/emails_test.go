package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKafkaEmailsToSendConsumerToleratesMalformedPayloads(t *testing.T) {
	assert.NotPanics(t, func() {
		KafkaEmailsToSendConsumer("not json at all")
	})
	assert.NotPanics(t, func() {
		KafkaEmailsToSendConsumer(`{"subject":42,"html":"yes","body":{"nested":true},"to":"nobody"}`)
	})
	assert.NotPanics(t, func() {
		KafkaEmailsToSendConsumer(`{}`)
	})
}
