package common

import (
	"fmt"
	"hbs/src/db"
	"hbs/src/models"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"gorm.io/gorm"
)

// RunKafkaConsumer subscribes to a topic and feeds every message body to
// handler. Blocks until the broker reports a fatal error, so callers run
// it on its own goroutine.
func RunKafkaConsumer(groupId string, topic string, handler func(spayload string)) {
	master, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"group.id":          groupId,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	})
	if err != nil {
		log.Printf("Error creating consumer for [%s]: %s\n", topic, err.Error())
		return
	}
	if err := master.SubscribeTopics([]string{topic}, nil); err != nil {
		log.Printf("Error subscribing to [%s]: %s\n", topic, err.Error())
		return
	}
	log.Printf("[%s]: waiting for messages...\n", topic)
	run := true
	for run {
		ev := master.Poll(100)
		switch e := ev.(type) {
		case *kafka.Message:
			handler(string(e.Value))
		case kafka.Error:
			fmt.Fprintf(os.Stderr, "%% Error: %v\n", e)
			run = false
		default:
		}
	}
	master.Close()
}

func markJobTaskDone(payloadId string) {
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where(&models.JobTask{PayloadID: payloadId}).Updates(&models.JobTask{Status: "done"}).Error
		if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Printf("Error updating job status: %s\n", err.Error())
	}
}
