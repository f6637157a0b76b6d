package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/config"
	"github.com/whalesx/solana_copy_engine/core/alikafka"
	"github.com/whalesx/solana_copy_engine/core/db"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

// Recorder persists terminal trade records and fans them out on the history
// topic for downstream alerting.
type Recorder struct{}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Record(ctx context.Context, rec *model.TradeHistoryRecord) error {
	_, err := db.GetDB().NewInsert().Model(rec).Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert trade history failed, %v", err)
	}

	err = sendHistoryMsg(rec)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Data": rec, "ErrMsg": err}).Error("Recorder send history message failed")
	}

	return nil
}

func sendHistoryMsg(rec *model.TradeHistoryRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	cfg := config.GetKafkaConfig()
	err = alikafka.GetKafkaHistoryInst().Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &cfg.HistoryTopic, Partition: kafka.PartitionAny},
		Key:            []byte(rec.WalletAddress),
		Value:          []byte(data),
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	alikafka.GetKafkaHistoryInst().Flush(1000)

	return nil
}
