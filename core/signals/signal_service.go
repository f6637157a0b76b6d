package signals

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/config"
	"github.com/whalesx/solana_copy_engine/core/alikafka"
	"github.com/whalesx/solana_copy_engine/core/engine"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

// SignalService consumes inbound copy-trade signals and dispatches them to
// the engine. Signals for different wallets run concurrently; there is no
// cross-signal ordering guarantee.
type SignalService struct {
	engine *engine.Engine
	MaxNum int
}

func NewSignalService(eng *engine.Engine) *SignalService {
	return &SignalService{
		engine: eng,
		MaxNum: 20,
	}
}

func (serv *SignalService) Start() {
	serv.SubTradeSignals()
}

func (serv *SignalService) Close() {
	alikafka.GetKafkaSignalInst().Close()
}

func (serv *SignalService) SubTradeSignals() {
	go func() {
		cfg := config.GetKafkaConfig()
		consumer := alikafka.GetKafkaSignalInst()

		consumer.SubscribeTopics([]string{cfg.SignalTopic}, nil)

		semaphore := make(chan struct{}, serv.MaxNum)

		for {
			msg, err := consumer.ReadMessage(-1)
			if err != nil {
				logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("SubTradeSignals read kafka message failed")
				continue
			}

			rawdata := msg.Value
			var res model.TradeSignal
			err = json.Unmarshal(rawdata, &res)
			if err != nil {
				logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Data": string(rawdata)}).Error("SubTradeSignals unmarshal kafka message failed")
				continue
			}

			logger.Logrus.WithFields(logrus.Fields{"Data": res}).Info("SubTradeSignals receive kafka message success")

			semaphore <- struct{}{}
			go func(signal model.TradeSignal) {
				defer func() { <-semaphore }()

				err := serv.engine.HandleSignal(context.Background(), &signal)
				if err != nil {
					logger.Logrus.WithFields(logrus.Fields{"Data": signal, "ErrMsg": err}).Error("SubTradeSignals handle signal failed")
					return
				}

				logger.Logrus.WithFields(logrus.Fields{"Wallet": signal.SourceWallet, "Token": signal.TokenAddress}).Info("SubTradeSignals handle signal success")
			}(res)
		}
	}()
}
