package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/whalesx/solana_copy_engine/config"
	"github.com/whalesx/solana_copy_engine/core/alikafka"
	"github.com/whalesx/solana_copy_engine/core/engine"
	"github.com/whalesx/solana_copy_engine/core/executor"
	"github.com/whalesx/solana_copy_engine/core/fees"
	"github.com/whalesx/solana_copy_engine/core/portfolio"
	"github.com/whalesx/solana_copy_engine/core/redis"
	"github.com/whalesx/solana_copy_engine/core/reputation"
	"github.com/whalesx/solana_copy_engine/core/rpcpool"
	"github.com/whalesx/solana_copy_engine/core/signals"
	"github.com/whalesx/solana_copy_engine/core/swap"
	"github.com/whalesx/solana_copy_engine/core/tradecfg"
	"github.com/whalesx/solana_copy_engine/core/web"
	"github.com/whalesx/solana_copy_engine/core/web/handler"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

func main() {
	configPath := flag.String("config_path", "./", "config file")
	logicLogFile := flag.String("logic_log_file", "./log/copy_engine.log", "logic log file")
	flag.Parse()

	//init logic logger
	logger.Init(*logicLogFile)

	//set log level
	logger.SetLogLevel("debug")

	err := config.LoadConf(*configPath)
	if err != nil {
		log.Fatal("load config failed:", err)
	}

	err = redis.InitRedis()
	if err != nil {
		log.Fatal("init redis failed:", err)
	}

	alikafka.InitKafka()

	rpcCfg := config.GetRPCConfig()
	tradeCfg := config.GetTradeConfig()

	selector := rpcpool.NewSelector(rpcCfg.Endpoints, rpcpool.NewSolanaClientFactory(), config.GetProbeTimeout())
	tracker := rpcpool.NewTracker(selector, config.GetProbeInterval(), config.GetProbeTimeout())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tracker.Run(ctx)

	signer, err := executor.NewWalletSigner(tradeCfg.WalletPrivateKey)
	if err != nil {
		log.Fatal("init wallet signer failed:", err)
	}

	optimizer := fees.NewOptimizer(tradeCfg.MaxPriorityFeeMicro, tradeCfg.MaxComputeUnits)
	pipeline := executor.NewPipeline(selector, optimizer, signer, executor.NewRecorder(), executor.PipelineConfig{
		MaxRetries:     int(tradeCfg.MaxRetries),
		ConfirmTimeout: time.Duration(rpcCfg.ConfirmTimeoutSec) * time.Second,
		ConfirmPoll:    time.Duration(rpcCfg.ConfirmPollMs) * time.Millisecond,
		RPCTimeout:     time.Duration(rpcCfg.RequestTimeoutMs) * time.Millisecond,
	})

	validator := tradecfg.NewValidator(tradeCfg.MinTradeAmount, tradeCfg.MaxTradeAmount)
	store := tradecfg.NewStore()
	cache := tradecfg.NewConfigCache(time.Duration(tradeCfg.ConfigCacheTTLSec) * time.Second)
	resolver := tradecfg.NewResolver(cache, store, validator)

	scorer := reputation.NewScorer()
	riskGate := reputation.NewRiskGate()

	builder, err := swap.NewTransferBuilder(signer.PublicKey(), tradeCfg.RouteAccount)
	if err != nil {
		log.Fatal("init swap builder failed:", err)
	}

	eng := engine.NewEngine(resolver, validator, riskGate, scorer, portfolio.NewRedisProvider(), builder, pipeline)

	serv := signals.NewSignalService(eng)
	serv.Start()
	defer serv.Close()

	handler.Setup(resolver, store, selector, scorer)

	web.Run()
}
