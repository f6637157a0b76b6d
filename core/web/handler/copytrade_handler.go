package handler

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/core/reputation"
	"github.com/whalesx/solana_copy_engine/core/rpcpool"
	"github.com/whalesx/solana_copy_engine/core/tradecfg"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

var (
	cfgResolver  *tradecfg.Resolver
	cfgStore     *tradecfg.Store
	nodeSelector *rpcpool.Selector
	repScorer    *reputation.Scorer
)

// Setup wires the handler package to the engine components. Call once before
// the router starts.
func Setup(resolver *tradecfg.Resolver, store *tradecfg.Store, selector *rpcpool.Selector, scorer *reputation.Scorer) {
	cfgResolver = resolver
	cfgStore = store
	nodeSelector = selector
	repScorer = scorer
}

func PrintStack() string {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)
	return string(buf[:n])
}

func SaveConfigHandler(c *gin.Context) {
	r := &Response{
		Code:    http.StatusOK,
		Message: "success",
	}
	defer func(r *Response) {
		err := recover()
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Stack": PrintStack()}).Error("SaveConfigHandler panic")
			c.JSON(http.StatusInternalServerError, r)
		} else {
			c.JSON(http.StatusOK, r)
		}
	}(r)

	var inp model.CopyTradeConfig
	err := c.ShouldBind(&inp)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("SaveConfigHandler parse parameter failed")

		r.Code = http.StatusBadRequest
		r.Message = err.Error()
		return
	}

	err = cfgResolver.SaveConfig(c.Request.Context(), &inp)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Data": inp, "ErrMsg": err}).Error("SaveConfigHandler save config failed")

		r.Code = http.StatusBadRequest
		r.Message = err.Error()
		return
	}

	r.Data = inp
}

func GetConfigHandler(c *gin.Context) {
	r := &Response{
		Code:    http.StatusOK,
		Message: "success",
	}

	wallet := c.Param("wallet")

	cfg, err := cfgStore.GetByWallet(c.Request.Context(), wallet)
	if err == tradecfg.ErrConfigNotFound {
		r.Code = http.StatusNotFound
		r.Message = err.Error()
		c.JSON(http.StatusOK, r)
		return
	} else if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Wallet": wallet, "ErrMsg": err}).Error("GetConfigHandler query config failed")

		r.Code = http.StatusInternalServerError
		r.Message = err.Error()
		c.JSON(http.StatusOK, r)
		return
	}

	r.Data = cfg
	c.JSON(http.StatusOK, r)
}

func ListConfigsHandler(c *gin.Context) {
	r := &Response{
		Code:    http.StatusOK,
		Message: "success",
	}

	configs, err := cfgStore.ListAll(c.Request.Context())
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("ListConfigsHandler list configs failed")

		r.Code = http.StatusInternalServerError
		r.Message = err.Error()
		c.JSON(http.StatusOK, r)
		return
	}

	r.Data = configs
	c.JSON(http.StatusOK, r)
}

func GetHistoryHandler(c *gin.Context) {
	r := &Response{
		Code:    http.StatusOK,
		Message: "success",
	}

	wallet := c.Param("wallet")

	records, err := cfgStore.HistoryByWallet(c.Request.Context(), wallet, 100)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Wallet": wallet, "ErrMsg": err}).Error("GetHistoryHandler query history failed")

		r.Code = http.StatusInternalServerError
		r.Message = err.Error()
		c.JSON(http.StatusOK, r)
		return
	}

	r.Data = records
	c.JSON(http.StatusOK, r)
}
