package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func RankHandler(c *gin.Context) {
	r := &Response{
		Code:    http.StatusOK,
		Message: "success",
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			r.Code = http.StatusBadRequest
			r.Message = "invalid limit"
			c.JSON(http.StatusOK, r)
			return
		}
		limit = parsed
	}

	r.Data = repScorer.Rank(limit)
	c.JSON(http.StatusOK, r)
}

func ReputationHandler(c *gin.Context) {
	wallet := c.Param("wallet")

	r := &Response{
		Code:    http.StatusOK,
		Message: "success",
		Data: gin.H{
			"wallet_address": wallet,
			"reputation":     repScorer.Reputation(wallet),
		},
	}

	c.JSON(http.StatusOK, r)
}

func FollowHandler(c *gin.Context) {
	wallet := c.Param("wallet")
	repScorer.Follow(wallet)

	c.JSON(http.StatusOK, &Response{Code: http.StatusOK, Message: "success"})
}

func UnfollowHandler(c *gin.Context) {
	wallet := c.Param("wallet")
	repScorer.Unfollow(wallet)

	c.JSON(http.StatusOK, &Response{Code: http.StatusOK, Message: "success"})
}
