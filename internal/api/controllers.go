package api

import (
	"log"
	"net/http"
	"strings"

	"stockparty/internal/events"
	"stockparty/internal/game"
	"stockparty/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type messageRequest struct {
	Text string `json:"text"`
	User string `json:"user"`
}

type giftRequest struct {
	GiftValue float64 `json:"giftValue"`
	User      string  `json:"user"`
	GiftName  string  `json:"giftName"`
}

type listQuery struct {
	Limit int `form:"limit"`
}

func (q *listQuery) normalize() {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"code":  code,
		"error": msg,
	})
}

// postMessage parses a chat message for a trade command. Plain chat is
// re-broadcast; a rejected trade is deliberately dropped without an event.
func (s *Server) postMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No text provided"})
		return
	}

	cmd, isTrade := game.ParseCommand(req.Text, s.Cfg.DefaultTradeUSD)
	if !isTrade {
		s.Bus.Publish(events.EventChat, game.ChatEvent{User: req.User, Text: req.Text})
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent"})
		return
	}

	executed := false
	switch cmd.Action {
	case game.ActionBuy:
		executed = s.Game.Buy(cmd.Amount)
	case game.ActionSell:
		executed = s.Game.Sell(cmd.Amount)
	}
	if !executed {
		// Insufficient funds or shares: no event fires for the viewers.
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent"})
		return
	}

	price := s.Game.Price()
	s.Bus.Publish(events.EventTrade, game.TradeEvent{
		User:   req.User,
		Action: cmd.Action,
		Price:  price,
		Amount: cmd.Amount,
	})
	s.Metrics.IncrementTrades()
	s.recordTrade(c, req.User, cmd.Action, cmd.Amount, price)

	c.JSON(http.StatusOK, gin.H{"success": true, "action": cmd.Action, "amount": cmd.Amount})
}

// postGift credits a gift 1:1 to cash. Unknown gifts without a value are
// rejected without touching state.
func (s *Server) postGift(c *gin.Context) {
	var req giftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid request payload")
		return
	}

	value := req.GiftValue
	if value <= 0 {
		if v, ok := s.Cfg.GiftCatalog[req.GiftName]; ok {
			value = v
		}
	}
	if value <= 0 {
		respondError(c, http.StatusBadRequest, "INVALID_GIFT", "gift has no value")
		return
	}

	cashAdded := s.Game.Gift(value)
	s.Bus.Publish(events.EventGift, game.GiftEvent{
		User:      req.User,
		GiftName:  req.GiftName,
		CashAdded: cashAdded,
	})
	s.Metrics.IncrementGifts()
	if s.DB != nil {
		if err := s.DB.InsertGift(c.Request.Context(), db.Gift{
			ID:        uuid.NewString(),
			User:      req.User,
			GiftName:  req.GiftName,
			CashAdded: cashAdded,
		}); err != nil {
			log.Printf("[API] record gift: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cashAdded": cashAdded})
}

func (s *Server) recordTrade(c *gin.Context, user, action string, amount, price float64) {
	if s.DB == nil {
		return
	}
	if err := s.DB.InsertTrade(c.Request.Context(), db.Trade{
		ID:     uuid.NewString(),
		User:   user,
		Action: action,
		Amount: amount,
		Price:  price,
	}); err != nil {
		log.Printf("[API] record trade: %v", err)
	}
}

// getState serves the snapshot a freshly loaded overlay needs before the
// first broadcast arrives.
func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.Game.Snapshot())
}

// getConfig exposes display settings the client renderer needs.
func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stockSymbol":        s.Cfg.StockSymbol,
		"stockName":          s.Cfg.StockName,
		"milestoneOverlayMs": s.Cfg.MilestoneOverlay.Milliseconds(),
		"rewardOverlayMs":    s.Cfg.RewardOverlay.Milliseconds(),
	})
}

func (s *Server) getLeaderboard(c *gin.Context) {
	if s.DB == nil {
		c.JSON(http.StatusOK, gin.H{"leaderboard": []db.LeaderboardRow{}})
		return
	}
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	q.normalize()

	rows, err := s.DB.Leaderboard(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if rows == nil {
		rows = []db.LeaderboardRow{}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}

func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Metrics.GetSnapshot())
}

// adminReset restores the opening position.
func (s *Server) adminReset(c *gin.Context) {
	s.Game.Reset()
	snap := s.Game.Snapshot()
	s.Bus.Publish(events.EventStateUpdate, snap)
	c.JSON(http.StatusOK, gin.H{"success": true, "state": snap})
}

func (s *Server) adminTrades(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	q.normalize()

	trades, err := s.DB.ListTrades(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if trades == nil {
		trades = []db.Trade{}
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

func (s *Server) adminGifts(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)
	q.normalize()

	gifts, err := s.DB.ListGifts(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	if gifts == nil {
		gifts = []db.Gift{}
	}
	c.JSON(http.StatusOK, gin.H{"gifts": gifts})
}
