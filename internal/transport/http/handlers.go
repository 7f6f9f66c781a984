package httpapi

import (
	"errors"
	"net/http"

	"tradebattle/internal/decision"
	"tradebattle/internal/store"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	battle   BattleService
	sessions store.Reader
}

func (h *handlers) handleStart(c *gin.Context) {
	if err := h.battle.StartRound(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (h *handlers) handleTrade(c *gin.Context) {
	var req struct {
		Kind   string `json:"kind" binding:"required"`
		Symbol string `json:"symbol" binding:"required"`
		Shares int64  `json:"shares" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.battle.SubmitTrade(decision.TradeRequest{
		Kind:   decision.ActionKind(req.Kind),
		Symbol: req.Symbol,
		Shares: req.Shares,
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *handlers) handleState(c *gin.Context) {
	view, err := h.battle.State()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) handleResults(c *gin.Context) {
	if h.sessions == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "session store is not configured"})
		return
	}
	records, err := h.sessions.ListSessions(c.Request.Context(), 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": records})
}

func (h *handlers) handleResultDetail(c *gin.Context) {
	if h.sessions == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "session store is not configured"})
		return
	}
	record, err := h.sessions.GetSession(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}
