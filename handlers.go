package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (ws *WebServer) getWatchlist(c *gin.Context) {
	userID := c.GetUint("userID")

	entries := ws.database.ListWatchlist(userID)
	quotes := ws.enricher.Enrich(entries)

	c.JSON(http.StatusOK, WatchlistResponse{
		Count:   len(quotes),
		Entries: quotes,
	})
}

func (ws *WebServer) addWatchlistEntry(c *gin.Context) {
	userID := c.GetUint("userID")

	var req AddEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, OperationResponse{Success: false, Message: "Symbol and company are required"})
		return
	}

	symbol := strings.ToUpper(req.Symbol)
	if !isValidSymbol(symbol) {
		c.JSON(http.StatusBadRequest, OperationResponse{Success: false, Message: "Invalid stock symbol"})
		return
	}

	if err := ws.database.AddWatchlistEntry(userID, symbol, req.Company); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusConflict, OperationResponse{
				Success: false,
				Message: fmt.Sprintf("%s is already in your watchlist", symbol),
				Symbol:  symbol,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, OperationResponse{Success: false, Message: "Failed to add stock to watchlist"})
		return
	}

	c.JSON(http.StatusCreated, OperationResponse{
		Success: true,
		Message: "Stock added to watchlist",
		Symbol:  symbol,
	})
}

func (ws *WebServer) removeWatchlistEntry(c *gin.Context) {
	userID := c.GetUint("userID")

	symbol := strings.ToUpper(c.Param("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, OperationResponse{Success: false, Message: "Symbol is required"})
		return
	}

	if err := ws.database.RemoveWatchlistEntry(userID, symbol); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, OperationResponse{
				Success: false,
				Message: fmt.Sprintf("%s is not in your watchlist", symbol),
				Symbol:  symbol,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, OperationResponse{Success: false, Message: "Failed to remove stock from watchlist"})
		return
	}

	c.JSON(http.StatusOK, OperationResponse{
		Success: true,
		Message: "Stock removed from watchlist",
		Symbol:  symbol,
	})
}

func (ws *WebServer) getSnapshotHistory(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Symbol is required"})
		return
	}

	days := 30
	if daysQuery := c.Query("days"); daysQuery != "" {
		if d, err := parseDays(daysQuery); err == nil && d > 0 {
			days = d
		}
	}

	snapshots, err := ws.database.GetDailySnapshots(symbol, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"days":   days,
		"count":  len(snapshots),
		"data":   snapshots,
	})
}

func (ws *WebServer) dashboard(c *gin.Context) {
	userID := c.GetUint("userID")

	entries := ws.database.ListWatchlist(userID)
	quotes := ws.enricher.Enrich(entries)

	session, _ := ws.store.Get(c.Request, sessionName)
	email, _ := session.Values["email"].(string)

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Email":   email,
		"Entries": quotes,
	})
}

func (ws *WebServer) home(c *gin.Context) {
	if ws.currentUserID(c) != 0 {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	c.Redirect(http.StatusSeeOther, "/login")
}

func isValidSymbol(symbol string) bool {
	if len(symbol) < 1 || len(symbol) > 5 {
		return false
	}
	for _, char := range symbol {
		if !((char >= 'A' && char <= 'Z') || (char >= 'a' && char <= 'z')) {
			return false
		}
	}
	return true
}

func parseDays(s string) (int, error) {
	var days int
	_, err := fmt.Sscanf(s, "%d", &days)
	return days, err
}
