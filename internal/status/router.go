package status

import (
	"errors"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luma/auctioneer/protocol"
	"github.com/luma/auctioneer/storage"
)

type auctionJSON struct {
	AID    string `json:"aid"`
	Active bool   `json:"active"`
}

type bidJSON struct {
	Bidder string    `json:"bidder"`
	Value  int       `json:"value"`
	Time   time.Time `json:"time"`
}

type recordJSON struct {
	AID        string    `json:"aid"`
	Host       string    `json:"host"`
	Name       string    `json:"name"`
	AssetName  string    `json:"assetName"`
	StartValue int       `json:"startValue"`
	TimeActive int       `json:"timeActive"`
	Start      time.Time `json:"start"`
	Active     bool      `json:"active"`
	End        time.Time `json:"end"`
	Bids       []bidJSON `json:"bids"`
}

// NewRouter serves a read only view of store for operators.
func NewRouter(store storage.Store, debugHTTP bool, log *zap.Logger) *gin.Engine {
	r := setupRouter(debugHTTP, log)

	// Ping test
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.GET("/auctions", func(c *gin.Context) {
		summaries, err := store.ListAll(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}

		auctions := make([]auctionJSON, 0, len(summaries))
		for _, s := range summaries {
			auctions = append(auctions, auctionJSON{AID: s.AID, Active: s.Active})
		}

		c.JSON(http.StatusOK, auctions)
	})

	r.GET("/auctions/:aid", func(c *gin.Context) {
		aid := c.Param("aid")
		if !protocol.ValidAID(aid) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid auction id"})
			return
		}

		a, err := store.GetRecord(c.Request.Context(), aid)
		if errors.Is(err, storage.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}

		rec := recordJSON{
			AID:        a.AID,
			Host:       a.Host,
			Name:       a.Name,
			AssetName:  a.AssetName,
			StartValue: a.StartValue,
			TimeActive: a.TimeActive,
			Start:      a.Start,
			Active:     a.Active,
			End:        a.End,
			Bids:       make([]bidJSON, 0, len(a.Bids)),
		}
		for _, b := range a.Bids {
			rec.Bids = append(rec.Bids, bidJSON{Bidder: b.Bidder, Value: b.Value, Time: b.Time})
		}

		c.JSON(http.StatusOK, rec)
	})

	return r
}

func setupRouter(debugHTTP bool, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debugHTTP {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - RFC3339 with UTC time format.
	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	return r
}
