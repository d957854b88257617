package oracle

import (
	"context"
	"fmt"
	"time"

	"veloan/core"
	"veloan/pkg/resthttp"

	"github.com/bluele/gcache"
	"github.com/shopspring/decimal"
)

const cacheKeyRound = "latest_round"

// feedClient core.PriceOracle backed by an HTTP price feed
type feedClient struct {
	endpoint string
	cache    gcache.Cache
}

// NewFeedClient new HTTP price oracle
func NewFeedClient(endpoint string) core.PriceOracle {
	return &feedClient{
		endpoint: endpoint,
		cache:    gcache.New(8).LRU().Expiration(time.Minute).Build(),
	}
}

func (c *feedClient) LatestRoundData(ctx context.Context) (*core.PriceRound, error) {
	if v, err := c.cache.Get(cacheKeyRound); err == nil {
		if round, ok := v.(*core.PriceRound); ok {
			return round, nil
		}
	}

	var body struct {
		Price     decimal.Decimal `json:"price"`
		UpdatedAt int64           `json:"updated_at"`
	}

	url := fmt.Sprintf("%s/latest", c.endpoint)
	if _, err := resthttp.Execute(resthttp.Request(ctx), "GET", url, nil, &body); err != nil {
		return nil, err
	}

	round := &core.PriceRound{
		Answer:    body.Price,
		UpdatedAt: time.Unix(body.UpdatedAt, 0),
	}

	_ = c.cache.Set(cacheKeyRound, round)
	return round, nil
}
