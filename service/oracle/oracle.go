package oracle

import (
	"context"
	"fmt"

	"lending/core"
	"lending/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
)

// PriceService price oracle service
type PriceService struct {
	Config *core.Config
}

// New new oracle price service
func New(config *core.Config) core.IPriceOracle {
	return &PriceService{
		Config: config,
	}
}

// GetPrice static price of the feed if configured, else pull it from the endpoint
func (s *PriceService) GetPrice(ctx context.Context, feedID string) (*core.OraclePrice, error) {
	if p, ok := s.Config.PriceOracle.Static[feedID]; ok {
		return &p, nil
	}

	if s.Config.PriceOracle.EndPoint == "" {
		return nil, fmt.Errorf("%w: no price for feed %s", core.ErrInvalidOraclePrice, feedID)
	}

	return s.PullPrice(ctx, feedID)
}

// PullPrice pull price of the feed from the endpoint
func (s *PriceService) PullPrice(ctx context.Context, feedID string) (*core.OraclePrice, error) {
	url := fmt.Sprintf("%s/prices/%s", s.Config.PriceOracle.EndPoint, feedID)
	logger.FromContext(ctx).Debugln("pull price:", url)
	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	var price core.OraclePrice
	if err := resthttp.ParseResponse(resp, &price); err != nil {
		return nil, err
	}

	if price.Price == 0 {
		return nil, fmt.Errorf("%w: zero price for feed %s", core.ErrInvalidOraclePrice, feedID)
	}

	return &price, nil
}
