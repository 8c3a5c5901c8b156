// Package catalog reads products from the storefront REST backend.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/internal/domain"
	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
	"github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/httpclient"
)

// CircuitOpenFallback is used while the backend circuit is open.
func CircuitOpenFallback(_ context.Context, _ error) (*http.Response, error) {
	return nil, apperrors.ServiceUnavailable("product catalog is temporarily unavailable, please retry shortly")
}

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// productDTO is a product as the backend encodes it, with rupee prices.
type productDTO struct {
	ID          domain.ProductID  `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       float64           `json:"price"`
	MRP         *float64          `json:"mrp"`
	SalePrice   *float64          `json:"sale_price"`
	Category    string            `json:"category"`
	Image       string            `json:"image"`
	Stock       int               `json:"stock"`
	Specs       map[string]string `json:"specs"`
	Features    []string          `json:"features"`
}

func (d productDTO) toDomain() domain.Product {
	p := domain.Product{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Price:       domain.Paise(d.Price),
		Image:       d.Image,
		Category:    d.Category,
		Stock:       max(d.Stock, 0),
		Specs:       d.Specs,
		Features:    d.Features,
	}
	if d.MRP != nil {
		v := domain.Paise(*d.MRP)
		p.MRP = &v
	}
	if d.SalePrice != nil {
		v := domain.Paise(*d.SalePrice)
		p.SalePrice = &v
	}
	return p
}

// Client talks to the product endpoints of the backend.
type Client struct {
	http    HTTPDoer
	baseURL string
	logger  *slog.Logger
	lookups singleflight.Group
}

// NewClient creates a catalog client for the backend at baseURL.
func NewClient(doer HTTPDoer, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// List returns the products matching f. The backend handles category,
// price, search and sort; the in-stock refinement is applied here.
func (c *Client) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	u := c.baseURL + "/products"
	if q := f.Query().Encode(); q != "" {
		u += "?" + q
	}

	var dtos []productDTO
	if err := c.getJSON(ctx, u, &dtos); err != nil {
		return nil, err
	}

	products := make([]domain.Product, len(dtos))
	for i, d := range dtos {
		products[i] = d.toDomain()
	}

	// The backend already ordered the rows; Apply keeps that order stable
	// and only re-sorts when asked to.
	return f.Apply(products), nil
}

// Get returns one product. Concurrent lookups of the same id share a
// single backend request. The shared request outlives any one caller's
// cancellation; each caller stops waiting when its own ctx is done.
func (c *Client) Get(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.lookups.DoChan(id.String(), func() (any, error) {
		var dto productDTO
		if err := c.getJSON(shared, c.baseURL+"/products/"+id.String(), &dto); err != nil {
			return domain.Product{}, err
		}
		return dto.toDomain(), nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return domain.Product{}, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		if apperrors.HTTPStatus(res.Err) == http.StatusNotFound {
			return domain.Product{}, apperrors.NotFound("product", id.String())
		}
		return domain.Product{}, res.Err
	}
	if res.Shared {
		c.logger.DebugContext(ctx, "product lookup shared", slog.String("product_id", id.String()))
	}
	return res.Val.(domain.Product), nil
}

func (c *Client) getJSON(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, "catalog")
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}
