package gateway

import (
	"context"
	"net/http"

	"storefront/internal/models"
)

// OrderClient submits assembled order drafts to the order-placement endpoint.
type OrderClient struct {
	api *Client
}

func NewOrderClient(api *Client) *OrderClient {
	return &OrderClient{api: api}
}

// Place posts the draft. Only a success flag is consumed from the response;
// rejections carry the endpoint's message back as an APIError.
func (o *OrderClient) Place(ctx context.Context, draft models.OrderDraft, bearer string) error {
	return o.api.Do(ctx, http.MethodPost, "/orders", draft, bearer, nil)
}
