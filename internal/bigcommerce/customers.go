package bigcommerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront-widgets/internal/model"
)

// GetCustomer fetches a customer with attributes. The v3 customers endpoint is
// a filtered list, so a missing customer is an empty page rather than a 404.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*model.Customer, error) {
	id, err := parseID("customer", customerID)
	if err != nil {
		return nil, err
	}

	var env envelope[[]bcCustomer]
	q := url.Values{
		"id:in":   {strconv.Itoa(id)},
		"include": {"attributes"},
	}
	if err := c.call(ctx, http.MethodGet, "/v3/customers", q, nil, &env); err != nil {
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	if len(env.Data) == 0 {
		return nil, model.NewNotFoundError("customer")
	}

	bc := env.Data[0]
	cust := &model.Customer{
		ID:        strconv.Itoa(bc.ID),
		Email:     bc.Email,
		FirstName: bc.FirstName,
		LastName:  bc.LastName,
		Tags:      c.customerTags(bc.Attributes),
	}
	if bc.CustomerGroupID > 0 {
		gid := bc.CustomerGroupID
		cust.GroupID = &gid
	}
	return cust, nil
}

func (c *Client) customerTags(attrs []bcCustomerAttribute) []string {
	if c.cfg.CustomerTagsAttributeID == 0 {
		return []string{}
	}
	for _, a := range attrs {
		if a.AttributeID == c.cfg.CustomerTagsAttributeID {
			return model.ParseTags(a.AttributeValue)
		}
	}
	return []string{}
}

// GetCustomerGroup fetches a customer group from the v2 API.
func (c *Client) GetCustomerGroup(ctx context.Context, groupID int) (*model.CustomerGroup, error) {
	var g bcCustomerGroup
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/v2/customer_groups/%d", groupID), nil, nil, &g); err != nil {
		if model.IsNotFound(err) {
			return nil, model.NewNotFoundError("customer group")
		}
		return nil, fmt.Errorf("getting customer group %d: %w", groupID, err)
	}
	return &model.CustomerGroup{ID: g.ID, Name: g.Name}, nil
}

// GetGuestCustomerGroupID reads the store's guest group setting.
// Zero upstream means no guest group.
func (c *Client) GetGuestCustomerGroupID(ctx context.Context) (*int, error) {
	var env envelope[bcCustomerSettings]
	if err := c.call(ctx, http.MethodGet, "/v3/customers/settings", nil, nil, &env); err != nil {
		return nil, fmt.Errorf("getting customer settings: %w", err)
	}

	id := env.Data.CustomerGroupSettings.GuestCustomerGroupID
	if id <= 0 {
		return nil, nil
	}
	return &id, nil
}
