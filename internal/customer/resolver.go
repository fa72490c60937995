// Package customer classifies a storefront visitor into a customer context
// used for pricing and widget targeting.
//
// Resolution never fails: every upstream error degrades to the best context
// computable from data already in hand, and the reason is recorded.
package customer

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"storefront-widgets/internal/adapter"
	"storefront-widgets/internal/model"
)

// Source says where a resolved context came from.
type Source string

const (
	SourceGuestDefault Source = "guest_default"
	SourceGuestGroup   Source = "guest_group"
	SourceCustomer     Source = "customer"
)

// Step names a lookup that can degrade.
type Step string

const (
	StepGuestGroup    Step = "guest_group"
	StepCustomer      Step = "customer"
	StepCustomerGroup Step = "customer_group"
)

// Diagnostic records why a lookup left a default in place.
type Diagnostic struct {
	Step   Step   `json:"step"`
	Detail string `json:"detail"`
	Err    error  `json:"-"`
}

// Resolution is a customer context plus how it was obtained.
type Resolution struct {
	Context     model.CustomerContext `json:"context"`
	Source      Source                `json:"source"`
	Diagnostics []Diagnostic          `json:"diagnostics,omitempty"`
}

// Degraded reports whether step fell back to a default.
func (r *Resolution) Degraded(step Step) bool {
	for _, d := range r.Diagnostics {
		if d.Step == step {
			return true
		}
	}
	return false
}

// Resolver computes customer contexts. Safe for concurrent use.
type Resolver struct {
	upstream adapter.Customers
	logger   *slog.Logger
}

// NewResolver creates a Resolver reading from upstream.
func NewResolver(upstream adapter.Customers, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{upstream: upstream, logger: logger}
}

// Resolve returns the context for customerID. An empty ID resolves the
// store's guest context.
func (r *Resolver) Resolve(ctx context.Context, customerID string) *Resolution {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return r.resolveGuest(ctx)
	}

	res := &Resolution{Context: model.GuestContext(), Source: SourceGuestDefault}

	// Platform customer IDs are positive integers; anything else cannot match.
	if id, err := strconv.Atoi(customerID); err != nil || id < 1 {
		res.addDiagnostic(StepCustomer, "customer id is not numeric", nil)
		return res
	}

	c, err := r.upstream.GetCustomer(ctx, customerID)
	if err != nil {
		detail := "customer lookup failed"
		if model.IsNotFound(err) {
			detail = "customer not found"
		} else {
			r.logger.WarnContext(ctx, "customer lookup failed, using guest context",
				slog.String("customer_id", customerID),
				slog.String("error", err.Error()),
			)
		}
		res.addDiagnostic(StepCustomer, detail, err)
		return res
	}

	id := c.ID
	if id == "" {
		id = customerID
	}
	cc := model.CustomerContext{
		CustomerID:      &id,
		IsLoggedIn:      true,
		CustomerGroupID: c.GroupID,
		CustomerGroup:   model.GuestGroup,
		CustomerTags:    model.NormalizeTags(c.Tags),
		Email:           c.Email,
		Name:            model.FullName(c.FirstName, c.LastName),
	}
	res.Source = SourceCustomer

	if c.GroupID == nil {
		res.Context = cc
		return res
	}

	cc.CustomerGroup = model.RetailGroup
	cc.IsWholesale = true

	group, err := r.upstream.GetCustomerGroup(ctx, *c.GroupID)
	if err != nil {
		r.logger.WarnContext(ctx, "customer group lookup failed, keeping defaults",
			slog.Int("group_id", *c.GroupID),
			slog.String("error", err.Error()),
		)
		res.addDiagnostic(StepCustomerGroup, "customer group lookup failed", err)
		res.Context = cc
		return res
	}

	cc.CustomerGroup = strings.ToLower(group.Name)
	cc.IsWholesale = model.IsWholesaleName(group.Name)
	res.Context = cc
	return res
}

func (r *Resolver) resolveGuest(ctx context.Context) *Resolution {
	res := &Resolution{Context: model.GuestContext(), Source: SourceGuestDefault}

	groupID, err := r.upstream.GetGuestCustomerGroupID(ctx)
	if err != nil {
		res.addDiagnostic(StepGuestGroup, "reading customer settings failed", err)
		return res
	}
	if groupID == nil {
		return res
	}

	group, err := r.upstream.GetCustomerGroup(ctx, *groupID)
	if err != nil {
		res.addDiagnostic(StepGuestGroup, "guest group lookup failed", err)
		return res
	}

	gid := *groupID
	res.Context.CustomerGroupID = &gid
	res.Context.CustomerGroup = strings.ToLower(group.Name)
	res.Context.IsWholesale = model.IsWholesaleName(group.Name)
	res.Source = SourceGuestGroup
	return res
}

func (r *Resolution) addDiagnostic(step Step, detail string, err error) {
	if err != nil && !model.IsNotFound(err) {
		err = model.NewUpstreamUnavailableError(string(step), err)
	}
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Step: step, Detail: detail, Err: err})
}
