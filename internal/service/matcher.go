package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/campusware/regpos/internal/pos"
)

// ErrLookup marks a match attempt that failed at the transport level. The
// sync loop treats it as "not found" so a flaky lookup degrades to a create
// rather than stalling the run, but logs it so duplicates can be traced.
var ErrLookup = errors.New("customer lookup failed")

// Match finds the POS customer whose registration number carries the given
// person key. Returns nil when no customer matches.
func Match(ctx context.Context, api POSAPI, personPK int) (*pos.Customer, error) {
	params := url.Values{
		"companyRegistrationNumber": {strconv.Itoa(personPK)},
		"limit":                     {"1"},
		"load_relations":            {"all"},
	}
	customers, err := api.Customers(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: person %d: %v", ErrLookup, personPK, err)
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return &customers[0], nil
}
