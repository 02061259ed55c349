// Package adminapi exposes the restaurant admin API resources as typed calls over an authenticated client.
package adminapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-admin-client/apiclient"
	"github.com/jrsteele09/go-admin-client/models"
	"github.com/pkg/errors"
)

const (
	restaurantsPath = "/restaurants"
	couponsPath     = "/coupons"
	bugReportsPath  = "/bug-reports"
	bannersPath     = "/banners"
	locationsPath   = "/locations"
)

// Requester is the subset of *apiclient.Client the admin services need.
type Requester interface {
	Request(ctx context.Context, method, path string, body any, opts ...apiclient.RequestOption) (*apiclient.Response, error)
	Upload(ctx context.Context, path string, fields map[string]string, files ...apiclient.File) (*apiclient.Response, error)
}

// Admin groups the dashboard's resource services.
type Admin struct {
	Restaurants *Restaurants
	Coupons     *Coupons
	BugReports  *BugReports
	Banners     *Banners
	Locations   *Locations
}

type Option func(*Admin)

// WithNowFunc sets the clock used for client-side coupon validation
func WithNowFunc(now func() time.Time) Option {
	return func(a *Admin) {
		a.Coupons.nowFunc = now
	}
}

func New(client Requester, options ...Option) *Admin {
	a := &Admin{
		Restaurants: &Restaurants{client: client},
		Coupons:     &Coupons{client: client, nowFunc: time.Now},
		BugReports:  &BugReports{client: client},
		Banners:     &Banners{client: client},
		Locations:   &Locations{client: client},
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func resourcePath(base string, parts ...string) string {
	escaped := make([]string, 0, len(parts)+1)
	escaped = append(escaped, base)
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return strings.Join(escaped, "/")
}

func decode[T any](resp *apiclient.Response, err error) (T, error) {
	var v T
	if err != nil {
		return v, err
	}
	if err := resp.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

type Restaurants struct {
	client Requester
}

// List returns a page of restaurants. A zero limit returns everything from offset.
func (r *Restaurants) List(ctx context.Context, offset, limit int) ([]models.Restaurant, error) {
	query := url.Values{}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return decode[[]models.Restaurant](r.client.Request(ctx, http.MethodGet, restaurantsPath, nil, apiclient.WithQuery(query)))
}

func (r *Restaurants) Get(ctx context.Context, id string) (models.Restaurant, error) {
	return decode[models.Restaurant](r.client.Request(ctx, http.MethodGet, resourcePath(restaurantsPath, id), nil))
}

func (r *Restaurants) Create(ctx context.Context, restaurant models.Restaurant) (models.Restaurant, error) {
	if err := restaurant.Validate(); err != nil {
		return models.Restaurant{}, errors.Wrap(err, "[Restaurants.Create]")
	}
	return decode[models.Restaurant](r.client.Request(ctx, http.MethodPost, restaurantsPath, restaurant))
}

func (r *Restaurants) Update(ctx context.Context, restaurant models.Restaurant) (models.Restaurant, error) {
	if restaurant.ID == "" {
		return models.Restaurant{}, errors.New("[Restaurants.Update] restaurant id is required")
	}
	if err := restaurant.Validate(); err != nil {
		return models.Restaurant{}, errors.Wrap(err, "[Restaurants.Update]")
	}
	return decode[models.Restaurant](r.client.Request(ctx, http.MethodPut, resourcePath(restaurantsPath, restaurant.ID), restaurant))
}

func (r *Restaurants) Delete(ctx context.Context, id string) error {
	_, err := r.client.Request(ctx, http.MethodDelete, resourcePath(restaurantsPath, id), nil)
	return err
}

// SetActive enables or disables a restaurant on the platform
func (r *Restaurants) SetActive(ctx context.Context, id string, active bool) (models.Restaurant, error) {
	body := struct {
		Active bool `json:"active"`
	}{Active: active}
	return decode[models.Restaurant](r.client.Request(ctx, http.MethodPut, resourcePath(restaurantsPath, id, "active"), body))
}

// ShareCredentials creates or resets the owner login for a restaurant and returns its temporary password.
func (r *Restaurants) ShareCredentials(ctx context.Context, id, email string) (models.CredentialShare, error) {
	if !strings.Contains(email, "@") {
		return models.CredentialShare{}, fmt.Errorf("[Restaurants.ShareCredentials] invalid email %q", email)
	}
	body := struct {
		Email string `json:"email"`
	}{Email: email}
	return decode[models.CredentialShare](r.client.Request(ctx, http.MethodPost, resourcePath(restaurantsPath, id, "credentials", "share"), body))
}

type Coupons struct {
	client  Requester
	nowFunc func() time.Time
}

func (c *Coupons) List(ctx context.Context) ([]models.Coupon, error) {
	return decode[[]models.Coupon](c.client.Request(ctx, http.MethodGet, couponsPath, nil))
}

// Create validates the coupon locally before sending it, so obviously bad coupons never reach the API.
func (c *Coupons) Create(ctx context.Context, coupon models.Coupon) (models.Coupon, error) {
	if err := coupon.Validate(c.nowFunc()); err != nil {
		return models.Coupon{}, errors.Wrap(err, "[Coupons.Create]")
	}
	return decode[models.Coupon](c.client.Request(ctx, http.MethodPost, couponsPath, coupon))
}

type BugReports struct {
	client Requester
}

// List returns bug reports, optionally filtered by status. An empty status lists all of them.
func (b *BugReports) List(ctx context.Context, status models.BugStatus) ([]models.BugReport, error) {
	var opts []apiclient.RequestOption
	if status != "" {
		opts = append(opts, apiclient.WithQuery(url.Values{"status": {string(status)}}))
	}
	return decode[[]models.BugReport](b.client.Request(ctx, http.MethodGet, bugReportsPath, nil, opts...))
}

func (b *BugReports) UpdateStatus(ctx context.Context, id string, status models.BugStatus) (models.BugReport, error) {
	if !status.Valid() {
		return models.BugReport{}, fmt.Errorf("[BugReports.UpdateStatus] unknown status %q", status)
	}
	body := struct {
		Status models.BugStatus `json:"status"`
	}{Status: status}
	return decode[models.BugReport](b.client.Request(ctx, http.MethodPatch, resourcePath(bugReportsPath, id), body))
}

type Banners struct {
	client Requester
}

func (b *Banners) List(ctx context.Context) ([]models.Banner, error) {
	return decode[[]models.Banner](b.client.Request(ctx, http.MethodGet, bannersPath, nil))
}

// Upload sends a banner image as the "file" part of a multipart form
func (b *Banners) Upload(ctx context.Context, name, filename string, content io.Reader) (models.Banner, error) {
	fields := map[string]string{}
	if name != "" {
		fields["name"] = name
	}
	return decode[models.Banner](b.client.Upload(ctx, bannersPath, fields, apiclient.File{Field: "file", Name: filename, Content: content}))
}

func (b *Banners) Delete(ctx context.Context, id string) error {
	_, err := b.client.Request(ctx, http.MethodDelete, resourcePath(bannersPath, id), nil)
	return err
}

type Locations struct {
	client Requester
}

// Lookup searches locations by name or city
func (l *Locations) Lookup(ctx context.Context, q string) ([]models.Location, error) {
	return decode[[]models.Location](l.client.Request(ctx, http.MethodGet, locationsPath, nil, apiclient.WithQuery(url.Values{"q": {q}})))
}
