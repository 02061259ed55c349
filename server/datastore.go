package server

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-client/internal/errors"
	"github.com/jrsteele09/go-admin-client/internal/utils"
	"github.com/jrsteele09/go-admin-client/models"
)

// dataStore holds the mock API's resources in memory
type dataStore struct {
	restaurants map[string]*models.Restaurant
	coupons     map[string]*models.Coupon
	bugReports  map[string]*models.BugReport
	banners     map[string]*models.Banner
	locations   []models.Location
	nowFunc     func() time.Time
	lock        sync.RWMutex
}

func newDataStore(nowFunc func() time.Time) *dataStore {
	return &dataStore{
		restaurants: make(map[string]*models.Restaurant),
		coupons:     make(map[string]*models.Coupon),
		bugReports:  make(map[string]*models.BugReport),
		banners:     make(map[string]*models.Banner),
		nowFunc:     nowFunc,
	}
}

func (d *dataStore) listRestaurants(offset, limit int) []models.Restaurant {
	d.lock.RLock()
	defer d.lock.RUnlock()

	list := make([]models.Restaurant, 0, len(d.restaurants))
	for _, r := range d.restaurants {
		list = append(list, *r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return utils.Page(list, offset, limit)
}

func (d *dataStore) getRestaurant(id string) (models.Restaurant, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	r, ok := d.restaurants[id]
	if !ok {
		return models.Restaurant{}, errors.ErrNotFound
	}
	return *r, nil
}

func (d *dataStore) createRestaurant(r models.Restaurant) (models.Restaurant, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if r.Email != "" {
		for _, existing := range d.restaurants {
			if strings.EqualFold(existing.Email, r.Email) {
				return models.Restaurant{}, errors.ErrAlreadyExists
			}
		}
	}
	r.ID = uuid.New().String()
	r.CreatedAt = d.nowFunc()
	d.restaurants[r.ID] = &r
	return r, nil
}

func (d *dataStore) updateRestaurant(id string, update models.Restaurant) (models.Restaurant, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	existing, ok := d.restaurants[id]
	if !ok {
		return models.Restaurant{}, errors.ErrNotFound
	}
	update.ID = existing.ID
	update.CreatedAt = existing.CreatedAt
	d.restaurants[id] = &update
	return update, nil
}

func (d *dataStore) setRestaurantActive(id string, active bool) (models.Restaurant, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	existing, ok := d.restaurants[id]
	if !ok {
		return models.Restaurant{}, errors.ErrNotFound
	}
	existing.Active = active
	return *existing, nil
}

func (d *dataStore) deleteRestaurant(id string) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if _, ok := d.restaurants[id]; !ok {
		return errors.ErrNotFound
	}
	delete(d.restaurants, id)
	return nil
}

func (d *dataStore) listCoupons() []models.Coupon {
	d.lock.RLock()
	defer d.lock.RUnlock()

	list := make([]models.Coupon, 0, len(d.coupons))
	for _, c := range d.coupons {
		list = append(list, *c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}

func (d *dataStore) createCoupon(c models.Coupon) (models.Coupon, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	for _, existing := range d.coupons {
		if strings.EqualFold(existing.Code, c.Code) {
			return models.Coupon{}, errors.ErrAlreadyExists
		}
	}
	if c.RestaurantID != "" {
		if _, ok := d.restaurants[c.RestaurantID]; !ok {
			return models.Coupon{}, errors.Wrapf(errors.ErrNotFound, "restaurant %s", c.RestaurantID)
		}
	}
	c.ID = uuid.New().String()
	c.CreatedAt = d.nowFunc()
	d.coupons[c.ID] = &c
	return c, nil
}

func (d *dataStore) addBugReport(b models.BugReport) models.BugReport {
	d.lock.Lock()
	defer d.lock.Unlock()

	b.ID = uuid.New().String()
	b.CreatedAt = d.nowFunc()
	b.UpdatedAt = b.CreatedAt
	if b.Status == "" {
		b.Status = models.BugStatusOpen
	}
	d.bugReports[b.ID] = &b
	return b
}

func (d *dataStore) listBugReports(status models.BugStatus) []models.BugReport {
	d.lock.RLock()
	defer d.lock.RUnlock()

	list := make([]models.BugReport, 0, len(d.bugReports))
	for _, b := range d.bugReports {
		if status != "" && b.Status != status {
			continue
		}
		list = append(list, *b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

func (d *dataStore) updateBugStatus(id string, status models.BugStatus) (models.BugReport, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	b, ok := d.bugReports[id]
	if !ok {
		return models.BugReport{}, errors.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = d.nowFunc()
	return *b, nil
}

func (d *dataStore) addBanner(b models.Banner) models.Banner {
	d.lock.Lock()
	defer d.lock.Unlock()

	b.ID = uuid.New().String()
	b.CreatedAt = d.nowFunc()
	d.banners[b.ID] = &b
	return b
}

func (d *dataStore) listBanners() []models.Banner {
	d.lock.RLock()
	defer d.lock.RUnlock()

	list := make([]models.Banner, 0, len(d.banners))
	for _, b := range d.banners {
		list = append(list, *b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

func (d *dataStore) deleteBanner(id string) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if _, ok := d.banners[id]; !ok {
		return errors.ErrNotFound
	}
	delete(d.banners, id)
	return nil
}

// lookupLocations matches query case-insensitively against name and city
func (d *dataStore) lookupLocations(query string) []models.Location {
	d.lock.RLock()
	defer d.lock.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	matches := make([]models.Location, 0)
	for _, l := range d.locations {
		if query == "" || strings.Contains(strings.ToLower(l.Name), query) || strings.Contains(strings.ToLower(l.City), query) {
			matches = append(matches, l)
		}
	}
	return matches
}
