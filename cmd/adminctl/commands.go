package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jrsteele09/go-admin-client/adminapi"
	"github.com/jrsteele09/go-admin-client/models"
)

func restaurantCommand(ctx context.Context, admin *adminapi.Admin, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: restaurant <get|create|update|activate|deactivate|delete|share> ...")
	}
	restaurants := admin.Restaurants

	switch action, id := args[0], args[1]; action {
	case "get":
		return printResult[models.Restaurant](restaurants.Get(ctx, id))

	case "create":
		r := models.Restaurant{Name: id, Email: optionalArg(args, 2), City: optionalArg(args, 3)}
		return printResult[models.Restaurant](restaurants.Create(ctx, r))

	case "update":
		if len(args) < 3 {
			return errors.New("usage: restaurant update <id> <JSON>")
		}
		var r models.Restaurant
		if err := json.Unmarshal([]byte(args[2]), &r); err != nil {
			return fmt.Errorf("invalid restaurant JSON: %w", err)
		}
		r.ID = id
		return printResult[models.Restaurant](restaurants.Update(ctx, r))

	case "activate", "deactivate":
		return printResult[models.Restaurant](restaurants.SetActive(ctx, id, action == "activate"))

	case "delete":
		if err := restaurants.Delete(ctx, id); err != nil {
			return err
		}
		return printJSON(map[string]string{"deleted": id})

	case "share":
		if len(args) < 3 {
			return errors.New("usage: restaurant share <id> <email>")
		}
		return printResult[models.CredentialShare](restaurants.ShareCredentials(ctx, id, args[2]))
	}
	return fmt.Errorf("unknown restaurant action %q", args[0])
}

// couponCommand creates a coupon; valid-for is a duration such as 720h
func couponCommand(ctx context.Context, admin *adminapi.Admin, args []string) error {
	if len(args) < 4 || args[0] != "create" {
		return errors.New("usage: coupon create <code> <percent> <valid-for> [restaurant-id]")
	}
	percent, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid percent %q", args[2])
	}
	validFor, err := time.ParseDuration(args[3])
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", args[3], err)
	}
	return printResult[models.Coupon](admin.Coupons.Create(ctx, models.Coupon{
		Code:         args[1],
		Percent:      percent,
		RestaurantID: optionalArg(args, 4),
		ExpiresAt:    time.Now().Add(validFor),
	}))
}

func bannerCommand(ctx context.Context, admin *adminapi.Admin, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: banner <upload|delete> ...")
	}
	switch args[0] {
	case "upload":
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		return printResult[models.Banner](admin.Banners.Upload(ctx, optionalArg(args, 2), filepath.Base(args[1]), f))

	case "delete":
		if err := admin.Banners.Delete(ctx, args[1]); err != nil {
			return err
		}
		return printJSON(map[string]string{"deleted": args[1]})
	}
	return fmt.Errorf("unknown banner action %q", args[0])
}

func optionalArg(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i]
}
