package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"

	"github.com/MarcGrol/tripcart/lib/mystore"
	"github.com/MarcGrol/tripcart/services/cart/cartpersist"
)

type config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	ProjectID   string `envconfig:"GOOGLE_CLOUD_PROJECT"`
	Storage     string `envconfig:"CART_STORAGE" default:"store"`
	StoragePath string `envconfig:"CART_STORAGE_PATH" default:"data"`
}

func loadConfig() (config, error) {
	cfg := config{}
	err := envconfig.Process("", &cfg)
	if err != nil {
		return cfg, fmt.Errorf("error reading config: %w", err)
	}
	switch cfg.Storage {
	case "store", "file", "sqlite":
	default:
		return cfg, fmt.Errorf("invalid CART_STORAGE '%s': must be store, file or sqlite", cfg.Storage)
	}
	return cfg, nil
}

// openSlot returns the snapshot slot and a func that releases it
func (cfg config) openSlot(c context.Context) (cartpersist.Slot, func(), error) {
	switch cfg.Storage {
	case "file":
		slot, err := cartpersist.NewFileSlot(cfg.StoragePath)
		if err != nil {
			return nil, func() {}, err
		}
		return slot, func() { slot.Close() }, nil
	case "sqlite":
		slot, err := cartpersist.NewSQLiteSlot(filepath.Join(cfg.StoragePath, "carts.db"))
		if err != nil {
			return nil, func() {}, err
		}
		return slot, func() { slot.Close() }, nil
	default:
		store, cleanup, err := mystore.New[cartpersist.SlotRecord](c)
		if err != nil {
			return nil, func() {}, fmt.Errorf("error creating snapshot store: %w", err)
		}
		return cartpersist.NewStoreSlot(store), cleanup, nil
	}
}
