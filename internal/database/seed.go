package database

import (
	"context"
	"database/sql"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"orderdesk/internal/database/repository"
)

type catalogFile struct {
	Product []catalogProduct `toml:"product"`
}

type catalogProduct struct {
	Name       string `toml:"name"`
	PriceCents int64  `toml:"price_cents"`
}

var defaultCatalog = []catalogProduct{
	{Name: "GenWatt Diesel 1000kW", PriceCents: 10000000},
	{Name: "GenWatt Diesel 200kW", PriceCents: 2500000},
	{Name: "GenWatt Diesel 10kW", PriceCents: 500000},
	{Name: "GenWatt Propane 1500kW", PriceCents: 12000000},
	{Name: "GenWatt Propane 500kW", PriceCents: 3500000},
	{Name: "GenWatt Propane 100kW", PriceCents: 1500000},
	{Name: "GenWatt Gasoline 2000kW", PriceCents: 15000000},
	{Name: "GenWatt Gasoline 750kW", PriceCents: 5000000},
	{Name: "GenWatt Gasoline 300kW", PriceCents: 2000000},
	{Name: "Installation: Industrial - High", PriceCents: 8500000},
	{Name: "Installation: Portable", PriceCents: 77000},
	{Name: "SLA: Bronze", PriceCents: 2000000},
	{Name: "SLA: Silver", PriceCents: 4000000},
	{Name: "SLA: Gold", PriceCents: 6000000},
}

// SeedDemo ensures the database has a catalog plus one demo contract and
// order to edit. It is idempotent and safe to run on every startup. When
// catalogPath names a readable TOML file its products replace the built-in
// list.
func SeedDemo(ctx context.Context, db *sql.DB, catalogPath string) error {
	products := defaultCatalog
	if catalogPath != "" {
		if loaded, err := loadCatalog(catalogPath); err == nil && len(loaded) > 0 {
			products = loaded
		}
	}

	pricebook := repository.NewPricebookRepo(db)
	for _, p := range products {
		productID := seedID("product:" + p.Name)
		if err := pricebook.InsertProduct(ctx, repository.Product{ID: productID, Name: p.Name}); err != nil {
			return err
		}
		entry := repository.PricebookEntry{
			ID:             seedID("pbe:" + p.Name),
			ProductID:      productID,
			UnitPriceCents: p.PriceCents,
			Active:         true,
		}
		if err := pricebook.InsertEntry(ctx, entry); err != nil {
			return err
		}
	}

	contracts := repository.NewContractRepo(db)
	contract := repository.Contract{ID: seedID("contract:demo"), Name: "Demo Contract", Status: "Activated"}
	if err := contracts.Insert(ctx, contract); err != nil {
		return err
	}

	orders := repository.NewOrderRepo(db)
	order := repository.Order{ID: seedID("order:demo"), Name: "Demo Order", ContractID: contract.ID, Status: "Draft"}
	return orders.Insert(ctx, order)
}

func loadCatalog(path string) ([]catalogProduct, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file catalogFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	return file.Product, nil
}

// seedID derives a stable id so reseeding never duplicates rows.
func seedID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
