package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/campusware/regpos/internal/config"
	"github.com/campusware/regpos/internal/database"
	"github.com/campusware/regpos/internal/database/repository"
	"github.com/campusware/regpos/internal/pos"
	"github.com/campusware/regpos/internal/registry"
	"github.com/campusware/regpos/internal/secrets"
	"github.com/campusware/regpos/internal/service"
	"github.com/campusware/regpos/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	runRepo := repository.NewRunRepo(db)

	registryClient := registry.NewClient(cfg.Registry.URL, cfg.Registry.User, resolveSecret(cfg.Registry.Pass, secrets.RegistryPass))
	posClient := pos.NewClient(
		cfg.POS.APIURL,
		cfg.POS.TokenURL,
		cfg.POS.AccountID,
		cfg.POS.ClientID,
		resolveSecret(cfg.POS.ClientSecret, secrets.POSClientSecret),
		resolveSecret(cfg.POS.RefreshToken, secrets.POSRefreshToken),
	)

	mapper := service.MapperConfig{
		PersonFieldID:   cfg.Sync.CustomFieldPersonID,
		SyncTimeFieldID: cfg.Sync.CustomFieldSyncTime,
		CreditLimit:     cfg.Sync.CreditLimit,
	}
	syncSvc := service.NewSyncService(registryClient, posClient, mapper, cfg.UI.Workers, nil)
	exportSvc := service.NewExportService(posClient, service.ExportConfig{
		CatalogItemFK:     cfg.Export.CatalogItemFK,
		SchoolYear:        cfg.Export.SchoolYear,
		TransactionType:   cfg.Export.TransactionType,
		TransactionSource: cfg.Export.TransactionSource,
		DebugFields:       cfg.Export.DebugFields,
	}, nil)
	journal := service.NewJournal(runRepo)

	p := tea.NewProgram(tui.New(ctx, cfg,
		tui.Repos{Runs: runRepo},
		tui.Services{Sync: syncSvc, Export: exportSvc, Journal: journal},
	), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}

// resolveSecret prefers the config value and falls back to the secret store.
func resolveSecret(cfgValue, name string) string {
	if cfgValue != "" {
		return cfgValue
	}
	if v, err := secrets.Fetch(name); err == nil {
		return v
	}
	return ""
}
