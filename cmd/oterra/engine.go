package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/oterra/oterra/config"
	"github.com/oterra/oterra/internal/keygen"
	"github.com/oterra/oterra/inventory"
	"github.com/oterra/oterra/planner"
	"github.com/oterra/oterra/providers/oci"
	"github.com/oterra/oterra/quota"
	"github.com/oterra/oterra/resolver"
	"github.com/oterra/oterra/terraform"
	"github.com/oterra/oterra/types"
	"github.com/oterra/oterra/wal"
)

// engine bundles the wired components every command needs.
type engine struct {
	cfg     *config.Config
	client  *oci.Client
	scanner *inventory.Scanner
	ledger  *quota.Ledger
}

// newEngine loads configuration, builds the provider clients and
// verifies connectivity before any command logic runs.
func newEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	client, err := oci.New(cfg.OCI.ConfigFile, cfg.OCI.Profile)
	if err != nil {
		return nil, err
	}

	connCtx, cancel := context.WithTimeout(ctx, cfg.Timeout.Connection)
	defer cancel()
	if err := client.VerifyConnectivity(connCtx); err != nil {
		return nil, err
	}

	return &engine{
		cfg:     cfg,
		client:  client,
		scanner: inventory.NewScanner(client, client, client),
		ledger:  quota.NewLedger(cfg.Limits),
	}, nil
}

// scan inventories the tenancy under the read timeout.
func (e *engine) scan(ctx context.Context) (*types.Catalog, error) {
	scanCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout.Read)
	defer cancel()
	return e.scanner.Scan(scanCtx)
}

// resolve produces the desired state for the configured strategy.
func (e *engine) resolve(ctx context.Context, catalog *types.Catalog, avail quota.Availability, strategyOverride string) (*types.DesiredState, error) {
	name := e.cfg.Strategy
	if strategyOverride != "" {
		name = strategyOverride
	}
	strategy, err := resolver.ParseStrategy(name)
	if err != nil {
		return nil, err
	}

	armImage, err := e.client.LatestImage(ctx, types.ShapeArmFlex)
	if err != nil {
		return nil, err
	}

	r := resolver.New(e.cfg.Limits, resolver.Options{
		Strategy:       strategy,
		SavedPath:      filepath.Join(e.cfg.WorkDir, "variables.tf"),
		NonInteractive: e.cfg.NonInteractive,
		HasArmImage:    armImage != "",
	})
	return r.Resolve(catalog, avail)
}

// orchestrator builds the terraform workflow driver for the work dir.
func (e *engine) orchestrator() *terraform.Orchestrator {
	runner := terraform.NewCLIRunner(e.cfg.WorkDir, e.cfg.Timeout.Command)
	return terraform.NewOrchestrator(runner, e.cfg.WorkDir, e.cfg.Retry)
}

// plan computes actions against what terraform already tracks.
func (e *engine) plan(ctx context.Context, desired *types.DesiredState, catalog *types.Catalog) []types.Action {
	tracked := e.orchestrator().Tracked(ctx, planner.CandidateAddresses(desired))
	return planner.Plan(desired, catalog, tracked)
}

// renderConfiguration ensures the SSH key pair exists, resolves the
// region's Ubuntu images and writes the terraform files for the desired
// state.
func (e *engine) renderConfiguration(ctx context.Context, desired *types.DesiredState) (terraform.Metadata, error) {
	pair, err := keygen.EnsureKeyPair(filepath.Join(e.cfg.WorkDir, "ssh_keys"))
	if err != nil {
		return terraform.Metadata{}, err
	}

	amdImage, err := e.client.LatestImage(ctx, types.ShapeAmdMicro)
	if err != nil {
		return terraform.Metadata{}, err
	}
	armImage, err := e.client.LatestImage(ctx, types.ShapeArmFlex)
	if err != nil {
		return terraform.Metadata{}, err
	}

	meta := terraform.Metadata{
		TenancyID:        e.client.TenancyID(),
		UserID:           e.client.UserID(),
		Region:           e.client.Region(),
		AmdImageID:       amdImage,
		ArmImageID:       armImage,
		SSHPublicKeyPath: "./ssh_keys/" + filepath.Base(pair.PublicKeyPath),
	}

	renderer := terraform.NewRenderer(e.cfg.WorkDir, e.cfg.Limits)
	if err := renderer.RenderAll(desired, meta); err != nil {
		return terraform.Metadata{}, err
	}
	return meta, nil
}

// journal opens the run journal in the work dir.
func (e *engine) journal() (*wal.Journal, error) {
	dir := filepath.Join(e.cfg.WorkDir, "journal")
	j, err := wal.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open run journal: %w", err)
	}
	if _, err := wal.Cleanup(dir, wal.DefaultRetentionDays); err != nil {
		log.Debug().Err(err).Msg("journal cleanup failed")
	}
	return j, nil
}
