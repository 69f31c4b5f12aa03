package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/boscora/impacta-go/auth"
	"github.com/boscora/impacta-go/config"
	"github.com/boscora/impacta-go/host"
	"github.com/boscora/impacta-go/ledger"
	"github.com/boscora/impacta-go/logging"
	"github.com/boscora/impacta-go/oracle"
	"github.com/boscora/impacta-go/registry"
	"github.com/boscora/impacta-go/token"
	"github.com/boscora/impacta-go/wallet"
)

// File names inside the data directory.
const (
	LedgerFile      = "ledger.db"
	DeploymentsFile = "deployments.json"
)

// Deployment names.
const (
	TokenDeployment    = "token"
	OracleDeployment   = "oracle"
	RegistryDeployment = "registry"
)

var codeFor = map[string]host.Contract{
	TokenDeployment:    token.Contract{},
	OracleDeployment:   oracle.Contract{},
	RegistryDeployment: registry.Contract{},
}

// app is the per-command runtime: configuration, logger, ledger, host and
// optionally the unlocked wallet.
type app struct {
	cfg         config.Config
	network     auth.Network
	log         *zap.Logger
	store       *ledger.BoltStore
	host        *host.Host
	gatherer    prometheus.Gatherer
	keystore    *wallet.Keystore
	deployments map[string]auth.Address
}

func loadConfig(dataDir string) (config.Config, error) {
	cfg, err := config.LoadConfig(config.ConfigPath(dataDir))
	if errors.Is(err, config.ErrConfigNotFound) {
		cfg = config.DefaultConfig()
		err = nil
	}
	if err != nil {
		return config.Config{}, err
	}
	cfg.DataDir = dataDir
	if err := config.ValidateConfig(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openApp loads the data directory. withWallet unlocks the keystore.
func openApp(withWallet bool) (*app, error) {
	cfg, err := loadConfig(flags.DataDir)
	if err != nil {
		return nil, err
	}
	network, err := auth.NetworkByName(cfg.Network)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, network: network, log: log}
	if withWallet {
		pw, err := password()
		if err != nil {
			return nil, err
		}
		if a.keystore, err = wallet.Open(cfg.DataDir, pw, network); err != nil {
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	metrics, err := host.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	a.gatherer = reg

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if a.store, err = ledger.OpenBoltStore(filepath.Join(cfg.DataDir, LedgerFile)); err != nil {
		return nil, err
	}
	a.host = host.New(a.store, network,
		host.WithLogger(log),
		host.WithMetrics(metrics),
		host.WithProofLifetime(cfg.ProofLifetime),
	)

	if a.deployments, err = loadDeployments(cfg.DataDir); err != nil {
		a.store.Close()
		return nil, err
	}
	for name, addr := range a.deployments {
		code, ok := codeFor[name]
		if !ok {
			a.store.Close()
			return nil, fmt.Errorf("unknown deployment %q", name)
		}
		if err := a.host.Attach(addr, code); err != nil {
			a.store.Close()
			return nil, fmt.Errorf("attach %s: %w", name, err)
		}
	}
	return a, nil
}

// Close flushes the metrics textfile and closes the ledger.
func (a *app) Close() error {
	var errs []error
	if a.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.gatherer); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, err)
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}

// signer holds the key of every wallet identity.
func (a *app) signer() (*host.Signer, error) {
	if a.keystore == nil {
		return nil, errors.New("wallet is locked")
	}
	var keys []*ec.PrivateKey
	for _, named := range a.keystore.Identities() {
		id, err := a.keystore.Wallet().Identity(named.Index)
		if err != nil {
			return nil, err
		}
		keys = append(keys, id.Key)
	}
	return a.host.Signer(keys...)
}

// address resolves a wallet identity name or a literal address.
func (a *app) address(nameOrAddr string) (auth.Address, error) {
	if a.keystore != nil {
		if id, err := a.keystore.Identity(nameOrAddr); err == nil {
			return id.Address, nil
		}
	}
	addr := auth.Address(nameOrAddr)
	if err := addr.Validate(); err != nil {
		return "", fmt.Errorf("%q is neither an identity nor an address: %w", nameOrAddr, err)
	}
	return addr, nil
}

func (a *app) deployment(name string) (auth.Address, error) {
	addr, ok := a.deployments[name]
	if !ok {
		return "", fmt.Errorf("%s is not deployed; run boscora deploy", name)
	}
	return addr, nil
}

func (a *app) tokenClient(inv host.Invoker) (*token.Client, error) {
	addr, err := a.deployment(TokenDeployment)
	if err != nil {
		return nil, err
	}
	return token.NewClient(inv, addr), nil
}

func (a *app) oracleClient(inv host.Invoker) (*oracle.Client, error) {
	addr, err := a.deployment(OracleDeployment)
	if err != nil {
		return nil, err
	}
	return oracle.NewClient(inv, addr), nil
}

func (a *app) registryClient(inv host.Invoker) (*registry.Client, error) {
	addr, err := a.deployment(RegistryDeployment)
	if err != nil {
		return nil, err
	}
	return registry.NewClient(inv, addr), nil
}

func loadDeployments(dataDir string) (map[string]auth.Address, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, DeploymentsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]auth.Address{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read deployments: %w", err)
	}
	out := map[string]auth.Address{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse deployments: %w", err)
	}
	return out, nil
}

func (a *app) saveDeployments() error {
	data, err := json.MarshalIndent(a.deployments, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(a.cfg.DataDir, DeploymentsFile), data, 0600); err != nil {
		return fmt.Errorf("write deployments: %w", err)
	}
	return nil
}

func (a *app) deploymentNames() []string {
	names := make([]string, 0, len(a.deployments))
	for name := range a.deployments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
