package cmd

import (
	"fmt"
	"os"

	"vaultchat/config"
	"vaultchat/model"
	"vaultchat/provider"
	"vaultchat/storage"
)

// app holds the long-lived dependencies every command shares.
type app struct {
	cfg     *config.Config
	creds   *config.CredentialStore
	archive *storage.Archive
	usage   *storage.UsageLedger
	logFile *os.File
}

func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		creds:   config.NewCredentialStore(),
		logFile: config.InitDebugLog(cfg.DataDir()),
	}

	archive, err := storage.NewArchive(cfg.DataDir())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open conversation archive: %w", err)
	}
	a.archive = archive

	return a, nil
}

// openUsage opens the usage ledger once. Chat and ask keep working without
// it, so callers there only log the error.
func (a *app) openUsage() (*storage.UsageLedger, error) {
	if a.usage != nil {
		return a.usage, nil
	}
	ledger, err := storage.NewUsageLedger(a.cfg.DataDir())
	if err != nil {
		return nil, err
	}
	a.usage = ledger
	return ledger, nil
}

func (a *app) modelName() string {
	if modelOverride != "" {
		return modelOverride
	}
	return a.cfg.Model
}

func (a *app) newSession(opts ...model.Option) (*model.Session, error) {
	var recorder provider.UsageRecorder
	if ledger, err := a.openUsage(); err != nil {
		config.Log.WithError(err).Warn("usage ledger unavailable, token counts will not be recorded")
	} else {
		recorder = ledger
	}

	completer, err := provider.NewFromConfig(a.cfg, a.creds, modelOverride, recorder)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	return model.NewSession(a.creds, a.archive, completer, opts...), nil
}

func (a *app) close() {
	if a.usage != nil {
		if err := a.usage.Close(); err != nil {
			config.Log.WithError(err).Warn("failed to close usage ledger")
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}
