package cli

import (
	"errors"
	"fmt"

	"github.com/waabox/cmdeck/internal/api"
	"github.com/waabox/cmdeck/internal/cloudmanager"
	"github.com/waabox/cmdeck/internal/config"
)

var errNoProgram = errors.New("no program selected: pass --program, set CM_PROGRAM_ID or cloudmanager.program_id")

func (o *rootOptions) configFile() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file with environment overrides applied.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.LoadFrom(o.configFile())
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// session is what most commands need: a validated config, an API-backed
// service, and the selected program.
type session struct {
	cfg       config.Config
	svc       *cloudmanager.Service
	programID string
}

func (o *rootOptions) session(needProgram bool) (session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return session{}, err
	}
	if err := cfg.Validate(); err != nil {
		return session{}, err
	}
	client, err := api.NewClient(cfg.BaseURLOrDefault(), api.Credentials{
		OrgID:       cfg.CloudManager.OrgID,
		APIKey:      cfg.CloudManager.APIKey,
		AccessToken: cfg.CloudManager.AccessToken,
	})
	if err != nil {
		return session{}, err
	}
	programID := o.program
	if programID == "" {
		programID = cfg.CloudManager.ProgramID
	}
	if needProgram && programID == "" {
		return session{}, errNoProgram
	}
	return session{cfg: cfg, svc: cloudmanager.NewService(client), programID: programID}, nil
}
