package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "noloss"
	app.Usage = "No-loss lottery service"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to the TOML config file",
			EnvVars: []string{"NOLOSS_CONFIG"},
		},
	}
	app.Before = s.loadConfig
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves the lottery operations over HTTP.`,
		},
		{
			Action:      s.startKeeper,
			Name:        "keeper",
			Usage:       "Start the phase keeper",
			Category:    "Worker",
			Description: `Advances the lottery phases and moves the pool in and out of the reserve.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Category:    "Database",
			Description: `Creates or updates the lottery tables and initializes the lottery.`,
		},
		{
			Action:   s.issueToken,
			Name:     "token",
			Usage:    "Issue an access token for a principal",
			Category: "Auth",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "principal",
					Usage:    "Account the token acts for",
					Required: true,
				},
			},
		},
	}

	s.app = app
}
