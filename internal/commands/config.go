package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShowConfig,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	RunE:  runInitConfig,
}

var initForce bool

func init() {
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config.yaml")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	shown := *cfg
	if shown.Security.JWTSecret != "" {
		shown.Security.JWTSecret = "********"
	}

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

const defaultConfig = `# assetd configuration

server:
  host: 0.0.0.0
  port: 8080
  read_timeout: 30s
  write_timeout: 30s
  shutdown_timeout: 10s
  debug: false

database:
  driver: sqlite            # sqlite or postgres
  dsn: assetd.db            # postgres: "host=localhost user=assetd dbname=assetd sslmode=disable"
  max_open_conns: 10
  max_idle_conns: 5
  conn_max_lifetime: 30m
  auto_migrate: true
  slow_query_threshold: 200ms

logging:
  level: info
  format: json
  output: stdout

security:
  rate_limit: 100
  allowed_origins:
    - "*"
  auth_enabled: false
  jwt_secret: ""

import:
  max_upload_size: 10485760
`

func runInitConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat("config.yaml"); err == nil && !initForce {
		return errors.New("config.yaml already exists (use --force to overwrite)")
	}

	if err := os.WriteFile("config.yaml", []byte(defaultConfig), 0644); err != nil {
		return err
	}

	fmt.Println("✓ Created config.yaml")
	return nil
}
