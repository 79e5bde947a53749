package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mohitkumar/bookflow/agent"
	"github.com/mohitkumar/bookflow/analytics"
	"github.com/mohitkumar/bookflow/config"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cli struct {
	cfg config.Config
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to config file.")
	cmd.Flags().Int("http-port", 8080, "http port for rest endpoints")
	cmd.Flags().String("plugin-id", "bookflow", "plugin id used in rest paths")
	cmd.Flags().String("storage-impl", "redis", "implementation of underlying storage (redis|memory)")
	cmd.Flags().String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	cmd.Flags().String("namespace", "bookflow", "namespace used in storage")
	cmd.Flags().Int("expire-days", -1, "days a loan lasts, -1 disables due dates")
	cmd.Flags().Int("max-renew-times", -1, "renewals allowed per loan, -1 for unlimited")
	cmd.Flags().Int("borrow-limit", -1, "open loans allowed per borrower, -1 for unlimited")
	cmd.Flags().Duration("reminder-interval", config.Default().ReminderInterval, "how often overdue loans are checked")
	cmd.Flags().Duration("lock-timeout", config.Default().LockTimeout, "how long a record lock is held at most")
	cmd.Flags().String("analytics-file", "", "file receiving workflow analytics, empty to disable")
	cmd.Flags().String("log-level", "info", "log level")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config-file")
	if err != nil {
		return err
	}
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err = viper.ReadInConfig(); err != nil {
			// it's ok if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return err
			}
		}
	}

	c.cfg = config.Default()
	c.cfg.HttpPort = viper.GetInt("http-port")
	c.cfg.PluginId = viper.GetString("plugin-id")
	c.cfg.StorageType = config.StorageType(viper.GetString("storage-impl"))
	c.cfg.RedisConfig.Addrs = strings.Split(viper.GetString("redis-addr"), ",")
	c.cfg.RedisConfig.Namespace = viper.GetString("namespace")
	c.cfg.BookConfig.ExpireDays = viper.GetInt("expire-days")
	c.cfg.BookConfig.MaxRenewTimes = viper.GetInt("max-renew-times")
	c.cfg.BorrowLimit = viper.GetInt("borrow-limit")
	c.cfg.ReminderInterval = viper.GetDuration("reminder-interval")
	c.cfg.LockTimeout = viper.GetDuration("lock-timeout")
	c.cfg.Users = viper.GetStringMapString("users")
	c.cfg.LogLevel = viper.GetString("log-level")
	if file := viper.GetString("analytics-file"); file != "" {
		c.cfg.AnalyticsConfig = analytics.DataCollectorConfig{
			FileName:      file,
			CollectorType: analytics.LOG_FILE_DATA_COLLECTOR,
		}
	}
	return logger.Init(c.cfg.LogLevel)
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	agent, err := agent.New(c.cfg)
	if err != nil {
		return err
	}
	if err = agent.Start(); err != nil {
		return err
	}
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	return agent.Shutdown()
}

func main() {
	cli := &cli{}

	cmd := &cobra.Command{
		Use:     "bookflow",
		Short:   "library loan workflow server",
		PreRunE: cli.setupConfig,
		RunE:    cli.run,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
