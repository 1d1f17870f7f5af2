package cmd

import (
	"fmt"
	"log"

	"github.com/anoixa/daijo-gallery/config"
	"github.com/anoixa/daijo-gallery/database"
	"github.com/spf13/cobra"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create gallery tables",
	Long: `Create or update the works, tags, works_tags and work_images tables.

The production catalog is maintained outside this service. Use this command
to prepare a local SQLite or PostgreSQL database for development.

Examples:
  daijo-gallery migrate --config ./config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

// runMigrate 按当前配置连接数据库并迁移表结构
func runMigrate() error {
	config.InitConfig()

	factory, err := database.NewFactory(config.Get())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer factory.Close()

	log.Printf("Migrating database, database type: %s", factory.GetProvider().Name())
	return factory.AutoMigrate()
}
