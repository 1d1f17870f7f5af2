package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anoixa/daijo-gallery/cache"
	"github.com/anoixa/daijo-gallery/config"
	"github.com/anoixa/daijo-gallery/internal/gallery"
	"github.com/spf13/cobra"
)

// cacheCmd 缓存管理命令
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache management commands",
	Long:  "Manage the query result cache shared by running servers.",
}

// cacheInvalidateCmd 按标签失效缓存
var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Invalidate cached query results",
	Long: `Invalidate cached query results by tag.

Only a shared cache (cache_type=redis) is visible to running servers.
With the in-memory cache this command only affects its own process.

Examples:
  # Invalidate every list and detail result
  daijo-gallery cache invalidate --all

  # Invalidate the detail of work 42
  daijo-gallery cache invalidate --work 42

  # Invalidate specific tags
  daijo-gallery cache invalidate --tag works --tag tags`,
	Run: func(cmd *cobra.Command, args []string) {
		tags, _ := cmd.Flags().GetStringSlice("tag")
		workIDs, _ := cmd.Flags().GetUintSlice("work")
		all, _ := cmd.Flags().GetBool("all")

		if err := runCacheInvalidate(invalidationTags(tags, workIDs, all)); err != nil {
			log.Fatalf("Cache invalidate failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)

	cacheInvalidateCmd.Flags().StringSlice("tag", nil, "Cache tag to invalidate (repeatable)")
	cacheInvalidateCmd.Flags().UintSlice("work", nil, "Work ID whose detail should be invalidated (repeatable)")
	cacheInvalidateCmd.Flags().Bool("all", false, "Invalidate all gallery results")
}

// invalidationTags 合并命令行参数为去重后的标签列表
func invalidationTags(tags []string, workIDs []uint, all bool) []string {
	var result []string
	seen := make(map[string]struct{})
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}

	if all {
		add(gallery.TagWorks)
		add(gallery.TagTags)
	}
	for _, tag := range tags {
		add(tag)
	}
	for _, id := range workIDs {
		add(gallery.WorkTag(id))
	}
	return result
}

// runCacheInvalidate 执行缓存失效
func runCacheInvalidate(tags []string) error {
	if len(tags) == 0 {
		return fmt.Errorf("nothing to invalidate, use --tag, --work or --all")
	}

	config.InitConfig()
	cfg := config.Get()

	factory, err := cache.NewFactory(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer factory.Close()

	provider := factory.GetProvider()
	log.Printf("Cache provider: %s", provider.Name())
	if cfg.CacheType != "redis" {
		log.Println("[Warning] In-memory cache is private to this process, running servers are not affected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rc := cache.NewResultCache(provider, cfg.CacheTTL)
	if err := rc.Invalidate(ctx, tags...); err != nil {
		return err
	}

	log.Printf("Invalidated cache tags: %s", strings.Join(tags, ", "))
	return nil
}
