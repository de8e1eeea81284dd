package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"

	"github.com/Zianiwarhead/MyMusicApp/config"
	"github.com/Zianiwarhead/MyMusicApp/store"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO payload bucket",
	Long:  `Connect to MinIO with the configured settings and list the stored track payloads.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		client, err := store.NewMinioClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		ctx := context.Background()
		count := 0
		var total int64
		for obj := range client.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{
			Prefix:    minioPrefix,
			Recursive: true,
		}) {
			if obj.Err != nil {
				log.Fatalf("Failed to list objects: %v", obj.Err)
			}
			fmt.Printf("  %s (%d bytes)\n", obj.Key, obj.Size)
			count++
			total += obj.Size
		}
		fmt.Printf("%d objects, %d bytes total.\n", count, total)
	},
}

func init() {
	minioCmd.Flags().StringVar(&minioPrefix, "prefix", "", "only list objects under this prefix")
	rootCmd.AddCommand(minioCmd)
}
