package app

import (
	"bitwise74/usercontent-api/aws"
	"bitwise74/usercontent-api/db"
	"bitwise74/usercontent-api/internal"
	"bitwise74/usercontent-api/internal/service"
	"bitwise74/usercontent-api/internal/storage"
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Build wires every dependency from the loaded config. Background work
// (task workers, reconcile schedule) is started before returning
func Build(ctx context.Context) (_ *internal.Deps, err error) {
	d := &internal.Deps{}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	d.DB, err = db.New(
		viper.GetString("database.driver"),
		viper.GetString("database.dsn"),
		viper.GetBool("database.migrate_external"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	d.Blobs, err = storage.NewLocal(afero.NewOsFs(), viper.GetString("upload.root"), viper.GetString("upload.public_base_url"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store, %w", err)
	}

	d.Tasks = service.NewTaskQueue(viper.GetInt("audit.workers"), viper.GetInt("audit.queue_size"))
	d.Tasks.StartWorkerPool()

	d.Audit = service.NewAuditLogger(d.DB, d.Tasks)

	if viper.GetBool("replica.enabled") {
		d.S3, err = aws.NewS3(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		d.Replica = service.NewReplica(d.S3.C, d.S3.Bucket, d.Blobs, d.Tasks)
		zap.L().Info("Blob replica enabled", zap.String("bucket", d.S3.Bucket))
	}

	d.Uploader = service.NewUploader(d.DB, d.Blobs, d.Audit, d.Replica, service.UploadOptions{
		MaxSize:      viper.GetInt64("upload.max_size"),
		AllowedExts:  viper.GetStringSlice("upload.allowed_exts"),
		PrefixLength: viper.GetInt("upload.prefix_length"),
	})
	d.Querier = service.NewQuerier(d.DB, d.Blobs)
	d.Deleter = service.NewDeleter(d.DB, d.Blobs, d.Audit, d.Replica)

	grace, err := time.ParseDuration(viper.GetString("reconcile.grace"))
	if err != nil {
		return nil, fmt.Errorf("invalid reconcile grace, %w", err)
	}

	d.Reconciler = service.NewReconciler(d.DB, d.Blobs, grace)

	if viper.GetBool("reconcile.enabled") {
		d.Cron, err = d.Reconciler.Schedule(viper.GetString("reconcile.schedule"))
		if err != nil {
			return nil, err
		}
	}

	return d, nil
}
