// internal/storage/archive/factory.go
package archive

import (
	"fmt"

	"github.com/quantprim/prism/internal/config"
	"github.com/quantprim/prism/internal/core"
)

// New creates an archive backend based on configuration.
func New(cfg config.ArchiveConfig) (Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		path := cfg.Path
		if path == "" {
			path = "results"
		}
		return NewLocalFS(path)
	case "s3":
		return NewS3(S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type: %s", cfg.Type))
	}
}
