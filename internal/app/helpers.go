package app

import (
	"fmt"

	"github.com/albedo-support/api/internal/modules/storage/upload"
	"github.com/albedo-support/api/internal/modules/system/health"
)

func (a *App) uploadStore() (upload.Store, error) {
	switch a.cfg.Storage.Driver {
	case "", "local":
		return upload.NewLocalStore(a.cfg.Storage.UploadDir)
	case "s3":
		s3cfg := a.cfg.Storage.S3
		return upload.NewS3Store(upload.NewS3Client(s3cfg), s3cfg), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
	}
}

// redisPinger avoids handing health a typed nil.
func (a *App) redisPinger() health.Pinger {
	if a.rc == nil {
		return nil
	}
	return a.rc
}
