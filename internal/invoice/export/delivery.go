package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const ContentTypePDF = "application/pdf"

// Artifact is a rendered document ready for delivery.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Deliverer hands an artifact to its destination: a download response, a
// directory on disk or a test buffer.
type Deliverer interface {
	Deliver(ctx context.Context, artifact Artifact) error
}

type DelivererFunc func(ctx context.Context, artifact Artifact) error

func (f DelivererFunc) Deliver(ctx context.Context, artifact Artifact) error {
	return f(ctx, artifact)
}

// FileDeliverer writes artifacts under Dir on an afero filesystem.
type FileDeliverer struct {
	fs  afero.Fs
	dir string
	log *zap.Logger
}

func NewFileDeliverer(fs afero.Fs, dir string, log *zap.Logger) *FileDeliverer {
	if log == nil {
		log = zap.NewNop()
	}
	if dir == "" {
		dir = "."
	}
	return &FileDeliverer{fs: fs, dir: dir, log: log.Named("invoice.export.file")}
}

func (d *FileDeliverer) Deliver(ctx context.Context, artifact Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.fs.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(d.dir, filepath.Base(artifact.Filename))
	if err := afero.WriteFile(d.fs, path, artifact.Data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	d.log.Info("export written", zap.String("path", path), zap.Int("bytes", len(artifact.Data)))
	return nil
}

// Path returns where filename would be written.
func (d *FileDeliverer) Path(filename string) string {
	return filepath.Join(d.dir, filepath.Base(filename))
}
