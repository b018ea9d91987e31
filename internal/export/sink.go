package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GregMSThompson/recovery-dashboard/internal/dto"
	"github.com/GregMSThompson/recovery-dashboard/pkg/logger"
)

// FileSink persists exported files into a local directory.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Save writes the file and returns its path.
func (s *FileSink) Save(ctx context.Context, file dto.ExportedFile) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(file.Filename))
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	logger.FromContext(ctx).Info("export saved", "export_id", file.ID, "path", path, "bytes", len(file.Data))
	return path, nil
}
